package validators

import (
	"sort"

	"github.com/aleister1102/leakwatch/internal/models"
)

// Registry maps a family name to its validator
type Registry struct {
	byFamily map[string]Validator
}

// NewRegistry builds the validators of every known family
func NewRegistry(deps Deps) *Registry {
	deps = deps.withDefaults()
	return &Registry{byFamily: map[string]Validator{
		models.SecretTypeAWSAccessKeys:     NewAWSValidator(deps, models.SecretTypeAWSAccessKeys),
		models.SecretTypeAWSSessionKeys:    NewAWSValidator(deps, models.SecretTypeAWSSessionKeys),
		models.SecretTypeAnthropic:         NewAnthropicValidator(deps),
		models.SecretTypeOpenAI:            NewOpenAIValidator(deps),
		models.SecretTypeGCPServiceAccount: NewGCPServiceAccountValidator(deps),
		models.SecretTypeSlack:             NewSlackValidator(deps),
		models.SecretTypeHuggingFace:       NewHuggingFaceValidator(deps),
		models.SecretTypeGemini:            NewGeminiValidator(deps),
		models.SecretTypeGroq:              NewGroqValidator(deps),
		models.SecretTypeDeepSeek:          NewDeepSeekValidator(deps),
		models.SecretTypeTelegram:          NewTelegramValidator(deps),
		models.SecretTypeMailgun:           NewMailgunValidator(deps),
		models.SecretTypeMailchimp:         NewMailchimpValidator(deps),
		models.SecretTypeGitHub:            NewGitHubValidator(deps),
		models.SecretTypeStripe:            NewStripeValidator(deps),
		models.SecretTypePayPal:            NewPayPalValidator(deps),
	}}
}

// Get returns the validator of family
func (r *Registry) Get(family string) (Validator, bool) {
	v, ok := r.byFamily[family]
	return v, ok
}

// Families lists registered family names, sorted
func (r *Registry) Families() []string {
	names := make([]string, 0, len(r.byFamily))
	for name := range r.byFamily {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
