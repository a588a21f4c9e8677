// Package detector runs the detection pipeline of every secret family over
// scanned content.
package detector

import (
	"fmt"

	"github.com/aleister1102/leakwatch/internal/common"
	"github.com/aleister1102/leakwatch/internal/fingerprint"
	"github.com/aleister1102/leakwatch/internal/models"
	"github.com/aleister1102/leakwatch/internal/patterns"
	"github.com/aleister1102/leakwatch/internal/validators"
)

// PayloadBuilder turns the screened candidates of a family, keyed by field,
// into payloads. maxPairs bounds the combinations of multi-field families.
type PayloadBuilder func(candidates map[string][]patterns.Candidate, maxPairs int) []models.Payload

// Family is everything the pipeline needs to know about one secret family
type Family struct {
	Name      string
	Patterns  []patterns.Pattern
	Build     PayloadBuilder
	Validator validators.Validator
	Algorithm fingerprint.Algorithm
	// SkipTermFilter exempts candidates from the false-positive term and
	// shape checks. Used for structured blobs validated field by field.
	SkipTermFilter bool
}

// ValidatorSource resolves the validator of a family
type ValidatorSource interface {
	Get(family string) (validators.Validator, bool)
}

type familyDef struct {
	build          PayloadBuilder
	algorithm      fingerprint.Algorithm
	skipTermFilter bool
}

var knownFamilies = map[string]familyDef{
	models.SecretTypeAWSAccessKeys:     {build: awsKeyPairs(false), algorithm: fingerprint.SHA512},
	models.SecretTypeAWSSessionKeys:    {build: awsKeyPairs(true), algorithm: fingerprint.SHA512},
	models.SecretTypeAnthropic:         {build: apiKeys("apiKey"), algorithm: fingerprint.SHA256},
	models.SecretTypeOpenAI:            {build: apiKeys("apiKey"), algorithm: fingerprint.SHA256},
	models.SecretTypeGCPServiceAccount: {build: serviceAccounts("serviceAccount"), algorithm: fingerprint.SHA512, skipTermFilter: true},
	models.SecretTypeSlack:             {build: tokens("token", slackTokenType), algorithm: fingerprint.SHA256},
	models.SecretTypeHuggingFace:       {build: apiKeys("apiKey"), algorithm: fingerprint.SHA256},
	models.SecretTypeGemini:            {build: apiKeys("apiKey"), algorithm: fingerprint.SHA256},
	models.SecretTypeGroq:              {build: apiKeys("apiKey"), algorithm: fingerprint.SHA256},
	models.SecretTypeDeepSeek:          {build: apiKeys("apiKey"), algorithm: fingerprint.SHA256},
	models.SecretTypeTelegram:          {build: tokens("token", nil), algorithm: fingerprint.SHA256},
	models.SecretTypeMailgun:           {build: apiKeys("apiKey"), algorithm: fingerprint.SHA256},
	models.SecretTypeMailchimp:         {build: apiKeys("apiKey"), algorithm: fingerprint.SHA256},
	models.SecretTypeGitHub:            {build: tokens("token", githubTokenType), algorithm: fingerprint.SHA256},
	models.SecretTypeStripe:            {build: apiKeys("apiKey"), algorithm: fingerprint.SHA512},
	models.SecretTypePayPal:            {build: oauthClients("clientId", "clientSecret"), algorithm: fingerprint.SHA512},
}

// KnownFamilies lists the family names with a built-in payload builder
func KnownFamilies() []string {
	names := make([]string, 0, len(knownFamilies))
	for name := range knownFamilies {
		names = append(names, name)
	}
	return names
}

// BuildFamilies assembles the enabled families of the catalog. An empty
// enabled list selects every family of the catalog.
func BuildFamilies(catalog *patterns.Catalog, source ValidatorSource, enabled []string) ([]Family, error) {
	names := enabled
	if len(names) == 0 {
		names = catalog.Families()
	}

	families := make([]Family, 0, len(names))
	for _, name := range names {
		def, ok := knownFamilies[name]
		if !ok {
			return nil, common.NewValidationError("family", name, "no payload builder for family")
		}
		ps, ok := catalog.ForFamily(name)
		if !ok {
			return nil, fmt.Errorf("family %s has no patterns: %w", name, common.ErrNotFound)
		}
		v, ok := source.Get(name)
		if !ok {
			return nil, fmt.Errorf("family %s has no validator: %w", name, common.ErrNotFound)
		}
		families = append(families, Family{
			Name:           name,
			Patterns:       ps,
			Build:          def.build,
			Validator:      v,
			Algorithm:      def.algorithm,
			SkipTermFilter: def.skipTermFilter,
		})
	}
	return families, nil
}

// NewAPIKeyFamily builds a single-field family whose candidates are opaque keys
func NewAPIKeyFamily(name string, ps []patterns.Pattern, v validators.Validator, algo fingerprint.Algorithm) Family {
	field := "apiKey"
	if len(ps) > 0 {
		field = ps[0].Field
	}
	return Family{Name: name, Patterns: ps, Build: apiKeys(field), Validator: v, Algorithm: algo}
}
