package validators

import (
	"context"

	"github.com/aleister1102/leakwatch/internal/models"
)

const groqBaseURL = "https://api.groq.com"

// GroqValidator lists models through the OpenAI compatible API
type GroqValidator struct {
	check httpCheck
}

func NewGroqValidator(deps Deps) *GroqValidator {
	return &GroqValidator{check: newHTTPCheck(deps, models.SecretTypeGroq, groqBaseURL)}
}

func (v *GroqValidator) Validate(ctx context.Context, payload models.Payload) Result {
	p, ok := payload.(models.APIKeyPayload)
	if !ok {
		return unexpectedPayload(payload)
	}
	return v.check.run(ctx, call{path: "/openai/v1/models", headers: bearer(p.APIKey)}, nil)
}
