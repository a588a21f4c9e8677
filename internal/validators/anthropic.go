package validators

import (
	"context"

	"github.com/aleister1102/leakwatch/internal/models"
)

const (
	anthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
)

// AnthropicValidator lists models with the key
type AnthropicValidator struct {
	check httpCheck
}

func NewAnthropicValidator(deps Deps) *AnthropicValidator {
	return &AnthropicValidator{check: newHTTPCheck(deps, models.SecretTypeAnthropic, anthropicBaseURL)}
}

func (v *AnthropicValidator) Validate(ctx context.Context, payload models.Payload) Result {
	p, ok := payload.(models.APIKeyPayload)
	if !ok {
		return unexpectedPayload(payload)
	}
	return v.check.run(ctx, call{
		path: "/v1/models",
		headers: map[string]string{
			"x-api-key":         p.APIKey,
			"anthropic-version": anthropicVersion,
		},
	}, func(body []byte) Result {
		return jsonMetadata(body, func(r struct {
			Data []struct {
				ID string `json:"id"`
			} `json:"data"`
		}) map[string]string {
			if len(r.Data) == 0 {
				return nil
			}
			return map[string]string{"model": r.Data[0].ID}
		})
	})
}
