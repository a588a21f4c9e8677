package validators

import (
	"context"

	"github.com/aleister1102/leakwatch/internal/models"
)

const huggingFaceBaseURL = "https://huggingface.co"

// HuggingFaceValidator calls whoami-v2
type HuggingFaceValidator struct {
	check httpCheck
}

func NewHuggingFaceValidator(deps Deps) *HuggingFaceValidator {
	return &HuggingFaceValidator{check: newHTTPCheck(deps, models.SecretTypeHuggingFace, huggingFaceBaseURL)}
}

func (v *HuggingFaceValidator) Validate(ctx context.Context, payload models.Payload) Result {
	p, ok := payload.(models.APIKeyPayload)
	if !ok {
		return unexpectedPayload(payload)
	}
	return v.check.run(ctx, call{path: "/api/whoami-v2", headers: bearer(p.APIKey)}, func(body []byte) Result {
		return jsonMetadata(body, func(r struct {
			Name string `json:"name"`
			Type string `json:"type"`
			Auth struct {
				AccessToken struct {
					Role string `json:"role"`
				} `json:"accessToken"`
			} `json:"auth"`
		}) map[string]string {
			return map[string]string{"username": r.Name, "type": r.Type, "role": r.Auth.AccessToken.Role}
		})
	})
}
