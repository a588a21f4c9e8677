package validators

import (
	"context"

	"github.com/aleister1102/leakwatch/internal/models"
)

const openAIBaseURL = "https://api.openai.com"

// OpenAIValidator reads the key owner's profile
type OpenAIValidator struct {
	check httpCheck
}

func NewOpenAIValidator(deps Deps) *OpenAIValidator {
	return &OpenAIValidator{check: newHTTPCheck(deps, models.SecretTypeOpenAI, openAIBaseURL)}
}

type openAIMe struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Orgs  struct {
		Data []struct {
			Title string `json:"title"`
		} `json:"data"`
	} `json:"orgs"`
}

func (v *OpenAIValidator) Validate(ctx context.Context, payload models.Payload) Result {
	p, ok := payload.(models.APIKeyPayload)
	if !ok {
		return unexpectedPayload(payload)
	}
	return v.check.run(ctx, call{path: "/v1/me", headers: bearer(p.APIKey)}, func(body []byte) Result {
		return jsonMetadata(body, func(me openAIMe) map[string]string {
			meta := map[string]string{"id": me.ID, "name": me.Name, "email": me.Email}
			if len(me.Orgs.Data) > 0 {
				meta["organization"] = me.Orgs.Data[0].Title
			}
			return meta
		})
	})
}
