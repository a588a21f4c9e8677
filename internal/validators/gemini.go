package validators

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/aleister1102/leakwatch/internal/models"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com"

// GeminiValidator lists models with the key passed as a query parameter
type GeminiValidator struct {
	check httpCheck
}

func NewGeminiValidator(deps Deps) *GeminiValidator {
	return &GeminiValidator{check: newHTTPCheck(deps, models.SecretTypeGemini, geminiBaseURL)}
}

type googleAPIError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Details []struct {
			Reason string `json:"reason"`
		} `json:"details"`
	} `json:"error"`
}

func (v *GeminiValidator) Validate(ctx context.Context, payload models.Payload) Result {
	p, ok := payload.(models.APIKeyPayload)
	if !ok {
		return unexpectedPayload(payload)
	}

	resp, err := v.check.do(ctx, call{path: "/v1beta/models?key=" + url.QueryEscape(p.APIKey)})
	if err != nil {
		return FailedToCheck(err)
	}
	if resp.StatusCode == http.StatusBadRequest {
		var apiErr googleAPIError
		if json.Unmarshal(resp.Body, &apiErr) == nil {
			for _, d := range apiErr.Error.Details {
				if d.Reason == "API_KEY_INVALID" {
					return Invalid("API_KEY_INVALID")
				}
			}
		}
	}
	if res, done := verdict(resp); done {
		return res
	}
	return Valid(map[string]string{"service": "generativelanguage"})
}
