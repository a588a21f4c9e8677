package validators

import (
	"context"
	"net/http"

	"github.com/aleister1102/leakwatch/internal/models"
)

const payPalBaseURL = "https://api-m.paypal.com"

// PayPalValidator requests a client_credentials token
type PayPalValidator struct {
	check httpCheck
}

func NewPayPalValidator(deps Deps) *PayPalValidator {
	return &PayPalValidator{check: newHTTPCheck(deps, models.SecretTypePayPal, payPalBaseURL)}
}

func (v *PayPalValidator) Validate(ctx context.Context, payload models.Payload) Result {
	p, ok := payload.(models.OAuthClientPayload)
	if !ok {
		return unexpectedPayload(payload)
	}
	return v.check.run(ctx, call{
		method: http.MethodPost,
		path:   "/v1/oauth2/token",
		headers: map[string]string{
			"Authorization": basicAuth(p.ClientID, p.ClientSecret),
			"Content-Type":  "application/x-www-form-urlencoded",
			"Accept":        "application/json",
		},
		body: "grant_type=client_credentials",
	}, func(body []byte) Result {
		return jsonMetadata(body, func(r struct {
			AppID     string `json:"app_id"`
			Scope     string `json:"scope"`
			ExpiresIn int    `json:"expires_in"`
		}) map[string]string {
			return map[string]string{"app_id": r.AppID, "scope": r.Scope}
		})
	})
}
