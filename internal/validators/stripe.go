package validators

import (
	"context"

	"github.com/aleister1102/leakwatch/internal/models"
)

const stripeBaseURL = "https://api.stripe.com"

// StripeValidator retrieves the account with basic auth <key>:
type StripeValidator struct {
	check httpCheck
}

func NewStripeValidator(deps Deps) *StripeValidator {
	return &StripeValidator{check: newHTTPCheck(deps, models.SecretTypeStripe, stripeBaseURL)}
}

func (v *StripeValidator) Validate(ctx context.Context, payload models.Payload) Result {
	p, ok := payload.(models.APIKeyPayload)
	if !ok {
		return unexpectedPayload(payload)
	}
	return v.check.run(ctx, call{
		path:    "/v1/account",
		headers: map[string]string{"Authorization": basicAuth(p.APIKey, "")},
	}, func(body []byte) Result {
		return jsonMetadata(body, func(r struct {
			ID      string `json:"id"`
			Email   string `json:"email"`
			Country string `json:"country"`
		}) map[string]string {
			return map[string]string{"account_id": r.ID, "email": r.Email, "country": r.Country}
		})
	})
}
