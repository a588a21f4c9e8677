package validators

import (
	"context"
	"strings"

	"github.com/aleister1102/leakwatch/internal/models"
)

// MailchimpValidator pings the datacenter encoded in the key suffix
type MailchimpValidator struct {
	check     httpCheck
	overrides bool
}

func NewMailchimpValidator(deps Deps) *MailchimpValidator {
	check := newHTTPCheck(deps, models.SecretTypeMailchimp, "")
	return &MailchimpValidator{check: check, overrides: check.baseURL != ""}
}

func (v *MailchimpValidator) Validate(ctx context.Context, payload models.Payload) Result {
	p, ok := payload.(models.APIKeyPayload)
	if !ok {
		return unexpectedPayload(payload)
	}
	idx := strings.LastIndex(p.APIKey, "-")
	if idx < 0 || idx == len(p.APIKey)-1 {
		return Invalid("key has no datacenter suffix")
	}
	dc := p.APIKey[idx+1:]

	check := v.check
	if !v.overrides {
		check.baseURL = "https://" + dc + ".api.mailchimp.com"
	}
	return check.run(ctx, call{
		path:    "/3.0/",
		headers: map[string]string{"Authorization": basicAuth("leakwatch", p.APIKey)},
	}, func(body []byte) Result {
		return jsonMetadata(body, func(r struct {
			AccountID   string `json:"account_id"`
			AccountName string `json:"account_name"`
			Email       string `json:"email"`
		}) map[string]string {
			return map[string]string{"account_id": r.AccountID, "account_name": r.AccountName, "email": r.Email, "datacenter": dc}
		})
	})
}
