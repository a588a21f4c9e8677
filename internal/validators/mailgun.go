package validators

import (
	"context"
	"strconv"

	"github.com/aleister1102/leakwatch/internal/models"
)

const mailgunBaseURL = "https://api.mailgun.net"

// MailgunValidator lists sending domains with basic auth api:<key>
type MailgunValidator struct {
	check httpCheck
}

func NewMailgunValidator(deps Deps) *MailgunValidator {
	return &MailgunValidator{check: newHTTPCheck(deps, models.SecretTypeMailgun, mailgunBaseURL)}
}

func (v *MailgunValidator) Validate(ctx context.Context, payload models.Payload) Result {
	p, ok := payload.(models.APIKeyPayload)
	if !ok {
		return unexpectedPayload(payload)
	}
	return v.check.run(ctx, call{
		path:    "/v3/domains",
		headers: map[string]string{"Authorization": basicAuth("api", p.APIKey)},
	}, func(body []byte) Result {
		return jsonMetadata(body, func(r struct {
			TotalCount int `json:"total_count"`
		}) map[string]string {
			return map[string]string{"domains": strconv.Itoa(r.TotalCount)}
		})
	})
}
