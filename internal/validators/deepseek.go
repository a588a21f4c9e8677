package validators

import (
	"context"
	"strconv"

	"github.com/aleister1102/leakwatch/internal/models"
)

const deepSeekBaseURL = "https://api.deepseek.com"

// DeepSeekValidator reads the account balance
type DeepSeekValidator struct {
	check httpCheck
}

func NewDeepSeekValidator(deps Deps) *DeepSeekValidator {
	return &DeepSeekValidator{check: newHTTPCheck(deps, models.SecretTypeDeepSeek, deepSeekBaseURL)}
}

func (v *DeepSeekValidator) Validate(ctx context.Context, payload models.Payload) Result {
	p, ok := payload.(models.APIKeyPayload)
	if !ok {
		return unexpectedPayload(payload)
	}
	return v.check.run(ctx, call{path: "/user/balance", headers: bearer(p.APIKey)}, func(body []byte) Result {
		return jsonMetadata(body, func(r struct {
			IsAvailable  bool `json:"is_available"`
			BalanceInfos []struct {
				Currency     string `json:"currency"`
				TotalBalance string `json:"total_balance"`
			} `json:"balance_infos"`
		}) map[string]string {
			meta := map[string]string{"is_available": strconv.FormatBool(r.IsAvailable)}
			if len(r.BalanceInfos) > 0 {
				meta["balance"] = r.BalanceInfos[0].TotalBalance + " " + r.BalanceInfos[0].Currency
			}
			return meta
		})
	})
}
