package validators

import (
	"context"
	"net/http"
	"strconv"

	"github.com/aleister1102/leakwatch/internal/models"
)

const telegramBaseURL = "https://api.telegram.org"

// TelegramValidator calls getMe for the bot token
type TelegramValidator struct {
	check httpCheck
}

func NewTelegramValidator(deps Deps) *TelegramValidator {
	return &TelegramValidator{check: newHTTPCheck(deps, models.SecretTypeTelegram, telegramBaseURL)}
}

func (v *TelegramValidator) Validate(ctx context.Context, payload models.Payload) Result {
	p, ok := payload.(models.TokenPayload)
	if !ok {
		return unexpectedPayload(payload)
	}

	resp, err := v.check.do(ctx, call{path: "/bot" + p.Token + "/getMe"})
	if err != nil {
		return FailedToCheck(err)
	}
	// malformed tokens are answered with 404
	if resp.StatusCode == http.StatusNotFound {
		return Invalid("HTTP 404: unknown bot token")
	}
	if res, done := verdict(resp); done {
		return res
	}
	return jsonMetadata(resp.Body, func(r struct {
		OK     bool `json:"ok"`
		Result struct {
			ID        int64  `json:"id"`
			Username  string `json:"username"`
			FirstName string `json:"first_name"`
		} `json:"result"`
	}) map[string]string {
		return map[string]string{
			"bot_id":   strconv.FormatInt(r.Result.ID, 10),
			"username": r.Result.Username,
			"name":     r.Result.FirstName,
		}
	})
}
