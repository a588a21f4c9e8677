package validators

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aleister1102/leakwatch/internal/common"
	"github.com/aleister1102/leakwatch/internal/models"
)

const slackBaseURL = "https://slack.com"

// Errors of auth.test meaning the token is dead
var slackAuthErrors = map[string]struct{}{
	"invalid_auth":     {},
	"not_authed":       {},
	"account_inactive": {},
	"token_revoked":    {},
	"token_expired":    {},
	"no_permission":    {},
}

// SlackValidator calls auth.test
type SlackValidator struct {
	check httpCheck
}

func NewSlackValidator(deps Deps) *SlackValidator {
	return &SlackValidator{check: newHTTPCheck(deps, models.SecretTypeSlack, slackBaseURL)}
}

type slackAuthTest struct {
	OK     bool   `json:"ok"`
	Error  string `json:"error"`
	URL    string `json:"url"`
	Team   string `json:"team"`
	User   string `json:"user"`
	TeamID string `json:"team_id"`
	UserID string `json:"user_id"`
	BotID  string `json:"bot_id"`
}

func (v *SlackValidator) Validate(ctx context.Context, payload models.Payload) Result {
	p, ok := payload.(models.TokenPayload)
	if !ok {
		return unexpectedPayload(payload)
	}

	headers := bearer(p.Token)
	headers["Content-Type"] = "application/x-www-form-urlencoded"
	resp, err := v.check.do(ctx, call{method: http.MethodPost, path: "/api/auth.test", headers: headers})
	if err != nil {
		return FailedToCheck(err)
	}
	if res, done := verdict(resp); done {
		return res
	}

	var r slackAuthTest
	if err := json.Unmarshal(resp.Body, &r); err != nil {
		return FailedToCheck(common.WrapError(err, "failed to decode auth.test response"))
	}
	if !r.OK {
		if _, dead := slackAuthErrors[r.Error]; dead {
			return Invalid(r.Error)
		}
		return FailedToCheck(common.NewError("auth.test error: %s", r.Error))
	}
	return Valid(map[string]string{
		"url":        r.URL,
		"team":       r.Team,
		"team_id":    r.TeamID,
		"user":       r.User,
		"user_id":    r.UserID,
		"bot_id":     r.BotID,
		"token_type": p.TokenType,
	})
}
