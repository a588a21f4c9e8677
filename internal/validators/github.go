package validators

import (
	"context"

	"github.com/aleister1102/leakwatch/internal/models"
)

const gitHubBaseURL = "https://api.github.com"

// GitHubValidator reads the authenticated user
type GitHubValidator struct {
	check httpCheck
}

func NewGitHubValidator(deps Deps) *GitHubValidator {
	return &GitHubValidator{check: newHTTPCheck(deps, models.SecretTypeGitHub, gitHubBaseURL)}
}

func (v *GitHubValidator) Validate(ctx context.Context, payload models.Payload) Result {
	p, ok := payload.(models.TokenPayload)
	if !ok {
		return unexpectedPayload(payload)
	}
	headers := bearer(p.Token)
	headers["Accept"] = "application/vnd.github+json"
	headers["X-GitHub-Api-Version"] = "2022-11-28"

	return v.check.run(ctx, call{path: "/user", headers: headers}, func(body []byte) Result {
		return jsonMetadata(body, func(r struct {
			Login string `json:"login"`
			Name  string `json:"name"`
			Type  string `json:"type"`
		}) map[string]string {
			return map[string]string{"login": r.Login, "name": r.Name, "type": r.Type, "token_type": p.TokenType}
		})
	})
}
