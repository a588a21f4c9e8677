package detector

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/aleister1102/leakwatch/internal/models"
	"github.com/aleister1102/leakwatch/internal/patterns"
)

func apiKeys(field string) PayloadBuilder {
	return func(candidates map[string][]patterns.Candidate, _ int) []models.Payload {
		var out []models.Payload
		for _, c := range candidates[field] {
			out = append(out, models.APIKeyPayload{APIKey: c.Value})
		}
		return out
	}
}

func tokens(field string, tokenType func(string) string) PayloadBuilder {
	return func(candidates map[string][]patterns.Candidate, _ int) []models.Payload {
		var out []models.Payload
		for _, c := range candidates[field] {
			p := models.TokenPayload{Token: c.Value}
			if tokenType != nil {
				p.TokenType = tokenType(c.Value)
			}
			out = append(out, p)
		}
		return out
	}
}

var slackPrefixes = map[string]string{
	"xoxa-": "app",
	"xoxb-": "bot",
	"xoxo-": "legacy",
	"xoxp-": "user",
	"xoxr-": "refresh",
	"xoxs-": "session",
}

func slackTokenType(token string) string {
	if len(token) < 5 {
		return ""
	}
	return slackPrefixes[token[:5]]
}

func githubTokenType(token string) string {
	switch {
	case strings.HasPrefix(token, "github_pat_"):
		return "fine_grained"
	case strings.HasPrefix(token, "ghp_"):
		return "personal"
	case strings.HasPrefix(token, "gho_"):
		return "oauth"
	case strings.HasPrefix(token, "ghu_"):
		return "user_to_server"
	case strings.HasPrefix(token, "ghs_"):
		return "server_to_server"
	case strings.HasPrefix(token, "ghr_"):
		return "refresh"
	}
	return ""
}

// awsKeyPairs pairs every access key id with every secret, and with every
// session token when withToken is set, up to maxPairs combinations
func awsKeyPairs(withToken bool) PayloadBuilder {
	return func(candidates map[string][]patterns.Candidate, maxPairs int) []models.Payload {
		var out []models.Payload
		sessionTokens := []patterns.Candidate{{}}
		if withToken {
			sessionTokens = candidates["sessionToken"]
		}
		for _, id := range candidates["accessKeyId"] {
			for _, secret := range candidates["secretAccessKey"] {
				for _, token := range sessionTokens {
					if maxPairs > 0 && len(out) >= maxPairs {
						return out
					}
					out = append(out, models.AWSPayload{
						AccessKeyID:     id.Value,
						SecretAccessKey: secret.Value,
						SessionToken:    token.Value,
					})
				}
			}
		}
		return out
	}
}

func oauthClients(idField, secretField string) PayloadBuilder {
	return func(candidates map[string][]patterns.Candidate, maxPairs int) []models.Payload {
		var out []models.Payload
		for _, id := range candidates[idField] {
			for _, secret := range candidates[secretField] {
				if maxPairs > 0 && len(out) >= maxPairs {
					return out
				}
				out = append(out, models.OAuthClientPayload{ClientID: id.Value, ClientSecret: secret.Value})
			}
		}
		return out
	}
}

func serviceAccounts(field string) PayloadBuilder {
	return func(candidates map[string][]patterns.Candidate, _ int) []models.Payload {
		var out []models.Payload
		for _, c := range candidates[field] {
			if p, ok := ParseServiceAccount(c.Value); ok {
				out = append(out, p)
			}
		}
		return out
	}
}

// ParseServiceAccount decodes a service-account key blob as found in
// delivered code: plain JSON, or JSON embedded in a string literal with
// escaped quotes.
func ParseServiceAccount(blob string) (models.ServiceAccountPayload, bool) {
	attempts := []string{blob}
	if unquoted, err := strconv.Unquote(`"` + blob + `"`); err == nil {
		attempts = append(attempts, unquoted)
	}
	attempts = append(attempts, strings.ReplaceAll(blob, `\"`, `"`))

	for _, raw := range attempts {
		var p models.ServiceAccountPayload
		if err := json.Unmarshal([]byte(raw), &p); err == nil && p.Type != "" {
			return p, true
		}
	}
	return models.ServiceAccountPayload{}, false
}
