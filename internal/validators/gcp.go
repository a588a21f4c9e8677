package validators

import (
	"context"
	"encoding/json"
	"net/http"
	"net/mail"
	"net/url"
	"strings"

	"github.com/aleister1102/leakwatch/internal/httpclient"
	"github.com/aleister1102/leakwatch/internal/jwtgrant"
	"github.com/aleister1102/leakwatch/internal/models"
)

// Token endpoints a key's token_uri may name. Any other token_uri is
// replaced by jwtgrant.DefaultTokenURI.
var trustedTokenHosts = map[string]struct{}{
	"oauth2.googleapis.com": {},
	"www.googleapis.com":    {},
}

// Published in documentation samples; never a live account.
var deniedServiceAccountEmails = map[string]struct{}{
	"test@test-project.iam.gserviceaccount.com": {},
}

// GCPServiceAccountValidator exchanges a signed JWT-bearer assertion for an
// access token at Google's token endpoint
type GCPServiceAccountValidator struct {
	check    httpCheck
	tokenURI string
	deps     Deps
}

// NewGCPServiceAccountValidator creates the service-account validator. A
// configured endpoint replaces the token URI of every key.
func NewGCPServiceAccountValidator(deps Deps) *GCPServiceAccountValidator {
	deps = deps.withDefaults()
	v := &GCPServiceAccountValidator{
		check: newHTTPCheck(deps, models.SecretTypeGCPServiceAccount, ""),
		deps:  deps,
	}
	v.tokenURI = v.check.baseURL
	v.check.baseURL = ""
	return v
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (v *GCPServiceAccountValidator) Validate(ctx context.Context, payload models.Payload) Result {
	p, ok := payload.(models.ServiceAccountPayload)
	if !ok {
		return unexpectedPayload(payload)
	}
	if reason := structuralProblem(p); reason != "" {
		return Invalid(reason)
	}

	key, err := jwtgrant.ParsePrivateKey(p.PrivateKey)
	if err != nil {
		return Invalid("malformed private key: " + err.Error())
	}

	tokenURI := v.tokenURI
	if tokenURI == "" {
		tokenURI = trustedTokenURI(p.TokenURI)
		if p.TokenURI != "" && tokenURI != p.TokenURI {
			v.check.logger.Debug().Str("token_uri", httpclient.SafeURL(p.TokenURI)).Msg("Untrusted token_uri, using default endpoint")
		}
	}

	assertion, err := jwtgrant.Sign(key, jwtgrant.Assertion{
		Issuer:   p.ClientEmail,
		Audience: tokenURI,
		IssuedAt: v.deps.Now(),
	})
	if err != nil {
		return Invalid(err.Error())
	}

	resp, err := v.check.do(ctx, call{
		method:  http.MethodPost,
		path:    tokenURI,
		headers: map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
		body:    jwtgrant.FormBody(assertion),
	})
	if err != nil {
		return FailedToCheck(err)
	}

	var tr tokenResponse
	if err := json.Unmarshal(resp.Body, &tr); err != nil {
		v.check.logger.Debug().Err(err).Int("status", resp.StatusCode).Msg("Token response is not JSON")
	}

	switch {
	case resp.IsSuccess() && tr.AccessToken != "":
		return Valid(map[string]string{
			"project_id":   p.ProjectID,
			"client_email": p.ClientEmail,
			"token_type":   tr.TokenType,
		})
	case resp.IsSuccess():
		return Invalid("token endpoint returned no access token")
	case resp.StatusCode == http.StatusBadRequest && tr.Error != "":
		return Invalid(strings.TrimSpace(tr.Error + " " + tr.ErrorDescription))
	}
	res, _ := verdict(resp)
	return res
}

// trustedTokenURI returns raw when it is an https URL on a Google token
// host, jwtgrant.DefaultTokenURI otherwise
func trustedTokenURI(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "https" || u.User != nil {
		return jwtgrant.DefaultTokenURI
	}
	if _, ok := trustedTokenHosts[strings.ToLower(u.Host)]; !ok {
		return jwtgrant.DefaultTokenURI
	}
	return raw
}

// structuralProblem returns why a key cannot be valid without contacting
// anyone, or "" when it is well formed
func structuralProblem(p models.ServiceAccountPayload) string {
	switch {
	case p.Type != "service_account":
		return "type is not service_account"
	case p.PrivateKey == "":
		return "missing private_key"
	case p.ClientEmail == "":
		return "missing client_email"
	case p.ProjectID == "":
		return "missing project_id"
	}
	if _, denied := deniedServiceAccountEmails[strings.ToLower(p.ClientEmail)]; denied {
		return "client_email is a known example account"
	}
	addr, err := mail.ParseAddress(p.ClientEmail)
	if err != nil || addr.Address != p.ClientEmail || !strings.Contains(p.ClientEmail[strings.LastIndex(p.ClientEmail, "@")+1:], ".") {
		return "client_email is not a valid email"
	}
	if !strings.Contains(p.PrivateKey, "PRIVATE KEY-----") {
		return "private_key is not PEM encoded"
	}
	return ""
}
