package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PayloadKind tags the concrete shape of a secret payload
type PayloadKind string

const (
	KindAPIKey         PayloadKind = "api_key"
	KindToken          PayloadKind = "token"
	KindAWS            PayloadKind = "aws"
	KindServiceAccount PayloadKind = "service_account"
	KindOAuthClient    PayloadKind = "oauth_client"
)

// Payload is the structured form of a detected secret. The kind is fixed
// when the payload is built and travels with it through storage.
type Payload interface {
	Kind() PayloadKind
	// Fields returns every field that contributes to the payload identity.
	Fields() map[string]string
	// Locators returns the literal values that can be searched for in the
	// scanned content, in field order.
	Locators() []string
}

// APIKeyPayload holds a single opaque key
type APIKeyPayload struct {
	APIKey string `json:"apiKey"`
}

func (p APIKeyPayload) Kind() PayloadKind { return KindAPIKey }

func (p APIKeyPayload) Fields() map[string]string {
	return map[string]string{"apiKey": p.APIKey}
}

func (p APIKeyPayload) Locators() []string { return []string{p.APIKey} }

// TokenPayload holds a bearer-style token and its subtype (e.g. Slack bot vs user)
type TokenPayload struct {
	Token     string `json:"token"`
	TokenType string `json:"tokenType,omitempty"`
}

func (p TokenPayload) Kind() PayloadKind { return KindToken }

func (p TokenPayload) Fields() map[string]string {
	return map[string]string{"token": p.Token, "tokenType": p.TokenType}
}

func (p TokenPayload) Locators() []string { return []string{p.Token} }

// AWSPayload holds an access key pair and an optional session token
type AWSPayload struct {
	AccessKeyID     string `json:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey"`
	SessionToken    string `json:"sessionToken,omitempty"`
}

func (p AWSPayload) Kind() PayloadKind { return KindAWS }

func (p AWSPayload) Fields() map[string]string {
	fields := map[string]string{
		"accessKeyId":     p.AccessKeyID,
		"secretAccessKey": p.SecretAccessKey,
	}
	if p.SessionToken != "" {
		fields["sessionToken"] = p.SessionToken
	}
	return fields
}

func (p AWSPayload) Locators() []string {
	locators := []string{p.AccessKeyID, p.SecretAccessKey}
	if p.SessionToken != "" {
		locators = append(locators, p.SessionToken)
	}
	return locators
}

// ServiceAccountPayload mirrors a Google Cloud service-account key file
type ServiceAccountPayload struct {
	Type                    string `json:"type"`
	ProjectID               string `json:"project_id"`
	PrivateKeyID            string `json:"private_key_id"`
	PrivateKey              string `json:"private_key"`
	ClientEmail             string `json:"client_email"`
	ClientID                string `json:"client_id"`
	AuthURI                 string `json:"auth_uri,omitempty"`
	TokenURI                string `json:"token_uri"`
	AuthProviderX509CertURL string `json:"auth_provider_x509_cert_url,omitempty"`
	ClientX509CertURL       string `json:"client_x509_cert_url,omitempty"`
	UniverseDomain          string `json:"universe_domain,omitempty"`
}

func (p ServiceAccountPayload) Kind() PayloadKind { return KindServiceAccount }

func (p ServiceAccountPayload) Fields() map[string]string {
	return map[string]string{
		"type":                        p.Type,
		"project_id":                  p.ProjectID,
		"private_key_id":              p.PrivateKeyID,
		"private_key":                 p.PrivateKey,
		"client_email":                p.ClientEmail,
		"client_id":                   p.ClientID,
		"auth_uri":                    p.AuthURI,
		"token_uri":                   p.TokenURI,
		"auth_provider_x509_cert_url": p.AuthProviderX509CertURL,
		"client_x509_cert_url":        p.ClientX509CertURL,
		"universe_domain":             p.UniverseDomain,
	}
}

// Locators skips private_key: bundles carry it with escaped newlines.
func (p ServiceAccountPayload) Locators() []string {
	var locators []string
	for _, v := range []string{p.PrivateKeyID, p.ClientEmail, p.ClientID} {
		if v != "" {
			locators = append(locators, v)
		}
	}
	return locators
}

// OAuthClientPayload holds an OAuth2 client credential pair
type OAuthClientPayload struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

func (p OAuthClientPayload) Kind() PayloadKind { return KindOAuthClient }

func (p OAuthClientPayload) Fields() map[string]string {
	return map[string]string{"clientId": p.ClientID, "clientSecret": p.ClientSecret}
}

func (p OAuthClientPayload) Locators() []string { return []string{p.ClientID, p.ClientSecret} }

// TaggedPayload is the storage form of a Payload: {"kind": ..., "value": {...}}
type TaggedPayload struct {
	Payload Payload
}

// Tag wraps a payload for storage
func Tag(p Payload) TaggedPayload {
	return TaggedPayload{Payload: p}
}

type taggedPayloadJSON struct {
	Kind  PayloadKind     `json:"kind"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON implements json.Marshaler
func (t TaggedPayload) MarshalJSON() ([]byte, error) {
	if t.Payload == nil {
		return []byte("null"), nil
	}
	value, err := json.Marshal(t.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(taggedPayloadJSON{Kind: t.Payload.Kind(), Value: value})
}

// UnmarshalJSON implements json.Unmarshaler
func (t *TaggedPayload) UnmarshalJSON(data []byte) error {
	if strings.TrimSpace(string(data)) == "null" {
		t.Payload = nil
		return nil
	}
	var raw taggedPayloadJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p, err := decodePayload(raw.Kind, raw.Value)
	if err != nil {
		return err
	}
	t.Payload = p
	return nil
}

func decodePayload(kind PayloadKind, value json.RawMessage) (Payload, error) {
	switch kind {
	case KindAPIKey:
		var p APIKeyPayload
		err := json.Unmarshal(value, &p)
		return p, err
	case KindToken:
		var p TokenPayload
		err := json.Unmarshal(value, &p)
		return p, err
	case KindAWS:
		var p AWSPayload
		err := json.Unmarshal(value, &p)
		return p, err
	case KindServiceAccount:
		var p ServiceAccountPayload
		err := json.Unmarshal(value, &p)
		return p, err
	case KindOAuthClient:
		var p OAuthClientPayload
		err := json.Unmarshal(value, &p)
		return p, err
	default:
		return nil, fmt.Errorf("unknown payload kind %q", kind)
	}
}

// Redact keeps the first four characters of a secret for display and logs
func Redact(secret string) string {
	runes := []rune(secret)
	if len(runes) <= 4 {
		return "***"
	}
	return string(runes[:4]) + "***"
}

// RedactPayload renders the payload's locators redacted, joined by commas
func RedactPayload(p Payload) string {
	if p == nil {
		return ""
	}
	locators := p.Locators()
	parts := make([]string, 0, len(locators))
	for _, l := range locators {
		parts = append(parts, Redact(l))
	}
	return strings.Join(parts, ", ")
}
