// Package jwtgrant builds OAuth2 JWT-bearer assertions (RFC 7523) for
// service-account credentials.
package jwtgrant

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/url"
	"strings"
	"time"

	"github.com/aleister1102/leakwatch/internal/common"
	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

const (
	GrantType = "urn:ietf:params:oauth:grant-type:jwt-bearer"

	DefaultScope    = "https://www.googleapis.com/auth/cloud-platform"
	DefaultTokenURI = "https://oauth2.googleapis.com/token"

	// Lifetime is the validity window of an assertion
	Lifetime = time.Hour
)

// Claims are the custom claims a service-account assertion carries
// next to the registered ones
type Claims struct {
	Scope string `json:"scope"`
}

// Assertion describes the token being requested
type Assertion struct {
	Issuer   string
	Scope    string
	Audience string
	IssuedAt time.Time
}

// ParsePrivateKey decodes a PEM encoded RSA key. PKCS8 is expected; PKCS1 is
// accepted. Literal "\n" sequences, as found in embedded JSON, are unescaped.
func ParsePrivateKey(pemData string) (*rsa.PrivateKey, error) {
	normalized := strings.ReplaceAll(pemData, `\n`, "\n")
	block, _ := pem.Decode([]byte(normalized))
	if block == nil {
		return nil, common.NewValidationError("private_key", "", "no PEM block found")
	}

	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, common.NewValidationError("private_key", block.Type, "key is not RSA")
		}
		return rsaKey, nil
	}

	rsaKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, common.WrapError(err, "failed to parse private key")
	}
	return rsaKey, nil
}

// Sign returns the compact header.payload.signature form of the assertion,
// signed with RS256
func Sign(key *rsa.PrivateKey, a Assertion) (string, error) {
	if key == nil {
		return "", common.NewValidationError("private_key", nil, "key is required")
	}
	if a.Scope == "" {
		a.Scope = DefaultScope
	}
	if a.Audience == "" {
		a.Audience = DefaultTokenURI
	}
	if a.IssuedAt.IsZero() {
		a.IssuedAt = time.Now()
	}

	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.RS256, Key: key},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return "", common.WrapError(err, "failed to create RS256 signer")
	}

	registered := jwt.Claims{
		Issuer:   a.Issuer,
		Audience: jwt.Audience{a.Audience},
		IssuedAt: jwt.NewNumericDate(a.IssuedAt),
		Expiry:   jwt.NewNumericDate(a.IssuedAt.Add(Lifetime)),
	}

	raw, err := jwt.Signed(signer).Claims(registered).Claims(Claims{Scope: a.Scope}).Serialize()
	if err != nil {
		return "", common.WrapError(err, "failed to serialize assertion")
	}
	return raw, nil
}

// FormBody returns the urlencoded token request for assertion
func FormBody(assertion string) string {
	return url.Values{
		"grant_type": {GrantType},
		"assertion":  {assertion},
	}.Encode()
}
