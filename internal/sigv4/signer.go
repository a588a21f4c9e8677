// Package sigv4 signs HTTP requests with AWS Signature Version 4.
package sigv4

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aleister1102/leakwatch/internal/common"
)

const (
	Algorithm = "AWS4-HMAC-SHA256"

	// TimeFormat is the ISO-8601 basic format of x-amz-date
	TimeFormat = "20060102T150405Z"
	// ShortTimeFormat is the date part used in the credential scope
	ShortTimeFormat = "20060102"

	HeaderAmzDate          = "X-Amz-Date"
	HeaderAmzSecurityToken = "X-Amz-Security-Token"
	HeaderAuthorization    = "Authorization"
)

// EmptyPayloadHash is the hex SHA-256 of an empty body
var EmptyPayloadHash = HashPayload(nil)

// Headers never included in the signature
var ignoredHeaders = map[string]struct{}{
	"authorization":     {},
	"user-agent":        {},
	"x-amzn-trace-id":   {},
	"expect":            {},
	"transfer-encoding": {},
}

// Credentials is a static AWS credential set
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// Signer adds SigV4 authentication to requests
type Signer struct{}

// NewSigner creates a Signer
func NewSigner() *Signer {
	return &Signer{}
}

// SignHTTP sets X-Amz-Date, X-Amz-Security-Token (when a session token is
// present) and Authorization on req. payloadHash is the hex SHA-256 of the
// body; empty means an empty body.
func (s *Signer) SignHTTP(req *http.Request, creds Credentials, payloadHash, service, region string, signingTime time.Time) error {
	if req == nil || req.URL == nil {
		return common.NewValidationError("request", nil, "request with URL is required")
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return common.NewValidationError("credentials", creds.AccessKeyID, "access key id and secret access key are required")
	}
	if payloadHash == "" {
		payloadHash = EmptyPayloadHash
	}

	signingTime = signingTime.UTC()
	amzDate := signingTime.Format(TimeFormat)
	shortDate := signingTime.Format(ShortTimeFormat)

	req.Header.Del(HeaderAuthorization)
	req.Header.Set(HeaderAmzDate, amzDate)
	if creds.SessionToken != "" {
		req.Header.Set(HeaderAmzSecurityToken, creds.SessionToken)
	}

	scope := CredentialScope(shortDate, region, service)
	signedHeaders, canonicalHeaders := buildCanonicalHeaders(req)
	canonicalRequest := strings.Join([]string{
		req.Method,
		canonicalURI(req.URL),
		canonicalQuery(req.URL),
		canonicalHeaders,
		signedHeaders,
		payloadHash,
	}, "\n")

	stringToSign := StringToSign(amzDate, scope, canonicalRequest)
	key := DeriveSigningKey(creds.SecretAccessKey, shortDate, region, service)
	signature := hex.EncodeToString(hmacSHA256(key, []byte(stringToSign)))

	req.Header.Set(HeaderAuthorization, Algorithm+" Credential="+creds.AccessKeyID+"/"+scope+
		", SignedHeaders="+signedHeaders+", Signature="+signature)
	return nil
}

// CredentialScope returns date/region/service/aws4_request
func CredentialScope(shortDate, region, service string) string {
	return strings.Join([]string{shortDate, region, service, "aws4_request"}, "/")
}

// StringToSign builds the string signed with the derived key
func StringToSign(amzDate, scope, canonicalRequest string) string {
	return strings.Join([]string{Algorithm, amzDate, scope, HashPayload([]byte(canonicalRequest))}, "\n")
}

// DeriveSigningKey runs the four step HMAC chain over date, region, service
// and the aws4_request terminator
func DeriveSigningKey(secret, shortDate, region, service string) []byte {
	kDate := hmacSHA256([]byte("AWS4"+secret), []byte(shortDate))
	kRegion := hmacSHA256(kDate, []byte(region))
	kService := hmacSHA256(kRegion, []byte(service))
	return hmacSHA256(kService, []byte("aws4_request"))
}

// HashPayload returns the hex SHA-256 of body
func HashPayload(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func hmacSHA256(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

func canonicalURI(u *url.URL) string {
	p := u.EscapedPath()
	if p == "" {
		return "/"
	}
	return p
}

func canonicalQuery(u *url.URL) string {
	query := u.Query()
	for key := range query {
		sort.Strings(query[key])
	}
	// Encode sorts by key
	return strings.ReplaceAll(query.Encode(), "+", "%20")
}

func buildCanonicalHeaders(req *http.Request) (string, string) {
	values := map[string][]string{"host": {signingHost(req)}}
	for name, vs := range req.Header {
		lower := strings.ToLower(name)
		if _, skip := ignoredHeaders[lower]; skip || lower == "host" {
			continue
		}
		values[lower] = append(values[lower], vs...)
	}
	if req.ContentLength > 0 {
		values["content-length"] = []string{strconv.FormatInt(req.ContentLength, 10)}
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		trimmed := make([]string, len(values[name]))
		for i, v := range values[name] {
			trimmed[i] = strings.Join(strings.Fields(v), " ")
		}
		b.WriteString(name)
		b.WriteByte(':')
		b.WriteString(strings.Join(trimmed, ","))
		b.WriteByte('\n')
	}
	return strings.Join(names, ";"), b.String()
}

// signingHost drops the default port of the scheme
func signingHost(req *http.Request) string {
	host := req.Host
	if host == "" {
		host = req.URL.Host
	}
	switch {
	case req.URL.Scheme == "https" && strings.HasSuffix(host, ":443"):
		return strings.TrimSuffix(host, ":443")
	case req.URL.Scheme == "http" && strings.HasSuffix(host, ":80"):
		return strings.TrimSuffix(host, ":80")
	}
	return host
}
