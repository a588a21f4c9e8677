package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaggedPayloadKeepsVariant(t *testing.T) {
	payloads := []Payload{
		APIKeyPayload{APIKey: "sk-abc"},
		TokenPayload{Token: "xoxb-1", TokenType: "bot"},
		AWSPayload{AccessKeyID: "AKIAX", SecretAccessKey: "s", SessionToken: "t"},
		ServiceAccountPayload{Type: "service_account", ClientEmail: "a@b.iam.gserviceaccount.com"},
		OAuthClientPayload{ClientID: "id", ClientSecret: "secret"},
	}

	for _, p := range payloads {
		t.Run(string(p.Kind()), func(t *testing.T) {
			data, err := json.Marshal(Tag(p))
			require.NoError(t, err)

			var decoded TaggedPayload
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, p, decoded.Payload)
		})
	}
}

func TestTaggedPayloadRejectsUnknownKind(t *testing.T) {
	var decoded TaggedPayload
	err := json.Unmarshal([]byte(`{"kind":"mystery","value":{}}`), &decoded)
	assert.ErrorContains(t, err, "unknown payload kind")
}

func TestPayloadLocators(t *testing.T) {
	assert.Equal(t, []string{"AKIAX", "s"}, AWSPayload{AccessKeyID: "AKIAX", SecretAccessKey: "s"}.Locators())
	assert.NotContains(t, AWSPayload{AccessKeyID: "a", SecretAccessKey: "b"}.Fields(), "sessionToken")

	sa := ServiceAccountPayload{PrivateKeyID: "kid", PrivateKey: "-----BEGIN", ClientEmail: "e@x"}
	assert.Equal(t, []string{"kid", "e@x"}, sa.Locators())
}

func TestParseValidity(t *testing.T) {
	v, err := ParseValidity("")
	require.NoError(t, err)
	assert.Equal(t, ValidityUnknown, v)

	v, err = ParseValidity("failed_to_check")
	require.NoError(t, err)
	assert.Equal(t, ValidityFailedToCheck, v)

	_, err = ParseValidity("revoked")
	assert.Error(t, err)
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "sk-a***", Redact("sk-aaaaaaaa"))
	assert.Equal(t, "***", Redact("abcd"))
	assert.Equal(t, "AKIA***, wJal***", RedactPayload(AWSPayload{AccessKeyID: "AKIAEXAMPLE", SecretAccessKey: "wJalrXUt"}))
}

func TestFindingCloneIsDeep(t *testing.T) {
	now := time.Now()
	f := Finding{
		Fingerprint: "fp",
		SecretValue: map[string]TaggedPayload{"o1": Tag(APIKeyPayload{APIKey: "k"})},
		Metadata:    map[string]string{"team": "a"},
		Occurrences: []Occurrence{{ID: "o1", URL: "https://p", FilePath: "https://p/a.js", SourceContent: SourceContent{ExactMatchLines: []int{3}}}},
		DiscoveredAt: now,
	}

	c := f.Clone()
	c.Metadata["team"] = "b"
	c.SecretValue["o2"] = Tag(APIKeyPayload{APIKey: "x"})
	c.Occurrences[0].SourceContent.ExactMatchLines[0] = 9

	assert.Equal(t, "a", f.Metadata["team"])
	assert.Len(t, f.SecretValue, 1)
	assert.Equal(t, 3, f.Occurrences[0].SourceContent.ExactMatchLines[0])
}

func TestFindingPayloadAndLocation(t *testing.T) {
	f := Finding{
		SecretValue: map[string]TaggedPayload{"o1": Tag(TokenPayload{Token: "t"})},
		Occurrences: []Occurrence{{ID: "o1", URL: "https://p", FilePath: "https://p/app.js"}},
	}

	assert.Equal(t, TokenPayload{Token: "t"}, f.Payload())
	assert.True(t, f.HasLocation(Occurrence{URL: "https://p", FilePath: "https://p/app.js"}))
	assert.False(t, f.HasLocation(Occurrence{URL: "https://p", FilePath: "https://p/other.js"}))
	assert.Nil(t, (&Finding{}).Payload())
}

func TestSourceContentIsAttributed(t *testing.T) {
	assert.False(t, SourceContent{StartLine: NoLine, EndLine: NoLine, ExactMatchLines: []int{NoLine}}.IsAttributed())
	assert.False(t, SourceContent{}.IsAttributed())
	assert.True(t, SourceContent{StartLine: 1, EndLine: 11, ExactMatchLines: []int{6}}.IsAttributed())
	assert.True(t, SourceContent{StartLine: -4, EndLine: 6, ExactMatchLines: []int{1}}.IsAttributed())
}
