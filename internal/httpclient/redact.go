package httpclient

import (
	"net/url"
	"strings"
)

const (
	redactedValue       = "***"
	minSecretSegmentLen = 20
)

// SafeURL returns rawURL fit for logs and error messages. Query values are
// masked, and so are path segments long enough to carry a credential, such
// as the bot token in a Telegram URL.
func SafeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return redactedValue
	}
	u.User = nil

	if u.RawQuery != "" {
		q := u.Query()
		for key := range q {
			q.Set(key, redactedValue)
		}
		u.RawQuery = q.Encode()
	}

	segments := strings.Split(u.EscapedPath(), "/")
	for i, seg := range segments {
		if len(seg) >= minSecretSegmentLen {
			segments[i] = redactedValue
		}
	}
	u.RawPath = strings.Join(segments, "/")
	if path, err := url.PathUnescape(u.RawPath); err == nil {
		u.Path = path
	}

	return u.String()
}
