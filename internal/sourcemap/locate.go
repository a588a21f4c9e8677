package sourcemap

import (
	"encoding/base64"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf16"

	"github.com/aleister1102/leakwatch/internal/common"
	"github.com/aleister1102/leakwatch/internal/patterns"
)

var sourceMappingURLPattern = regexp.MustCompile(`(?m)^[ \t]*//[#@][ \t]*sourceMappingURL=([^\s'"]+)[ \t]*$`)

// Position is a location in delivered content: 1-based line, 0-based column
type Position struct {
	Line   int
	Column int
}

// FindSourceMapURL returns the map URL announced by the last
// sourceMappingURL comment, resolved against deliveryURL.
// Data URLs are returned as they are.
func FindSourceMapURL(deliveryURL, content string) (string, bool) {
	matches := sourceMappingURLPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return "", false
	}
	ref := matches[len(matches)-1][1]
	if strings.HasPrefix(ref, "data:") {
		return ref, true
	}

	refURL, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	if refURL.IsAbs() {
		return refURL.String(), true
	}

	base, err := url.Parse(deliveryURL)
	if err != nil || !base.IsAbs() {
		return "", false
	}
	return base.ResolveReference(refURL).String(), true
}

// FindSecretPosition locates the first occurrence of match in content.
// The column counts UTF-16 code units, the unit of source map columns.
func FindSecretPosition(content, match string) (Position, bool) {
	if match == "" {
		return Position{}, false
	}
	idx := strings.Index(content, match)
	if idx < 0 {
		return Position{}, false
	}
	line, col := patterns.LineColumn(content, idx)
	return Position{Line: line, Column: utf16Len(content[idx-col : idx])}, true
}

func utf16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// decodeDataURL returns the body of an RFC 2397 data URL
func decodeDataURL(raw string) ([]byte, error) {
	rest := strings.TrimPrefix(raw, "data:")
	meta, data, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, common.NewValidationError("source_map_url", "data:", "data URL has no payload")
	}
	if strings.HasSuffix(meta, ";base64") {
		decoded, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return nil, common.WrapError(err, "failed to decode base64 data URL")
		}
		return decoded, nil
	}
	unescaped, err := url.PathUnescape(data)
	if err != nil {
		return nil, common.WrapError(err, "failed to unescape data URL")
	}
	return []byte(unescaped), nil
}
