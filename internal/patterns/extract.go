package patterns

import "strings"

// Candidate is a raw match of a pattern within scanned content
type Candidate struct {
	Family string
	Field  string
	Value  string
	// Offset is the byte offset of Value in the content
	Offset int
	// Line is 1-based, Column is a 0-based byte column
	Line   int
	Column int
}

// Extract returns every non-overlapping match of p in content, deduplicated
// by exact value. The first occurrence of a repeated value is kept.
func Extract(content string, p Pattern) []Candidate {
	if p.Compiled == nil || content == "" {
		return nil
	}

	group := p.Compiled.SubexpIndex("secret")
	seen := make(map[string]struct{})
	var out []Candidate

	for _, idx := range p.Compiled.FindAllStringSubmatchIndex(content, -1) {
		start, end := idx[0], idx[1]
		if group > 0 && idx[2*group] >= 0 {
			start, end = idx[2*group], idx[2*group+1]
		}
		value := content[start:end]
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}

		line, col := LineColumn(content, start)
		out = append(out, Candidate{
			Family: p.Family,
			Field:  p.Field,
			Value:  value,
			Offset: start,
			Line:   line,
			Column: col,
		})
	}
	return out
}

// ExtractAll runs every pattern over the same content independently
func ExtractAll(content string, ps []Pattern) map[string][]Candidate {
	out := make(map[string][]Candidate, len(ps))
	for _, p := range ps {
		out[p.Field] = mergeUnique(out[p.Field], Extract(content, p))
	}
	return out
}

func mergeUnique(dst, src []Candidate) []Candidate {
	for _, c := range src {
		dup := false
		for _, d := range dst {
			if d.Value == c.Value {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, c)
		}
	}
	return dst
}

// LineColumn converts a byte offset into a 1-based line and 0-based column.
// Lines are split on '\n'.
func LineColumn(content string, offset int) (int, int) {
	if offset < 0 {
		return 0, 0
	}
	if offset > len(content) {
		offset = len(content)
	}
	prefix := content[:offset]
	line := strings.Count(prefix, "\n") + 1
	col := offset - (strings.LastIndexByte(prefix, '\n') + 1)
	return line, col
}
