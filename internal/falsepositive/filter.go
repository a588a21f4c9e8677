// Package falsepositive rejects low-signal secret candidates before any
// validator is contacted.
package falsepositive

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultTerms is used when no custom terms are configured
var DefaultTerms = []string{"example", "xxxxxx", "aaaaaa", "abcde", "00000", "sample", "*****"}

const (
	ReasonInvalidUTF8 = "invalid utf8"
	ReasonHash        = "matches hash pattern"
	ReasonUUID        = "matches UUID pattern"
)

var (
	// Lowercase only. Uppercase hex is deliberately left to the validators.
	hashPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)
	uuidPattern = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
)

// Filter holds a normalized term set. It is safe for concurrent use.
type Filter struct {
	terms []string
}

// New builds a filter over terms. An empty list selects DefaultTerms.
func New(terms ...string) *Filter {
	if len(terms) == 0 {
		terms = DefaultTerms
	}
	f := &Filter{terms: make([]string, 0, len(terms))}
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		f.terms = append(f.terms, t)
	}
	return f
}

// Terms returns the normalized term set in evaluation order
func (f *Filter) Terms() []string {
	return append([]string(nil), f.terms...)
}

// IsKnownFalsePositive runs the checks in priority order and stops at the
// first hit. The reason is empty when the candidate is accepted.
func (f *Filter) IsKnownFalsePositive(candidate string) (bool, string) {
	if !utf8.ValidString(candidate) {
		return true, ReasonInvalidUTF8
	}

	lower := strings.ToLower(candidate)
	for _, t := range f.terms {
		if lower == t {
			return true, "matches term: " + t
		}
	}
	for _, t := range f.terms {
		if strings.Contains(lower, t) {
			return true, "contains term: " + t
		}
	}

	if hashPattern.MatchString(candidate) {
		return true, ReasonHash
	}
	if uuidPattern.MatchString(candidate) {
		return true, ReasonUUID
	}
	return false, ""
}

// ShannonEntropy returns -sum(p*log2(p)) over the byte frequencies of s
func ShannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}
	var freq [256]int
	for i := 0; i < len(s); i++ {
		freq[s[i]]++
	}

	entropy := 0.0
	length := float64(len(s))
	for _, count := range freq {
		if count == 0 {
			continue
		}
		p := float64(count) / length
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// BelowEntropy reports whether s falls under threshold. A threshold of zero
// or less disables the check.
func BelowEntropy(s string, threshold float64) bool {
	return threshold > 0 && ShannonEntropy(s) < threshold
}
