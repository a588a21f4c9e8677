// Package patterns holds the secret family catalog and extracts candidates
// from scanned text.
package patterns

import (
	"embed"
	"fmt"
	"regexp"
	"sort"

	"github.com/aleister1102/leakwatch/internal/common"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog embed.FS

// Pattern is one matching rule of a secret family. A family with several
// payload fields has one pattern per field.
type Pattern struct {
	Family           string         `yaml:"family"`
	Field            string         `yaml:"field"`
	Expr             string         `yaml:"pattern"`
	EntropyThreshold float64        `yaml:"entropy"`
	Compiled         *regexp.Regexp `yaml:"-"`
}

// Compile compiles Expr in place
func (p *Pattern) Compile() error {
	re, err := regexp.Compile(p.Expr)
	if err != nil {
		return common.WrapErrorf(err, "failed to compile pattern for %s/%s", p.Family, p.Field)
	}
	p.Compiled = re
	return nil
}

// MustPattern builds a compiled pattern, panicking on a bad expression.
// Intended for package-level tables and tests.
func MustPattern(family, field, expr string, entropy float64) Pattern {
	p := Pattern{Family: family, Field: field, Expr: expr, EntropyThreshold: entropy}
	if err := p.Compile(); err != nil {
		panic(err)
	}
	return p
}

// Catalog is the immutable set of patterns, grouped by family
type Catalog struct {
	byFamily map[string][]Pattern
	order    []string
}

// LoadCatalog parses and compiles the embedded catalog
func LoadCatalog() (*Catalog, error) {
	data, err := embeddedCatalog.ReadFile("catalog.yaml")
	if err != nil {
		return nil, common.WrapError(err, "failed to read embedded catalog")
	}
	return ParseCatalog(data)
}

// ParseCatalog parses a YAML list of patterns and compiles every entry
func ParseCatalog(data []byte) (*Catalog, error) {
	var entries []Pattern
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, common.WrapError(err, "failed to unmarshal pattern catalog")
	}
	return NewCatalog(entries)
}

// NewCatalog compiles patterns that are not compiled yet and groups them
func NewCatalog(entries []Pattern) (*Catalog, error) {
	c := &Catalog{byFamily: make(map[string][]Pattern)}
	for i := range entries {
		p := entries[i]
		if p.Family == "" || p.Field == "" {
			return nil, common.NewValidationError("pattern", p.Expr, "family and field are required")
		}
		if p.Compiled == nil {
			if err := p.Compile(); err != nil {
				return nil, err
			}
		}
		if _, seen := c.byFamily[p.Family]; !seen {
			c.order = append(c.order, p.Family)
		}
		c.byFamily[p.Family] = append(c.byFamily[p.Family], p)
	}
	return c, nil
}

// Families lists family names in catalog order
func (c *Catalog) Families() []string {
	return append([]string(nil), c.order...)
}

// ForFamily returns the patterns of a family
func (c *Catalog) ForFamily(family string) ([]Pattern, bool) {
	p, ok := c.byFamily[family]
	return p, ok
}

// fieldPattern returns the pattern filling field for family
func (c *Catalog) fieldPattern(family, field string) (Pattern, error) {
	for _, p := range c.byFamily[family] {
		if p.Field == field {
			return p, nil
		}
	}
	return Pattern{}, fmt.Errorf("no pattern for %s field %s: %w", family, field, common.ErrNotFound)
}

// Fields lists the distinct fields of a family in sorted order
func (c *Catalog) Fields(family string) []string {
	seen := make(map[string]struct{})
	var fields []string
	for _, p := range c.byFamily[family] {
		if _, ok := seen[p.Field]; !ok {
			seen[p.Field] = struct{}{}
			fields = append(fields, p.Field)
		}
	}
	sort.Strings(fields)
	return fields
}
