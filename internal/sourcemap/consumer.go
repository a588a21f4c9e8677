package sourcemap

import (
	gosourcemap "github.com/go-sourcemap/sourcemap"
)

// Mapping is an original position returned by a Consumer. Line is 1-based.
type Mapping struct {
	Source string
	Name   string
	Line   int
	Column int
}

// Consumer answers position queries against one parsed source map
type Consumer interface {
	OriginalPositionFor(pos Position) (Mapping, bool)
	SourceContentFor(source string) (string, bool)
}

// ParseFunc parses raw map bytes fetched from mapURL
type ParseFunc func(mapURL string, data []byte) (Consumer, error)

type goSourceMapConsumer struct {
	smap *gosourcemap.Consumer
}

// Parse builds a Consumer backed by github.com/go-sourcemap/sourcemap
func Parse(mapURL string, data []byte) (Consumer, error) {
	smap, err := gosourcemap.Parse(mapURL, data)
	if err != nil {
		return nil, err
	}
	return &goSourceMapConsumer{smap: smap}, nil
}

func (c *goSourceMapConsumer) OriginalPositionFor(pos Position) (Mapping, bool) {
	source, name, line, col, ok := c.smap.Source(pos.Line, pos.Column)
	if !ok || source == "" {
		return Mapping{}, false
	}
	return Mapping{Source: source, Name: name, Line: line, Column: col}, true
}

func (c *goSourceMapConsumer) SourceContentFor(source string) (string, bool) {
	content := c.smap.SourceContent(source)
	return content, content != ""
}
