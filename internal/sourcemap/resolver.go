// Package sourcemap attributes matches in delivered JavaScript to their
// original source files through source maps.
package sourcemap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aleister1102/leakwatch/internal/common"
	"github.com/aleister1102/leakwatch/internal/config"
	"github.com/aleister1102/leakwatch/internal/httpclient"
	"github.com/aleister1102/leakwatch/internal/models"
	"github.com/jellydator/ttlcache/v3"
	"github.com/rs/zerolog"
)

// ContextLines is the number of lines kept on each side of a mapped match
const ContextLines = config.DefaultSourceMapContextLines

// Resolver turns a match into a SourceContent. It never fails: any problem
// with the map degrades to attribution of the delivered file.
type Resolver struct {
	client httpclient.Doer
	config config.SourceMapConfig
	parse  ParseFunc
	cache  *ttlcache.Cache[string, Consumer]
	logger zerolog.Logger
}

// Option customizes a Resolver
type Option func(*Resolver)

// WithParser replaces the go-sourcemap backed parser
func WithParser(parse ParseFunc) Option {
	return func(r *Resolver) {
		r.parse = parse
	}
}

// NewResolver creates a resolver fetching maps through client
func NewResolver(cfg config.SourceMapConfig, client httpclient.Doer, logger zerolog.Logger, opts ...Option) *Resolver {
	ttl := time.Duration(cfg.CacheTTLMinutes) * time.Minute
	cacheOpts := []ttlcache.Option[string, Consumer]{
		ttlcache.WithTTL[string, Consumer](ttl),
		ttlcache.WithDisableTouchOnHit[string, Consumer](),
	}
	if cfg.CacheCapacity > 0 {
		cacheOpts = append(cacheOpts, ttlcache.WithCapacity[string, Consumer](uint64(cfg.CacheCapacity)))
	}

	r := &Resolver{
		client: client,
		config: cfg,
		parse:  Parse,
		cache:  ttlcache.New[string, Consumer](cacheOpts...),
		logger: logger.With().Str("component", "SourceMapResolver").Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve attributes payload, found in content delivered from deliveryURL.
// Every locator of the payload is mapped on its own; the window spans all
// mapped lines.
func (r *Resolver) Resolve(ctx context.Context, content, deliveryURL string, payload models.Payload) models.SourceContent {
	fallback := DefaultAttribution(deliveryURL, payload)
	if !r.config.Enabled || payload == nil {
		return fallback
	}

	mapURL, ok := FindSourceMapURL(deliveryURL, content)
	if !ok {
		return fallback
	}

	consumer, err := r.consumer(ctx, mapURL)
	if err != nil {
		r.logger.Debug().Err(err).Str("url", deliveryURL).Msg("Source map unavailable, using default attribution")
		return fallback
	}

	var source string
	var lines []int
	for _, locator := range payload.Locators() {
		pos, found := FindSecretPosition(content, locator)
		if !found {
			continue
		}
		mapping, mapped := consumer.OriginalPositionFor(pos)
		if !mapped {
			continue
		}
		if source == "" {
			source = mapping.Source
		}
		if mapping.Source != source {
			continue
		}
		lines = appendUnique(lines, mapping.Line)
	}
	if source == "" {
		return fallback
	}

	lo, hi := lines[0], lines[0]
	for _, l := range lines[1:] {
		lo = min(lo, l)
		hi = max(hi, l)
	}

	attributed := models.SourceContent{
		Content:         fallback.Content,
		Filename:        source,
		StartLine:       lo - ContextLines,
		EndLine:         hi + ContextLines,
		ExactMatchLines: lines,
	}
	if original, ok := consumer.SourceContentFor(source); ok {
		attributed.Content = original
	}
	return attributed
}

// DefaultAttribution attributes payload to the delivered file itself
func DefaultAttribution(deliveryURL string, payload models.Payload) models.SourceContent {
	snippet := ""
	if payload != nil {
		if data, err := json.Marshal(payload); err == nil {
			snippet = string(data)
		}
	}
	return models.SourceContent{
		Content:         snippet,
		Filename:        lastPathSegment(deliveryURL),
		StartLine:       models.NoLine,
		EndLine:         models.NoLine,
		ExactMatchLines: []int{models.NoLine},
	}
}

func (r *Resolver) consumer(ctx context.Context, mapURL string) (Consumer, error) {
	if item := r.cache.Get(mapURL); item != nil {
		return item.Value(), nil
	}

	data, err := r.fetch(ctx, mapURL)
	if err != nil {
		return nil, err
	}

	base := mapURL
	if strings.HasPrefix(mapURL, "data:") {
		base = ""
	}
	consumer, err := r.parse(base, data)
	if err != nil {
		return nil, common.WrapError(err, "failed to parse source map")
	}

	if base != "" {
		r.cache.Set(mapURL, consumer, ttlcache.DefaultTTL)
	}
	return consumer, nil
}

func (r *Resolver) fetch(ctx context.Context, mapURL string) ([]byte, error) {
	if strings.HasPrefix(mapURL, "data:") {
		return decodeDataURL(mapURL)
	}
	if r.client == nil {
		return nil, common.NewError("no HTTP client configured for source map %s", mapURL)
	}

	timeout := time.Duration(r.config.FetchTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = config.DefaultSourceMapFetchTimeoutSecs * time.Second
	}
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := r.client.Do(&httpclient.HTTPRequest{
		URL:     mapURL,
		Method:  http.MethodGet,
		Context: fetchCtx,
	})
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, common.NewHTTPErrorWithURL(resp.StatusCode, "source map fetch failed", mapURL)
	}
	return resp.Body, nil
}

func lastPathSegment(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		p = u.Path
	}
	p = strings.TrimRight(p, "/")
	if p == "" {
		return raw
	}
	return path.Base(p)
}

func appendUnique(lines []int, l int) []int {
	for _, existing := range lines {
		if existing == l {
			return lines
		}
	}
	return append(lines, l)
}
