// Package fetcher acquires the JavaScript delivered to a page: the page
// itself, its inline and external scripts, and chunks those scripts load.
package fetcher

import (
	"bytes"
	"context"
	"net/url"
	"path"
	"strings"

	"github.com/BishopFox/jsluice"
	"github.com/PuerkitoBio/goquery"
	"github.com/aleister1102/leakwatch/internal/common"
	"github.com/aleister1102/leakwatch/internal/config"
	"github.com/aleister1102/leakwatch/internal/detector"
	"github.com/aleister1102/leakwatch/internal/httpclient"
	"github.com/rs/zerolog"
)

// ContentFetcher is the part of httpclient.HTTPClient the fetcher uses
type ContentFetcher interface {
	FetchContent(input httpclient.FetchContentInput) (*httpclient.FetchContentResult, error)
}

// Fetcher collects scannable content for a page URL
type Fetcher struct {
	client ContentFetcher
	config config.FetcherConfig
	logger zerolog.Logger
}

// NewFetcher creates a fetcher
func NewFetcher(client ContentFetcher, cfg config.FetcherConfig, logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		client: client,
		config: cfg,
		logger: logger.With().Str("component", "Fetcher").Logger(),
	}
}

type pendingScript struct {
	url   string
	depth int
}

// FetchPage returns the content delivered for pageURL. An HTML page yields
// its inline scripts and the scripts it references; any other response is
// scanned as is. Only the page fetch itself can fail the call.
func (f *Fetcher) FetchPage(ctx context.Context, pageURL string) ([]detector.Content, error) {
	base, err := url.Parse(pageURL)
	if err != nil || !base.IsAbs() {
		return nil, common.NewValidationError("url", pageURL, "must be an absolute URL")
	}

	page, err := f.client.FetchContent(httpclient.FetchContentInput{URL: pageURL, Context: ctx})
	if err != nil {
		return nil, common.WrapErrorf(err, "failed to fetch page %s", pageURL)
	}

	var contents []detector.Content
	var queue []pendingScript
	seen := map[string]struct{}{pageURL: {}}

	if isHTML(page.ContentType, page.Content) {
		inline, srcs, herr := f.parseHTML(page.Content, base)
		if herr != nil {
			f.logger.Warn().Err(herr).Str("url", pageURL).Msg("Failed to parse HTML, scanning raw page")
			contents = append(contents, detector.Content{PageURL: pageURL, DeliveryURL: pageURL, Body: string(page.Content)})
		}
		for _, body := range inline {
			contents = append(contents, detector.Content{PageURL: pageURL, DeliveryURL: pageURL, Body: body})
		}
		for _, src := range srcs {
			if _, dup := seen[src]; !dup {
				seen[src] = struct{}{}
				queue = append(queue, pendingScript{url: src})
			}
		}
	} else {
		contents = append(contents, detector.Content{PageURL: pageURL, DeliveryURL: pageURL, Body: string(page.Content)})
		if f.config.FollowChunks && f.config.MaxChunkDepth > 0 {
			queue = append(queue, f.chunkURLs(page.Content, base, 1, seen)...)
		}
	}

	fetched := 0
	for len(queue) > 0 {
		if ctx.Err() != nil {
			return contents, ctx.Err()
		}
		if f.config.MaxScripts > 0 && fetched >= f.config.MaxScripts {
			f.logger.Warn().Str("url", pageURL).Int("max_scripts", f.config.MaxScripts).Int("skipped", len(queue)).Msg("Script limit reached")
			break
		}
		next := queue[0]
		queue = queue[1:]

		result, err := f.client.FetchContent(httpclient.FetchContentInput{URL: next.url, Context: ctx})
		if err != nil {
			f.logger.Warn().Err(err).Str("script_url", next.url).Msg("Failed to fetch script")
			continue
		}
		fetched++
		contents = append(contents, detector.Content{PageURL: pageURL, DeliveryURL: next.url, Body: string(result.Content)})

		if f.config.FollowChunks && next.depth < f.config.MaxChunkDepth {
			scriptBase, _ := url.Parse(next.url)
			queue = append(queue, f.chunkURLs(result.Content, scriptBase, next.depth+1, seen)...)
		}
	}

	f.logger.Info().Str("url", pageURL).Int("contents", len(contents)).Int("scripts_fetched", fetched).Msg("Page content collected")
	return contents, nil
}

// parseHTML returns inline script bodies and absolute external script URLs
func (f *Fetcher) parseHTML(content []byte, pageURL *url.URL) ([]string, []string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, nil, common.WrapError(err, "failed to parse HTML content")
	}

	base := pageURL
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if resolved, err := pageURL.Parse(strings.TrimSpace(href)); err == nil {
			base = resolved
		}
	}

	var inline, srcs []string
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok {
			if abs := resolve(base, src); abs != "" {
				srcs = append(srcs, abs)
			}
			return
		}
		if !f.config.IncludeInline || !isJavaScriptType(s.AttrOr("type", "")) {
			return
		}
		if body := strings.TrimSpace(s.Text()); body != "" {
			inline = append(inline, body)
		}
	})
	return inline, srcs, nil
}

// chunkURLs lists .js URLs referenced by script content that were not seen yet
func (f *Fetcher) chunkURLs(content []byte, base *url.URL, depth int, seen map[string]struct{}) []pendingScript {
	if base == nil {
		return nil
	}
	var out []pendingScript
	for _, found := range jsluice.NewAnalyzer(content).GetURLs() {
		abs := resolve(base, found.URL)
		if abs == "" || !isJavaScriptPath(abs) {
			continue
		}
		if _, dup := seen[abs]; dup {
			continue
		}
		seen[abs] = struct{}{}
		out = append(out, pendingScript{url: abs, depth: depth})
		f.logger.Debug().Str("chunk_url", abs).Str("source", found.Source).Msg("Discovered script chunk")
	}
	return out
}

func resolve(base *url.URL, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "data:") || strings.HasPrefix(raw, "javascript:") {
		return ""
	}
	u, err := base.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	u.Fragment = ""
	return u.String()
}

func isJavaScriptPath(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	ext := strings.ToLower(path.Ext(u.Path))
	return ext == ".js" || ext == ".mjs"
}

func isJavaScriptType(t string) bool {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "", "text/javascript", "application/javascript", "module", "text/ecmascript", "application/ecmascript":
		return true
	}
	return false
}

func isHTML(contentType string, body []byte) bool {
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "html") {
		return true
	}
	if ct != "" {
		return false
	}
	trimmed := bytes.TrimSpace(body)
	return bytes.HasPrefix(trimmed, []byte("<"))
}
