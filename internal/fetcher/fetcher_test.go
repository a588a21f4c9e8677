package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/aleister1102/leakwatch/internal/common"
	"github.com/aleister1102/leakwatch/internal/config"
	"github.com/aleister1102/leakwatch/internal/detector"
	"github.com/aleister1102/leakwatch/internal/httpclient"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><head>
<script>var token = 'inline';</script>
<script type="application/json">{"not":"code"}</script>
<script src="/static/app.js"></script>
<script src="/static/app.js#again"></script>
<script src="/static/missing.js"></script>
</head><body></body></html>`

type siteServer struct {
	*httptest.Server
	mu   sync.Mutex
	hits map[string]int
}

func newSite(t *testing.T) *siteServer {
	t.Helper()
	s := &siteServer{hits: make(map[string]int)}
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		s.hit(r.URL.Path)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	})
	serveJS := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			s.hit(r.URL.Path)
			w.Header().Set("Content-Type", "application/javascript")
			_, _ = w.Write([]byte(body))
		}
	}
	mux.HandleFunc("/static/app.js", serveJS(`fetch("/static/chunk-1.js").then(r => r.text());`))
	mux.HandleFunc("/static/chunk-1.js", serveJS(`fetch("/static/chunk-2.js");`))
	mux.HandleFunc("/static/chunk-2.js", serveJS(`var deep = 1;`))
	mux.HandleFunc("/static/missing.js", func(w http.ResponseWriter, r *http.Request) {
		s.hit(r.URL.Path)
		http.NotFound(w, r)
	})
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func (s *siteServer) hit(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits[path]++
}

func (s *siteServer) count(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func newTestFetcher(t *testing.T, cfg config.FetcherConfig) *Fetcher {
	t.Helper()
	client, err := httpclient.NewHTTPClient(httpclient.DefaultHTTPClientConfig(), zerolog.Nop())
	require.NoError(t, err)
	return NewFetcher(client, cfg, zerolog.Nop())
}

func deliveryURLs(contents []detector.Content) []string {
	out := make([]string, 0, len(contents))
	for _, c := range contents {
		out = append(out, c.DeliveryURL)
	}
	return out
}

func TestFetchPage_CollectsScriptsAndChunks(t *testing.T) {
	site := newSite(t)
	f := newTestFetcher(t, config.NewDefaultFetcherConfig())

	contents, err := f.FetchPage(context.Background(), site.URL+"/")
	require.NoError(t, err)

	assert.Equal(t, []string{
		site.URL + "/",
		site.URL + "/static/app.js",
		site.URL + "/static/chunk-1.js",
	}, deliveryURLs(contents))
	assert.Equal(t, "var token = 'inline';", contents[0].Body)
	for _, c := range contents {
		assert.Equal(t, site.URL+"/", c.PageURL)
	}

	assert.Equal(t, 1, site.count("/static/app.js"))
	assert.Equal(t, 1, site.count("/static/missing.js"))
	assert.Zero(t, site.count("/static/chunk-2.js"))
}

func TestFetchPage_DeeperChunks(t *testing.T) {
	site := newSite(t)
	cfg := config.NewDefaultFetcherConfig()
	cfg.MaxChunkDepth = 2

	contents, err := newTestFetcher(t, cfg).FetchPage(context.Background(), site.URL+"/")
	require.NoError(t, err)
	assert.Contains(t, deliveryURLs(contents), site.URL+"/static/chunk-2.js")
}

func TestFetchPage_Limits(t *testing.T) {
	site := newSite(t)
	cfg := config.NewDefaultFetcherConfig()
	cfg.MaxScripts = 1
	cfg.IncludeInline = false

	contents, err := newTestFetcher(t, cfg).FetchPage(context.Background(), site.URL+"/")
	require.NoError(t, err)
	assert.Equal(t, []string{site.URL + "/static/app.js"}, deliveryURLs(contents))

	cfg = config.NewDefaultFetcherConfig()
	cfg.FollowChunks = false
	contents, err = newTestFetcher(t, cfg).FetchPage(context.Background(), site.URL+"/")
	require.NoError(t, err)
	assert.NotContains(t, deliveryURLs(contents), site.URL+"/static/chunk-1.js")
}

func TestFetchPage_ScriptURL(t *testing.T) {
	site := newSite(t)
	contents, err := newTestFetcher(t, config.NewDefaultFetcherConfig()).FetchPage(context.Background(), site.URL+"/static/chunk-1.js")
	require.NoError(t, err)
	require.Len(t, contents, 2)
	assert.Equal(t, `fetch("/static/chunk-2.js");`, contents[0].Body)
	assert.Equal(t, site.URL+"/static/chunk-2.js", contents[1].DeliveryURL)
}

func TestFetchPage_Errors(t *testing.T) {
	site := newSite(t)
	f := newTestFetcher(t, config.NewDefaultFetcherConfig())

	_, err := f.FetchPage(context.Background(), "/relative")
	var vErr *common.ValidationError
	assert.ErrorAs(t, err, &vErr)

	_, err = f.FetchPage(context.Background(), site.URL+"/static/missing.js")
	var hErr *common.HTTPError
	require.ErrorAs(t, err, &hErr)
	assert.Equal(t, http.StatusNotFound, hErr.StatusCode)
}

func TestHelpers(t *testing.T) {
	assert.True(t, isJavaScriptPath("https://a.test/x/chunk.js?v=1"))
	assert.True(t, isJavaScriptPath("https://a.test/mod.mjs"))
	assert.False(t, isJavaScriptPath("https://a.test/api/users"))
	assert.True(t, isHTML("", []byte("  <!doctype html>")))
	assert.False(t, isHTML("application/javascript", []byte("<x>")))
	assert.False(t, isJavaScriptType("application/json"))
	assert.True(t, isJavaScriptType("module"))
}
