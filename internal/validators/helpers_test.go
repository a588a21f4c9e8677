package validators

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aleister1102/leakwatch/internal/config"
	"github.com/aleister1102/leakwatch/internal/httpclient"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// recorder is an httptest server that answers with scripted responses in order
type recorder struct {
	mu        sync.Mutex
	requests  []*http.Request
	bodies    []string
	responses []scripted
	server    *httptest.Server
}

type scripted struct {
	status int
	body   string
}

func newRecorder(t *testing.T, responses ...scripted) *recorder {
	t.Helper()
	rec := &recorder{responses: responses}
	rec.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)

		rec.mu.Lock()
		idx := len(rec.requests)
		rec.requests = append(rec.requests, r.Clone(context.Background()))
		rec.bodies = append(rec.bodies, string(buf))
		resp := scripted{status: http.StatusOK, body: `{}`}
		if idx < len(rec.responses) {
			resp = rec.responses[idx]
		} else if len(rec.responses) > 0 {
			resp = rec.responses[len(rec.responses)-1]
		}
		rec.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.status)
		_, _ = w.Write([]byte(resp.body))
	}))
	t.Cleanup(rec.server.Close)
	return rec
}

func (r *recorder) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

func (r *recorder) request(i int) *http.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests[i]
}

func (r *recorder) body(i int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bodies[i]
}

func testDeps(t *testing.T, family, baseURL string) Deps {
	t.Helper()
	client, err := httpclient.NewHTTPClient(httpclient.DefaultHTTPClientConfig(), zerolog.Nop())
	require.NoError(t, err)

	cfg := config.NewDefaultValidatorConfig()
	if baseURL != "" {
		cfg.Endpoints[family] = baseURL
	}
	return Deps{
		Client: client,
		Config: cfg,
		Logger: zerolog.Nop(),
		Now:    func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) },
		Wait:   func(ctx context.Context, d time.Duration) error { return ctx.Err() },
	}
}

// closedURL returns the address of a server that no longer accepts connections
func closedURL(t *testing.T) string {
	t.Helper()
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	return server.URL
}
