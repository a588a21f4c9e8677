package httpclient

import (
	"context"
	"io"
	"net/http"
)

// HTTPRequest is one outbound call. A nil Context means context.Background.
type HTTPRequest struct {
	URL     string
	Method  string
	Headers map[string]string
	Body    io.Reader
	Context context.Context
}

func (r *HTTPRequest) ctx() context.Context {
	if r.Context == nil {
		return context.Background()
	}
	return r.Context
}

// HTTPResponse is a response whose body has already been read and closed
type HTTPResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Truncated  bool
}

// Doer is the part of HTTPClient the validators and resolvers depend on
type Doer interface {
	Do(req *HTTPRequest) (*HTTPResponse, error)
}

// IsSuccess reports a 2xx status
func (r *HTTPResponse) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
