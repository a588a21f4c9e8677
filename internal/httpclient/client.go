package httpclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"

	"github.com/aleister1102/leakwatch/internal/common"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
)

// HTTPClient is the outbound client shared by fetching, source map
// resolution and validation. Bodies are read fully, up to MaxContentSize.
type HTTPClient struct {
	client       *http.Client
	config       HTTPClientConfig
	logger       zerolog.Logger
	retryHandler *RetryHandler
}

// NewHTTPClient creates a client without retries
func NewHTTPClient(config HTTPClientConfig, logger zerolog.Logger) (*HTTPClient, error) {
	logger = logger.With().Str("component", "HTTPClient").Logger()

	transport, err := newTransport(config, logger)
	if err != nil {
		return nil, err
	}

	client := &http.Client{
		Transport:     transport,
		Timeout:       config.Timeout,
		CheckRedirect: redirectPolicy(config),
	}

	logger.Debug().
		Dur("timeout", config.Timeout).
		Bool("follow_redirects", config.FollowRedirects).
		Bool("http2_enabled", config.EnableHTTP2).
		Int("max_content_size", config.MaxContentSize).
		Msg("HTTP client created")

	return &HTTPClient{client: client, config: config, logger: logger}, nil
}

func newTransport(config HTTPClientConfig, logger zerolog.Logger) (*http.Transport, error) {
	transport := &http.Transport{
		MaxIdleConns:          config.MaxIdleConns,
		MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
		MaxConnsPerHost:       config.MaxConnsPerHost,
		IdleConnTimeout:       config.IdleConnTimeout,
		TLSHandshakeTimeout:   config.TLSHandshakeTimeout,
		ExpectContinueTimeout: config.ExpectContinueTimeout,
		DialContext: (&net.Dialer{
			Timeout:   config.DialTimeout,
			KeepAlive: config.KeepAlive,
		}).DialContext,
		TLSClientConfig: &tls.Config{InsecureSkipVerify: config.InsecureSkipVerify},
	}

	if config.Proxy != "" {
		proxyURL, err := url.Parse(config.Proxy)
		if err != nil {
			return nil, common.WrapError(err, "failed to parse proxy URL")
		}
		transport.Proxy = http.ProxyURL(proxyURL)
		logger.Info().Str("proxy", SafeURL(config.Proxy)).Msg("HTTP client configured with proxy")
	}

	if config.EnableHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			logger.Warn().Err(err).Msg("Failed to configure HTTP/2, falling back to HTTP/1.1")
		}
	}
	return transport, nil
}

func redirectPolicy(config HTTPClientConfig) func(*http.Request, []*http.Request) error {
	if !config.FollowRedirects {
		return func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	}
	if config.MaxRedirects <= 0 {
		return nil
	}
	return func(_ *http.Request, via []*http.Request) error {
		if len(via) >= config.MaxRedirects {
			return fmt.Errorf("stopped after %d redirects", config.MaxRedirects)
		}
		return nil
	}
}

// Do sends req, retrying when a retry handler is configured. Transport
// failures come back as *common.NetworkError with a redacted URL.
func (c *HTTPClient) Do(req *HTTPRequest) (*HTTPResponse, error) {
	if c.retryHandler == nil {
		return c.do(req)
	}
	return c.retryHandler.DoWithRetry(req.ctx(), c.do, req)
}

func (c *HTTPClient) do(req *HTTPRequest) (*HTTPResponse, error) {
	safe := SafeURL(req.URL)

	httpReq, err := http.NewRequestWithContext(req.ctx(), req.Method, req.URL, req.Body)
	if err != nil {
		return nil, common.NewValidationError("url", safe, "cannot build request")
	}
	c.applyHeaders(httpReq, req.Headers)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, common.NewNetworkError(safe, "request failed", unwrapURLError(err))
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Debug().Err(cerr).Str("url", safe).Msg("Failed to close response body")
		}
	}()

	body, truncated, err := readBody(resp.Body, c.config.MaxContentSize)
	if err != nil {
		return nil, common.NewNetworkError(safe, "failed to read response body", err)
	}

	return &HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
		Truncated:  truncated,
	}, nil
}

func (c *HTTPClient) applyHeaders(httpReq *http.Request, headers map[string]string) {
	for key, value := range c.config.CustomHeaders {
		httpReq.Header.Set(key, value)
	}
	if c.config.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.config.UserAgent)
	}
	for key, value := range headers {
		httpReq.Header.Set(key, value)
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "*/*")
	}
}

// unwrapURLError drops the *url.Error layer, whose message repeats the
// unredacted URL.
func unwrapURLError(err error) error {
	if urlErr, ok := err.(*url.Error); ok {
		return urlErr.Err
	}
	return err
}

// readBody reads up to limit bytes and reports whether more were available.
func readBody(r io.Reader, limit int) ([]byte, bool, error) {
	if limit <= 0 {
		body, err := io.ReadAll(r)
		return body, false, err
	}
	body, err := io.ReadAll(io.LimitReader(r, int64(limit)+1))
	if err != nil {
		return nil, false, err
	}
	if len(body) > limit {
		return body[:limit], true, nil
	}
	return body, false, nil
}

// FetchContentInput holds parameters for FetchContent.
type FetchContentInput struct {
	URL     string
	Context context.Context
	Headers map[string]string
}

// FetchContentResult holds results from FetchContent.
type FetchContentResult struct {
	Content        []byte
	ContentType    string
	HTTPStatusCode int
	Truncated      bool
}

const maxErrorBodyBytes = 512

// FetchContent GETs a script or page. Any status other than 200 fails with
// *common.HTTPError. A truncated body is returned with Truncated set.
func (c *HTTPClient) FetchContent(input FetchContentInput) (*FetchContentResult, error) {
	resp, err := c.Do(&HTTPRequest{
		URL:     input.URL,
		Method:  http.MethodGet,
		Headers: input.Headers,
		Context: input.Context,
	})
	if err != nil {
		return nil, err
	}

	result := &FetchContentResult{
		ContentType:    resp.Headers.Get("Content-Type"),
		HTTPStatusCode: resp.StatusCode,
	}
	if resp.StatusCode != http.StatusOK {
		snippet := resp.Body
		if len(snippet) > maxErrorBodyBytes {
			snippet = snippet[:maxErrorBodyBytes]
		}
		return result, common.NewHTTPErrorWithURL(resp.StatusCode, string(snippet), SafeURL(input.URL))
	}

	if resp.Truncated {
		c.logger.Warn().
			Str("url", SafeURL(input.URL)).
			Int("max_content_size", c.config.MaxContentSize).
			Msg("Content exceeds size limit, truncated")
	}
	result.Content = resp.Body
	result.Truncated = resp.Truncated
	return result, nil
}
