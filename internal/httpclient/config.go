package httpclient

import (
	"time"

	"github.com/aleister1102/leakwatch/internal/config"
)

// HTTPClientConfig holds configuration for HTTP clients
type HTTPClientConfig struct {
	Timeout               time.Duration     // Request timeout
	InsecureSkipVerify    bool              // Skip TLS verification
	FollowRedirects       bool              // Whether to follow redirects
	MaxRedirects          int               // Maximum number of redirects to follow
	Proxy                 string            // Proxy URL
	CustomHeaders         map[string]string // Headers added to every request
	UserAgent             string            // User-Agent header
	MaxContentSize        int               // Response body limit in bytes, 0 for none
	MaxIdleConns          int
	MaxIdleConnsPerHost   int
	MaxConnsPerHost       int
	IdleConnTimeout       time.Duration
	TLSHandshakeTimeout   time.Duration
	ExpectContinueTimeout time.Duration
	DialTimeout           time.Duration
	KeepAlive             time.Duration
	EnableHTTP2           bool
}

// DefaultHTTPClientConfig returns the default HTTP client configuration
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:               30 * time.Second,
		FollowRedirects:       true,
		MaxRedirects:          10,
		UserAgent:             config.DefaultHTTPUserAgent,
		MaxContentSize:        config.DefaultHTTPMaxContentSizeMB * 1024 * 1024,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		DialTimeout:           10 * time.Second,
		KeepAlive:             30 * time.Second,
		EnableHTTP2:           true,
		CustomHeaders: map[string]string{
			"Accept-Language": "en-US,en;q=0.9",
		},
	}
}

// FromConfig maps the application http_client_config section onto a client config
func FromConfig(cfg config.HTTPClientConfig) HTTPClientConfig {
	c := DefaultHTTPClientConfig()
	if cfg.TimeoutSecs > 0 {
		c.Timeout = time.Duration(cfg.TimeoutSecs) * time.Second
	}
	c.InsecureSkipVerify = cfg.InsecureSkipVerify
	c.Proxy = cfg.Proxy
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}
	c.MaxContentSize = cfg.MaxContentSizeMB * 1024 * 1024
	c.MaxRedirects = cfg.MaxRedirects
	c.EnableHTTP2 = cfg.EnableHTTP2
	return c
}

// RetryFromConfig maps the retry subsection onto a RetryHandlerConfig
func RetryFromConfig(cfg config.RetryConfig) RetryHandlerConfig {
	return RetryHandlerConfig{
		MaxRetries:       cfg.MaxRetries,
		BaseDelay:        time.Duration(cfg.BaseDelayMs) * time.Millisecond,
		MaxDelay:         time.Duration(cfg.MaxDelayMs) * time.Millisecond,
		EnableJitter:     cfg.EnableJitter,
		RetryStatusCodes: cfg.RetryStatusCodes,
	}
}
