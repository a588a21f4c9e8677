package config

// HTTPClientConfig configures the outbound client shared by the fetcher,
// the source map resolver and the validators.
type HTTPClientConfig struct {
	TimeoutSecs        int         `json:"timeout_secs,omitempty" yaml:"timeout_secs,omitempty" validate:"min=1"`
	InsecureSkipVerify bool        `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
	Proxy              string      `json:"proxy,omitempty" yaml:"proxy,omitempty" validate:"omitempty,url"`
	UserAgent          string      `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	MaxContentSizeMB   int         `json:"max_content_size_mb,omitempty" yaml:"max_content_size_mb,omitempty" validate:"min=0"`
	MaxRedirects       int         `json:"max_redirects,omitempty" yaml:"max_redirects,omitempty" validate:"min=0"`
	EnableHTTP2        bool        `json:"enable_http2" yaml:"enable_http2"`
	Retry              RetryConfig `json:"retry,omitempty" yaml:"retry,omitempty"`
}

// RetryConfig defines retries for content fetches. Validators never use it.
type RetryConfig struct {
	MaxRetries       int   `json:"max_retries,omitempty" yaml:"max_retries,omitempty" validate:"min=0,max=10"`
	BaseDelayMs      int   `json:"base_delay_ms,omitempty" yaml:"base_delay_ms,omitempty" validate:"min=0"`
	MaxDelayMs       int   `json:"max_delay_ms,omitempty" yaml:"max_delay_ms,omitempty" validate:"min=0"`
	EnableJitter     bool  `json:"enable_jitter" yaml:"enable_jitter"`
	RetryStatusCodes []int `json:"retry_status_codes,omitempty" yaml:"retry_status_codes,omitempty" validate:"dive,min=400,max=599"`
}

// NewDefaultHTTPClientConfig creates default HTTP client configuration
func NewDefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		TimeoutSecs:      DefaultHTTPTimeoutSecs,
		UserAgent:        DefaultHTTPUserAgent,
		MaxContentSizeMB: DefaultHTTPMaxContentSizeMB,
		MaxRedirects:     DefaultHTTPMaxRedirects,
		EnableHTTP2:      true,
		Retry: RetryConfig{
			MaxRetries:       DefaultHTTPRetryMaxRetries,
			BaseDelayMs:      DefaultHTTPRetryBaseDelayMs,
			MaxDelayMs:       DefaultHTTPRetryMaxDelayMs,
			EnableJitter:     true,
			RetryStatusCodes: []int{429, 502, 503, 504},
		},
	}
}
