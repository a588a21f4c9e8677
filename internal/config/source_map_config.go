package config

// SourceMapConfig controls source attribution through source maps
type SourceMapConfig struct {
	Enabled          bool `json:"enabled" yaml:"enabled"`
	FetchTimeoutSecs int  `json:"fetch_timeout_secs,omitempty" yaml:"fetch_timeout_secs,omitempty" validate:"min=1"`
	CacheTTLMinutes  int  `json:"cache_ttl_minutes,omitempty" yaml:"cache_ttl_minutes,omitempty" validate:"min=0"`
	CacheCapacity    int  `json:"cache_capacity,omitempty" yaml:"cache_capacity,omitempty" validate:"min=0"`
}

// NewDefaultSourceMapConfig creates default source map configuration
func NewDefaultSourceMapConfig() SourceMapConfig {
	return SourceMapConfig{
		Enabled:          true,
		FetchTimeoutSecs: DefaultSourceMapFetchTimeoutSecs,
		CacheTTLMinutes:  DefaultSourceMapCacheTTLMinutes,
		CacheCapacity:    DefaultSourceMapCacheCapacity,
	}
}
