package config

// FetcherConfig bounds content acquisition for a page
type FetcherConfig struct {
	MaxScripts    int  `json:"max_scripts,omitempty" yaml:"max_scripts,omitempty" validate:"min=1"`
	FollowChunks  bool `json:"follow_chunks" yaml:"follow_chunks"`
	MaxChunkDepth int  `json:"max_chunk_depth,omitempty" yaml:"max_chunk_depth,omitempty" validate:"min=0,max=5"`
	IncludeInline bool `json:"include_inline" yaml:"include_inline"`
}

// NewDefaultFetcherConfig creates default fetcher configuration
func NewDefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		MaxScripts:    DefaultFetcherMaxScripts,
		FollowChunks:  true,
		MaxChunkDepth: DefaultFetcherMaxChunkDepth,
		IncludeInline: true,
	}
}
