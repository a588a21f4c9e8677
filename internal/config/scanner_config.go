package config

// ScannerConfig controls candidate extraction and filtering
type ScannerConfig struct {
	// EnabledFamilies restricts detection to the named families; empty means all.
	EnabledFamilies []string `json:"enabled_families,omitempty" yaml:"enabled_families,omitempty" validate:"dive,family"`
	// FalsePositiveTerms replaces the built-in term set when non-empty.
	FalsePositiveTerms      []string `json:"false_positive_terms,omitempty" yaml:"false_positive_terms,omitempty" validate:"dive,required"`
	RecordRepeatOccurrences bool     `json:"record_repeat_occurrences" yaml:"record_repeat_occurrences"`
	MaxContentSizeMB        int      `json:"max_content_size_mb,omitempty" yaml:"max_content_size_mb,omitempty" validate:"min=0"`
	MaxPairCandidates       int      `json:"max_pair_candidates,omitempty" yaml:"max_pair_candidates,omitempty" validate:"min=1"`
}

// NewDefaultScannerConfig creates default scanner configuration
func NewDefaultScannerConfig() ScannerConfig {
	return ScannerConfig{
		EnabledFamilies:    []string{},
		FalsePositiveTerms: []string{},
		MaxContentSizeMB:   DefaultScannerMaxContentSizeMB,
		MaxPairCandidates:  DefaultScannerMaxPairCandidates,
	}
}
