package config

// ValidatorConfig tunes the per-family validators
type ValidatorConfig struct {
	TimeoutSecs     int `json:"timeout_secs,omitempty" yaml:"timeout_secs,omitempty" validate:"min=1"`
	AWSRetryDelayMs int `json:"aws_retry_delay_ms,omitempty" yaml:"aws_retry_delay_ms,omitempty" validate:"min=0"`
	// Endpoints overrides a family's authority base URL, keyed by family name.
	Endpoints map[string]string `json:"endpoints,omitempty" yaml:"endpoints,omitempty" validate:"dive,keys,family,endkeys,url"`
}

// NewDefaultValidatorConfig creates default validator configuration
func NewDefaultValidatorConfig() ValidatorConfig {
	return ValidatorConfig{
		TimeoutSecs:     DefaultValidatorTimeoutSecs,
		AWSRetryDelayMs: DefaultValidatorAWSRetryDelayMs,
		Endpoints:       map[string]string{},
	}
}
