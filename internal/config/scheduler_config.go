package config

// SchedulerConfig defines the cadence of automated mode
type SchedulerConfig struct {
	IntervalMinutes int `json:"interval_minutes,omitempty" yaml:"interval_minutes,omitempty" validate:"min=1"`
	// RetryAttempts is how many times a failed cycle is retried before waiting for the next one.
	RetryAttempts int `json:"retry_attempts,omitempty" yaml:"retry_attempts,omitempty" validate:"min=0,max=10"`
	// RevalidateEachCycle re-checks every stored finding after the scan of each cycle.
	RevalidateEachCycle bool `json:"revalidate_each_cycle" yaml:"revalidate_each_cycle"`
}

// NewDefaultSchedulerConfig creates default scheduler configuration
func NewDefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		IntervalMinutes:     DefaultSchedulerIntervalMinutes,
		RetryAttempts:       DefaultSchedulerRetryAttempts,
		RevalidateEachCycle: true,
	}
}
