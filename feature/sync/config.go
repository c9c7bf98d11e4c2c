package sync

import "time"

// Config controls when synchronization passes run.
type Config struct {
	// Enabled turns the sync feature (API and scheduler) on.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// IntervalSeconds is the period of the background scheduler. Zero disables the timer.
	IntervalSeconds int `mapstructure:"interval_seconds" default:"300"`
	// OnStartup runs one pass as soon as the scheduler starts.
	OnStartup bool `mapstructure:"on_startup" default:"true"`
	// OnWrite triggers a background pass after every successful local write.
	OnWrite bool `mapstructure:"on_write" default:"true"`
	// RetryMinSeconds is the first backoff delay after a failed pass.
	RetryMinSeconds int `mapstructure:"retry_min_seconds" default:"5"`
	// RetryMaxSeconds caps the backoff delay.
	RetryMaxSeconds int `mapstructure:"retry_max_seconds" default:"300"`
	// MaxAttempts bounds whole-pass retries for one trigger (1 = no retry).
	MaxAttempts int `mapstructure:"max_attempts" default:"3"`
}

// Interval returns the scheduler period.
func (c Config) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// RetryMin returns the first backoff delay.
func (c Config) RetryMin() time.Duration {
	return time.Duration(c.RetryMinSeconds) * time.Second
}

// RetryMax returns the backoff ceiling.
func (c Config) RetryMax() time.Duration {
	return time.Duration(c.RetryMaxSeconds) * time.Second
}
