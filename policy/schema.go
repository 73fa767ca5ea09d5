package policy

import (
	"fmt"
	"time"
)

const (
	DefaultPollInterval = 1 * time.Second
	DefaultMaxDuration  = 60 * time.Minute
)

// WatchPolicy bounds a single watch: how often to poll and for how long.
type WatchPolicy struct {
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"` // Delay between polls.
	MaxDuration  time.Duration `json:"max_duration" yaml:"max_duration"`   // Wall-clock budget from watch start.
}

// Default returns the policy used when nothing is configured.
func Default() WatchPolicy {
	return WatchPolicy{
		PollInterval: DefaultPollInterval,
		MaxDuration:  DefaultMaxDuration,
	}
}

// Validate rejects non-positive durations. Unlike defaults, an explicit
// non-positive value is an error rather than something to clamp.
func (p WatchPolicy) Validate() error {
	if p.PollInterval <= 0 {
		return &ConfigError{Field: "poll_interval", Value: p.PollInterval.String(), Reason: "must be positive"}
	}
	if p.MaxDuration <= 0 {
		return &ConfigError{Field: "max_duration", Value: p.MaxDuration.String(), Reason: "must be positive"}
	}
	return nil
}

// ConfigError reports an invalid watch input detected before polling starts.
type ConfigError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("policy: invalid %s %q: %s", e.Field, e.Value, e.Reason)
}
