package policy

import (
	"time"
)

// Option configures a WatchPolicy.
type Option func(*WatchPolicy)

// New creates a WatchPolicy from the defaults with opts applied in order.
// The result is not validated; Watch rejects invalid policies.
func New(opts ...Option) WatchPolicy {
	p := Default()
	for _, opt := range opts {
		if opt != nil {
			opt(&p)
		}
	}
	return p
}

// PollInterval sets the delay between status polls.
func PollInterval(d time.Duration) Option {
	return func(p *WatchPolicy) {
		p.PollInterval = d
	}
}

// MaxDuration sets the overall wall-clock budget.
func MaxDuration(d time.Duration) Option {
	return func(p *WatchPolicy) {
		p.MaxDuration = d
	}
}

// --- Presets ---

// LongSyncDefaults suits large syncs that run for hours: slower polling and
// a day-long budget.
func LongSyncDefaults() Option {
	return func(p *WatchPolicy) {
		p.PollInterval = 30 * time.Second
		p.MaxDuration = 24 * time.Hour
	}
}

// QuickCheckDefaults suits short connection checks.
func QuickCheckDefaults() Option {
	return func(p *WatchPolicy) {
		p.PollInterval = 250 * time.Millisecond
		p.MaxDuration = 2 * time.Minute
	}
}
