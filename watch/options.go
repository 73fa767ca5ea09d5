package watch

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aponysus/jobwatch/internal"
	"github.com/aponysus/jobwatch/logs"
	"github.com/aponysus/jobwatch/metrics"
	"github.com/aponysus/jobwatch/observe"
)

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogSink sets where job log lines and watcher notices are delivered.
func WithLogSink(s logs.Sink) Option {
	return func(w *Watcher) {
		if !internal.IsTypedNil(s) {
			w.logs = s
		}
	}
}

// WithMetricsSink sets where counter samples of successful jobs are recorded.
func WithMetricsSink(s metrics.Sink) Option {
	return func(w *Watcher) {
		if !internal.IsTypedNil(s) {
			w.metrics = s
		}
	}
}

// WithObserver adds a lifecycle observer. It may be given more than once.
func WithObserver(o observe.Observer) Option {
	return func(w *Watcher) {
		w.observers = append(w.observers, o)
	}
}

// WithLogger sets the logger for the watcher's own diagnostics (poll-level
// debug output). Job log lines go to the log sink instead.
func WithLogger(l zerolog.Logger) Option {
	return func(w *Watcher) {
		w.logger = l
	}
}

func defaultSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func newWatchID() string {
	return uuid.NewString()
}
