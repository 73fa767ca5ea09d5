// Package jobwatch is the facade package: it watches a remote job with
// default zerolog-backed sinks so callers need only a client and a job id.
//
// To capture the poll timeline for debugging or observability:
//
//	ctx, capture := observe.RecordTimeline(ctx)
//	res, err := jobwatch.Watch(ctx, client, "970")
//	tl := capture.Timeline() // Safe to access after Watch returns
package jobwatch

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/aponysus/jobwatch/logs"
	"github.com/aponysus/jobwatch/metrics"
	"github.com/aponysus/jobwatch/policy"
	"github.com/aponysus/jobwatch/watch"
)

// NewWatcher returns a Watcher that writes job log lines, counters, and its
// own diagnostics to logger. Later opts override the defaults.
func NewWatcher(client watch.Client, logger zerolog.Logger, opts ...watch.Option) *watch.Watcher {
	defaults := []watch.Option{
		watch.WithLogSink(logs.NewZerologSink(logger)),
		watch.WithMetricsSink(metrics.NewZerologSink(logger)),
		watch.WithLogger(logger),
	}
	return watch.NewWatcher(client, append(defaults, opts...)...)
}

// Watch polls jobID through client until it finishes, using the global
// zerolog logger and the default policy adjusted by opts.
func Watch(ctx context.Context, client watch.Client, jobID string, opts ...policy.Option) (watch.Result, error) {
	return NewWatcher(client, log.Logger).Watch(ctx, jobID, policy.New(opts...))
}
