package promwatch

import (
	"context"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aponysus/jobwatch/observe"
)

// Observer counts polls, new attempts, and finished watches.
type Observer struct {
	observe.BaseObserver

	polls         *prometheus.CounterVec
	newAttempts   prometheus.Counter
	watches       *prometheus.CounterVec
	watchDuration *prometheus.HistogramVec
}

func NewObserver(reg prometheus.Registerer) *Observer {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	obs := &Observer{
		polls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobwatch_polls_total",
				Help: "Status fetches by reported job status.",
			},
			[]string{"status"},
		),
		newAttempts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "jobwatch_new_attempts_total",
				Help: "Attempts started by the remote system after the first.",
			},
		),
		watches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobwatch_watches_total",
				Help: "Finished watches by result.",
			},
			[]string{"result"},
		),
		watchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jobwatch_watch_duration_seconds",
				Help:    "Wall time of a watch from first fetch to result.",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"result"},
		),
	}

	reg.MustRegister(obs.polls, obs.newAttempts, obs.watches, obs.watchDuration)
	return obs
}

func (o *Observer) OnPoll(ctx context.Context, jobID int64, rec observe.PollRecord) {
	status := "error"
	if rec.Err == nil {
		status = strings.ToLower(rec.Status.String())
	}
	o.polls.WithLabelValues(status).Inc()
}

func (o *Observer) OnNewAttempt(ctx context.Context, jobID int64, attempt int) {
	o.newAttempts.Inc()
}

func (o *Observer) OnSuccess(ctx context.Context, jobID int64, tl observe.Timeline) {
	o.observeWatch(tl, "success")
}

func (o *Observer) OnFailure(ctx context.Context, jobID int64, tl observe.Timeline) {
	o.observeWatch(tl, "failure")
}

func (o *Observer) observeWatch(tl observe.Timeline, result string) {
	o.watches.WithLabelValues(result).Inc()
	if !tl.Start.IsZero() && !tl.End.IsZero() {
		o.watchDuration.WithLabelValues(result).Observe(tl.End.Sub(tl.Start).Seconds())
	}
}
