// Package promwatch exports watch statistics and lifecycle events as
// Prometheus metrics.
package promwatch

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aponysus/jobwatch/metrics"
)

// Sink records job counter samples as Prometheus counters.
type Sink struct {
	attempts  prometheus.Counter
	perStream map[string]*prometheus.CounterVec
}

func NewSink(reg prometheus.Registerer) *Sink {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	s := &Sink{
		attempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobwatch_attempts_total",
			Help: "Attempts used by jobs that finished successfully.",
		}),
		perStream: map[string]*prometheus.CounterVec{
			metrics.RecordsCommitted: streamCounter("jobwatch_records_committed_total", "Records committed per stream."),
			metrics.RecordsEmitted:   streamCounter("jobwatch_records_emitted_total", "Records emitted per stream."),
			metrics.BytesEmitted:     streamCounter("jobwatch_bytes_emitted_total", "Bytes emitted per stream."),
			metrics.StateEmitted:     streamCounter("jobwatch_state_messages_emitted_total", "State messages emitted per stream."),
		},
	}

	reg.MustRegister(
		s.attempts,
		s.perStream[metrics.RecordsCommitted],
		s.perStream[metrics.RecordsEmitted],
		s.perStream[metrics.BytesEmitted],
		s.perStream[metrics.StateEmitted],
	)
	return s
}

func streamCounter(name, help string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, []string{"stream"})
}

// Record adds s to its counter. Negative values and unknown names are dropped;
// Prometheus counters cannot decrease.
func (s *Sink) Record(ctx context.Context, sample metrics.Sample) {
	if s == nil || sample.Value < 0 {
		return
	}
	if sample.Name == metrics.AttemptsCount {
		s.attempts.Add(float64(sample.Value))
		return
	}
	if vec, ok := s.perStream[sample.Name]; ok {
		vec.WithLabelValues(sample.Stream).Add(float64(sample.Value))
	}
}
