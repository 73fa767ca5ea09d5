// Package metrics turns terminal job statistics into counter samples.
package metrics

import (
	"context"
	"sync"

	"github.com/aponysus/jobwatch/job"
)

// Counter names.
const (
	AttemptsCount    = "attempts.count"
	RecordsCommitted = "records.committed"
	RecordsEmitted   = "records.emitted"
	BytesEmitted     = "bytes.emitted"
	StateEmitted     = "state.emitted"
)

// Sample is one named counter value. Stream is empty for job-level counters.
type Sample struct {
	Name   string
	Value  int64
	Stream string
}

// Sink receives counter samples.
type Sink interface {
	Record(ctx context.Context, s Sample)
}

// Extract returns the samples for a terminal snapshot: the attempt count,
// then every reported per-stream counter of every attempt. Values for the
// same stream across attempts are kept as separate samples.
func Extract(snap job.Snapshot) []Sample {
	out := []Sample{{Name: AttemptsCount, Value: int64(len(snap.Attempts))}}
	for _, a := range snap.Attempts {
		for _, st := range a.StreamStats {
			out = appendIf(out, RecordsCommitted, st.RecordsCommitted, st.StreamName)
			out = appendIf(out, RecordsEmitted, st.RecordsEmitted, st.StreamName)
			out = appendIf(out, BytesEmitted, st.BytesEmitted, st.StreamName)
			out = appendIf(out, StateEmitted, st.StateMessagesEmitted, st.StreamName)
		}
	}
	return out
}

func appendIf(out []Sample, name string, v *int64, stream string) []Sample {
	if v == nil {
		return out
	}
	return append(out, Sample{Name: name, Value: *v, Stream: stream})
}

// Emit records every sample in order.
func Emit(ctx context.Context, sink Sink, samples []Sample) {
	if sink == nil {
		return
	}
	for _, s := range samples {
		sink.Record(ctx, s)
	}
}

// Recorder is an in-memory Sink. It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	samples []Sample
}

func (r *Recorder) Record(_ context.Context, s Sample) {
	r.mu.Lock()
	r.samples = append(r.samples, s)
	r.mu.Unlock()
}

// Samples returns a copy of the recorded samples.
func (r *Recorder) Samples() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sample, len(r.samples))
	copy(out, r.samples)
	return out
}

// Total sums the recorded values for name and stream.
func (r *Recorder) Total(name, stream string) int64 {
	var total int64
	for _, s := range r.Samples() {
		if s.Name == name && s.Stream == stream {
			total += s.Value
		}
	}
	return total
}
