package logs

import "github.com/aponysus/jobwatch/job"

// Deduplicator tracks, per attempt, how many log lines have already been
// delivered. It belongs to a single watch and is not safe for concurrent use.
type Deduplicator struct {
	emitted map[int]int // attempt index -> lines delivered
}

func NewDeduplicator() *Deduplicator {
	return &Deduplicator{emitted: make(map[int]int)}
}

// Observe delivers the lines appended since the previous snapshot, in
// (attempt, position) order, and returns how many were delivered.
func (d *Deduplicator) Observe(snap job.Snapshot, sink Sink) int {
	if d.emitted == nil {
		d.emitted = make(map[int]int)
	}
	if sink == nil {
		sink = Discard
	}

	n := 0
	for _, a := range snap.Attempts {
		seen, ok := d.emitted[a.Index]
		cur := len(a.LogLines)
		if ok && cur <= seen {
			continue
		}
		for _, line := range a.LogLines[seen:cur] {
			sink.Log(Classify(line), line)
			n++
		}
		d.emitted[a.Index] = cur
	}
	return n
}

// Emitted returns the delivery cursor for attempt.
func (d *Deduplicator) Emitted(attempt int) int {
	return d.emitted[attempt]
}
