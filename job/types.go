package job

import "strings"

// Status is the lifecycle state reported for a remote job.
type Status int

const (
	StatusUnknown Status = iota
	StatusPending
	StatusRunning
	StatusIncomplete
	StatusSucceeded
	StatusFailed
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusRunning:
		return "RUNNING"
	case StatusIncomplete:
		return "INCOMPLETE"
	case StatusSucceeded:
		return "SUCCEEDED"
	case StatusFailed:
		return "FAILED"
	case StatusCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// ParseStatus maps a remote status string onto Status. Matching is
// case-insensitive; unrecognized values yield StatusUnknown.
func ParseStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return StatusPending
	case "running":
		return StatusRunning
	case "incomplete":
		return StatusIncomplete
	case "succeeded":
		return StatusSucceeded
	case "failed":
		return StatusFailed
	case "cancelled", "canceled":
		return StatusCancelled
	default:
		return StatusUnknown
	}
}

// Snapshot is one point-in-time view of a job, as returned by a single poll.
type Snapshot struct {
	JobID    int64
	Status   Status
	Attempts []Attempt // Ordered by Index; only ever grows between polls.
}

// Attempt is one execution try of the remote job.
type Attempt struct {
	Index  int    // 0-based position, stable across polls.
	Status string // Remote attempt status, informational.

	// FailureSummary is empty unless the attempt failed.
	FailureSummary string

	// LogLines is append-only across polls for the same attempt.
	LogLines []string

	// StreamStats is nil until the remote system publishes statistics.
	StreamStats []StreamStat
}

// StreamStat carries per-stream counters. A nil counter was not reported by
// the remote system and must not be treated as zero.
type StreamStat struct {
	StreamName           string
	RecordsCommitted     *int64
	RecordsEmitted       *int64
	BytesEmitted         *int64
	StateMessagesEmitted *int64
}

// Int64 returns a pointer to v, for building optional counters.
func Int64(v int64) *int64 {
	return &v
}
