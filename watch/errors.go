package watch

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aponysus/jobwatch/job"
)

// ErrNilClient is returned by Watch when the Watcher has no job status client.
var ErrNilClient = errors.New("watch: nil job status client")

// TimeoutError is returned when no terminal status was observed before the
// watch's MaxDuration elapsed. It is distinct from a job-reported failure.
type TimeoutError struct {
	JobID       int64
	MaxDuration time.Duration
	Polls       int        // Fetches issued before giving up.
	LastStatus  job.Status // Last status observed, StatusUnknown if none.

	// Cause is set when an in-flight fetch was cut off by the deadline.
	Cause error
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("watch: job %d not finished after %s (%d polls, last status %s)", e.JobID, e.MaxDuration, e.Polls, e.LastStatus)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *TimeoutError) Unwrap() error { return e.Cause }

// JobFailedError is returned when the job reached a terminal status other
// than SUCCEEDED.
type JobFailedError struct {
	JobID        int64
	Status       job.Status
	AttemptCount int

	// FailureDetails holds every attempt's failure summary in attempt order.
	FailureDetails []string
}

func (e *JobFailedError) Error() string {
	msg := fmt.Sprintf("watch: job %d failed with status '%s' after %d attempt(s)", e.JobID, e.Status, e.AttemptCount)
	if len(e.FailureDetails) > 0 {
		msg += ": " + strings.Join(e.FailureDetails, "; ")
	}
	return msg
}
