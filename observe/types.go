package observe

import (
	"context"
	"time"

	"github.com/aponysus/jobwatch/job"
	"github.com/aponysus/jobwatch/policy"
)

// PollRecord describes a single status fetch.
type PollRecord struct {
	Poll      int       // Poll index (0-based).
	StartTime time.Time // Fetch start time.
	EndTime   time.Time // Fetch end time.

	Status   job.Status // Reported job status (zero if the fetch failed).
	Attempts int        // Attempts present in the snapshot.
	NewLines int        // Log lines delivered from this snapshot.

	Err error // Fetch error (if any).
}

// Timeline is the structured record of a single watch and all of its polls.
type Timeline struct {
	JobID   int64  // Remote job id.
	WatchID string // Unique id of this watch invocation.
	Start   time.Time
	End     time.Time

	Polls []PollRecord // Per-poll records in execution order.

	FinalStatus job.Status // Last observed status.
	Attempts    int        // Attempts in the last snapshot.
	FinalErr    error      // Final error returned to the caller.
}

// Observer receives lifecycle callbacks for a single watch.
type Observer interface {
	OnStart(ctx context.Context, jobID int64, pol policy.WatchPolicy)
	OnPoll(ctx context.Context, jobID int64, rec PollRecord)

	// OnNewAttempt fires once per attempt the remote system starts after the first.
	OnNewAttempt(ctx context.Context, jobID int64, attempt int)

	OnSuccess(ctx context.Context, jobID int64, tl Timeline)
	OnFailure(ctx context.Context, jobID int64, tl Timeline)
}
