// Package watch polls a remote job until it finishes, delivering its logs,
// noticing new attempts, and recording its statistics on success.
package watch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aponysus/jobwatch/job"
	"github.com/aponysus/jobwatch/logs"
	"github.com/aponysus/jobwatch/metrics"
	"github.com/aponysus/jobwatch/observe"
	"github.com/aponysus/jobwatch/policy"
)

// Client fetches the current state of a job. Errors are returned to the
// caller of Watch unchanged; the watcher never retries a fetch.
type Client interface {
	FetchJob(ctx context.Context, jobID int64) (job.Snapshot, error)
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, jobID int64) (job.Snapshot, error)

func (f ClientFunc) FetchJob(ctx context.Context, jobID int64) (job.Snapshot, error) {
	return f(ctx, jobID)
}

// Result describes a job that finished successfully.
type Result struct {
	JobID       int64
	WatchID     string
	FinalStatus string // Upper-case status name, e.g. "SUCCEEDED".
	Attempts    int
	Polls       int
	Snapshot    job.Snapshot // The terminal snapshot.
}

// Watcher runs watches. It holds no per-watch state and is safe for
// concurrent use; every Watch call tracks its own log cursors and attempts.
type Watcher struct {
	client    Client
	logs      logs.Sink
	metrics   metrics.Sink
	observers []observe.Observer
	observer  observe.Observer
	logger    zerolog.Logger

	clock func() time.Time
	sleep func(context.Context, time.Duration) error
	newID func() string
}

func NewWatcher(client Client, opts ...Option) *Watcher {
	w := &Watcher{
		client: client,
		logs:   logs.Discard,
		logger: zerolog.Nop(),
		clock:  time.Now,
		sleep:  defaultSleep,
		newID:  newWatchID,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	w.observer = observe.Multi(w.observers...)
	return w
}

// watchState is owned by a single Watch call.
type watchState struct {
	jobID    int64
	pol      policy.WatchPolicy
	deadline time.Time
	dedup    *logs.Deduplicator
	attempts *attemptTracker
	tl       observe.Timeline
	last     job.Snapshot
}

// Watch polls jobID until it reaches a terminal status or pol.MaxDuration
// elapses. The first fetch is issued immediately; later ones follow
// pol.PollInterval apart.
//
// Errors:
//   - *policy.ConfigError: invalid policy or job id, no fetch issued.
//   - *TimeoutError: deadline reached without a terminal status.
//   - *JobFailedError: the job finished FAILED or CANCELLED.
//   - ctx.Err(): ctx was cancelled.
//   - any error from the Client, unchanged.
func (w *Watcher) Watch(ctx context.Context, jobID string, pol policy.WatchPolicy) (Result, error) {
	if err := pol.Validate(); err != nil {
		return Result{}, err
	}
	id, err := policy.ParseJobID(jobID)
	if err != nil {
		return Result{}, err
	}
	if w.client == nil {
		return Result{}, ErrNilClient
	}

	start := w.clock()
	st := &watchState{
		jobID:    id,
		pol:      pol,
		deadline: start.Add(pol.MaxDuration),
		dedup:    logs.NewDeduplicator(),
		attempts: newAttemptTracker(),
		tl: observe.Timeline{
			JobID:   id,
			WatchID: w.newID(),
			Start:   start,
		},
	}
	logger := w.logger.With().Int64("job_id", id).Str("watch_id", st.tl.WatchID).Logger()

	w.observer.OnStart(ctx, id, pol)
	logger.Debug().
		Dur("poll_interval", pol.PollInterval).
		Dur("max_duration", pol.MaxDuration).
		Msg("watch started")

	snap, err := w.pollUntilTerminal(ctx, st, logger)
	if err != nil {
		return Result{}, w.finish(ctx, st, err)
	}

	for _, reason := range job.FailureSummaries(snap) {
		w.logs.Log(logs.SeverityWarn, "failure with reason: "+reason)
	}

	if !job.IsSuccess(snap.Status) {
		return Result{}, w.finish(ctx, st, &JobFailedError{
			JobID:          id,
			Status:         snap.Status,
			AttemptCount:   len(snap.Attempts),
			FailureDetails: job.FailureSummaries(snap),
		})
	}

	metrics.Emit(ctx, w.metrics, metrics.Extract(snap))

	res := Result{
		JobID:       id,
		WatchID:     st.tl.WatchID,
		FinalStatus: snap.Status.String(),
		Attempts:    len(snap.Attempts),
		Polls:       len(st.tl.Polls),
		Snapshot:    snap,
	}
	w.finish(ctx, st, nil)
	logger.Debug().Str("status", res.FinalStatus).Int("polls", res.Polls).Msg("watch finished")
	return res, nil
}

func (w *Watcher) pollUntilTerminal(ctx context.Context, st *watchState, logger zerolog.Logger) (job.Snapshot, error) {
	for poll := 0; ; poll++ {
		if poll > 0 {
			remaining := st.deadline.Sub(w.clock())
			if remaining <= 0 {
				return job.Snapshot{}, w.timeout(st, nil)
			}
			if err := w.sleep(ctx, min(st.pol.PollInterval, remaining)); err != nil {
				return job.Snapshot{}, err
			}
		}

		// Checked again after sleeping: no fetch may start past the deadline.
		remaining := st.deadline.Sub(w.clock())
		if remaining <= 0 {
			return job.Snapshot{}, w.timeout(st, nil)
		}

		snap, err := w.fetch(ctx, st, poll, remaining)
		if err != nil {
			return job.Snapshot{}, err
		}
		logger.Trace().Int("poll", poll).Str("status", snap.Status.String()).Int("attempts", len(snap.Attempts)).Msg("polled job")

		if job.IsTerminal(snap.Status) {
			return snap, nil
		}
	}
}

// fetch issues one status request bounded by the remaining time, then feeds
// the snapshot through the log deduplicator and the attempt tracker.
func (w *Watcher) fetch(ctx context.Context, st *watchState, poll int, remaining time.Duration) (job.Snapshot, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, remaining)
	defer cancel()
	fetchCtx = observe.WithPollInfo(fetchCtx, observe.PollInfo{JobID: st.jobID, WatchID: st.tl.WatchID, Poll: poll})

	rec := observe.PollRecord{Poll: poll, StartTime: w.clock()}
	snap, err := w.client.FetchJob(fetchCtx, st.jobID)
	rec.EndTime = w.clock()

	if err != nil {
		rec.Err = err
		w.recordPoll(ctx, st, rec)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return job.Snapshot{}, ctxErr
		}
		if errors.Is(err, context.DeadlineExceeded) && errors.Is(fetchCtx.Err(), context.DeadlineExceeded) {
			return job.Snapshot{}, w.timeout(st, err)
		}
		return job.Snapshot{}, err
	}

	rec.Status = snap.Status
	rec.Attempts = len(snap.Attempts)
	rec.NewLines = st.dedup.Observe(snap, w.logs)
	for _, idx := range st.attempts.observe(snap) {
		w.logs.Log(logs.SeverityWarn, fmt.Sprintf("previous attempt failed, remote system started attempt %d", idx+1))
		w.observer.OnNewAttempt(ctx, st.jobID, idx)
	}
	st.last = snap
	w.recordPoll(ctx, st, rec)
	return snap, nil
}

func (w *Watcher) recordPoll(ctx context.Context, st *watchState, rec observe.PollRecord) {
	st.tl.Polls = append(st.tl.Polls, rec)
	w.observer.OnPoll(ctx, st.jobID, rec)
}

func (w *Watcher) timeout(st *watchState, cause error) error {
	return &TimeoutError{
		JobID:       st.jobID,
		MaxDuration: st.pol.MaxDuration,
		Polls:       len(st.tl.Polls),
		LastStatus:  st.last.Status,
		Cause:       cause,
	}
}

// finish completes the timeline, hands it to observers and any capture in
// ctx, and returns err unchanged.
func (w *Watcher) finish(ctx context.Context, st *watchState, err error) error {
	st.tl.End = w.clock()
	st.tl.FinalStatus = st.last.Status
	st.tl.Attempts = len(st.last.Attempts)
	st.tl.FinalErr = err

	if capture, ok := observe.TimelineCaptureFromContext(ctx); ok {
		observe.StoreTimelineCapture(capture, &st.tl)
	}
	if err != nil {
		w.observer.OnFailure(ctx, st.jobID, st.tl)
	} else {
		w.observer.OnSuccess(ctx, st.jobID, st.tl)
	}
	return err
}
