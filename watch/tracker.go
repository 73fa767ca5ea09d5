package watch

import "github.com/aponysus/jobwatch/job"

// attemptTracker notices attempts the remote system starts after a failed one.
// The count is seeded at 1 because the first attempt is created together with
// the job and is not a retry.
type attemptTracker struct {
	count int
}

func newAttemptTracker() *attemptTracker {
	return &attemptTracker{count: 1}
}

// observe returns the indexes of attempts not seen before and reconciles the
// tracked count to the snapshot, however many attempts appeared since the
// previous poll.
func (t *attemptTracker) observe(snap job.Snapshot) []int {
	n := len(snap.Attempts)
	if n <= t.count {
		return nil
	}
	fresh := make([]int, 0, n-t.count)
	for _, a := range snap.Attempts[t.count:] {
		fresh = append(fresh, a.Index)
	}
	t.count = n
	return fresh
}
