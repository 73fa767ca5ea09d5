package observe

import (
	"context"
	"sync"
)

// PollInfo identifies the poll a fetch belongs to. The watcher attaches it to
// the context passed to the job status client.
type PollInfo struct {
	JobID   int64
	WatchID string
	Poll    int
}

type pollInfoKey struct{}

func WithPollInfo(ctx context.Context, info PollInfo) context.Context {
	return context.WithValue(ctx, pollInfoKey{}, info)
}

func PollFromContext(ctx context.Context) (PollInfo, bool) {
	if ctx == nil {
		return PollInfo{}, false
	}
	info, ok := ctx.Value(pollInfoKey{}).(PollInfo)
	return info, ok
}

// TimelineCapture holds the timeline of a completed watch.
type TimelineCapture struct {
	mu sync.Mutex
	tl *Timeline
}

// Timeline returns the captured timeline, or nil if the watch has not finished.
func (c *TimelineCapture) Timeline() *Timeline {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tl
}

type captureKey struct{}

// RecordTimeline returns a context that makes the watcher store its timeline
// in the returned capture.
func RecordTimeline(ctx context.Context) (context.Context, *TimelineCapture) {
	c := &TimelineCapture{}
	return context.WithValue(ctx, captureKey{}, c), c
}

// WithoutTimelineCapture hides any capture installed by a parent context.
func WithoutTimelineCapture(ctx context.Context) context.Context {
	return context.WithValue(ctx, captureKey{}, (*TimelineCapture)(nil))
}

func TimelineCaptureFromContext(ctx context.Context) (*TimelineCapture, bool) {
	if ctx == nil {
		return nil, false
	}
	c, ok := ctx.Value(captureKey{}).(*TimelineCapture)
	if !ok || c == nil {
		return nil, false
	}
	return c, true
}

// StoreTimelineCapture stores a copy of tl in c.
func StoreTimelineCapture(c *TimelineCapture, tl *Timeline) {
	if c == nil || tl == nil {
		return
	}
	cp := *tl
	cp.Polls = append([]PollRecord(nil), tl.Polls...)
	c.mu.Lock()
	c.tl = &cp
	c.mu.Unlock()
}
