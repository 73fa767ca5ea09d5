package observe

import (
	"context"

	"github.com/aponysus/jobwatch/internal"
	"github.com/aponysus/jobwatch/policy"
)

// BaseObserver implements Observer with no-ops. Embed it to override a subset.
type BaseObserver struct{}

func (BaseObserver) OnStart(context.Context, int64, policy.WatchPolicy) {}
func (BaseObserver) OnPoll(context.Context, int64, PollRecord)          {}
func (BaseObserver) OnNewAttempt(context.Context, int64, int)           {}
func (BaseObserver) OnSuccess(context.Context, int64, Timeline)         {}
func (BaseObserver) OnFailure(context.Context, int64, Timeline)         {}

// NoopObserver discards every callback.
type NoopObserver struct{ BaseObserver }

// MultiObserver fans callbacks out to every non-nil observer, in order.
type MultiObserver struct {
	Observers []Observer
}

// Multi combines observers, dropping nil and typed-nil entries. It returns
// NoopObserver when nothing remains and the observer itself when only one does.
func Multi(obs ...Observer) Observer {
	var kept []Observer
	for _, o := range obs {
		if internal.IsTypedNil(o) {
			continue
		}
		kept = append(kept, o)
	}
	switch len(kept) {
	case 0:
		return NoopObserver{}
	case 1:
		return kept[0]
	default:
		return MultiObserver{Observers: kept}
	}
}

func (m MultiObserver) each(fn func(Observer)) {
	for _, o := range m.Observers {
		if internal.IsTypedNil(o) {
			continue
		}
		fn(o)
	}
}

func (m MultiObserver) OnStart(ctx context.Context, jobID int64, pol policy.WatchPolicy) {
	m.each(func(o Observer) { o.OnStart(ctx, jobID, pol) })
}

func (m MultiObserver) OnPoll(ctx context.Context, jobID int64, rec PollRecord) {
	m.each(func(o Observer) { o.OnPoll(ctx, jobID, rec) })
}

func (m MultiObserver) OnNewAttempt(ctx context.Context, jobID int64, attempt int) {
	m.each(func(o Observer) { o.OnNewAttempt(ctx, jobID, attempt) })
}

func (m MultiObserver) OnSuccess(ctx context.Context, jobID int64, tl Timeline) {
	m.each(func(o Observer) { o.OnSuccess(ctx, jobID, tl) })
}

func (m MultiObserver) OnFailure(ctx context.Context, jobID int64, tl Timeline) {
	m.each(func(o Observer) { o.OnFailure(ctx, jobID, tl) })
}
