// Package otelwatch records finished watches as OpenTelemetry spans.
package otelwatch

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aponysus/jobwatch/observe"
)

const spanName = "jobwatch.watch"

// Observer emits one span per watch, built from its timeline once the watch
// returns. Each poll becomes a "poll" event on the span.
type Observer struct {
	observe.BaseObserver
	tracer trace.Tracer
}

func NewObserver(tracer trace.Tracer) *Observer {
	return &Observer{tracer: tracer}
}

func (o *Observer) OnSuccess(ctx context.Context, jobID int64, tl observe.Timeline) {
	o.record(ctx, tl, nil)
}

func (o *Observer) OnFailure(ctx context.Context, jobID int64, tl observe.Timeline) {
	o.record(ctx, tl, tl.FinalErr)
}

func (o *Observer) record(ctx context.Context, tl observe.Timeline, err error) {
	if o == nil || o.tracer == nil {
		return
	}

	startOpts := []trace.SpanStartOption{trace.WithSpanKind(trace.SpanKindClient)}
	if !tl.Start.IsZero() {
		startOpts = append(startOpts, trace.WithTimestamp(tl.Start))
	}
	_, span := o.tracer.Start(ctx, spanName, startOpts...)
	span.SetAttributes(
		attribute.Int64("jobwatch.job_id", tl.JobID),
		attribute.String("jobwatch.watch_id", tl.WatchID),
		attribute.Int("jobwatch.attempts", tl.Attempts),
		attribute.Int("jobwatch.polls", len(tl.Polls)),
		attribute.String("jobwatch.final_status", tl.FinalStatus.String()),
	)

	for _, poll := range tl.Polls {
		attrs := []attribute.KeyValue{
			attribute.Int("jobwatch.poll", poll.Poll),
			attribute.Int("jobwatch.new_lines", poll.NewLines),
		}
		if poll.Err != nil {
			attrs = append(attrs, attribute.String("jobwatch.error", poll.Err.Error()))
		} else {
			attrs = append(attrs,
				attribute.String("jobwatch.status", poll.Status.String()),
				attribute.Int("jobwatch.attempts", poll.Attempts),
			)
		}
		eventOpts := []trace.EventOption{trace.WithAttributes(attrs...)}
		if !poll.EndTime.IsZero() {
			eventOpts = append(eventOpts, trace.WithTimestamp(poll.EndTime))
		}
		span.AddEvent("poll", eventOpts...)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "success")
	}

	if !tl.End.IsZero() {
		span.End(trace.WithTimestamp(tl.End))
		return
	}
	span.End()
}
