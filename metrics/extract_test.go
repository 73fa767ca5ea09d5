package metrics

import (
	"bytes"
	"context"
	"encoding/json"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/aponysus/jobwatch/job"
)

func TestExtract_SkipsAbsentCounters(t *testing.T) {
	snap := job.Snapshot{
		Status: job.StatusSucceeded,
		Attempts: []job.Attempt{{
			Index: 0,
			StreamStats: []job.StreamStat{
				{StreamName: "users", RecordsEmitted: job.Int64(10)},
				{StreamName: "orders", RecordsCommitted: job.Int64(0), BytesEmitted: job.Int64(2048), StateMessagesEmitted: job.Int64(3)},
			},
		}},
	}

	want := []Sample{
		{Name: AttemptsCount, Value: 1},
		{Name: RecordsEmitted, Value: 10, Stream: "users"},
		{Name: RecordsCommitted, Value: 0, Stream: "orders"},
		{Name: BytesEmitted, Value: 2048, Stream: "orders"},
		{Name: StateEmitted, Value: 3, Stream: "orders"},
	}
	if got := Extract(snap); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestExtract_NoStatsOnlyAttemptCount(t *testing.T) {
	snap := job.Snapshot{Attempts: []job.Attempt{{Index: 0}, {Index: 1}}}
	want := []Sample{{Name: AttemptsCount, Value: 2}}
	if got := Extract(snap); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestExtract_SameStreamAcrossAttemptsNotMerged(t *testing.T) {
	snap := job.Snapshot{
		Attempts: []job.Attempt{
			{Index: 0, StreamStats: []job.StreamStat{{StreamName: "users", RecordsEmitted: job.Int64(4)}}},
			{Index: 1, StreamStats: []job.StreamStat{{StreamName: "users", RecordsEmitted: job.Int64(6)}}},
		},
	}
	got := Extract(snap)
	if len(got) != 3 {
		t.Fatalf("expected 3 samples, got %d: %+v", len(got), got)
	}
	if got[1].Value != 4 || got[2].Value != 6 {
		t.Fatalf("expected independent samples 4 and 6, got %+v", got)
	}

	rec := &Recorder{}
	Emit(context.Background(), rec, got)
	if total := rec.Total(RecordsEmitted, "users"); total != 10 {
		t.Fatalf("expected recorder total 10, got %d", total)
	}
}

func TestEmit_NilSink(t *testing.T) {
	Emit(context.Background(), nil, []Sample{{Name: AttemptsCount, Value: 1}})
}

func TestZerologSink_WritesSamples(t *testing.T) {
	var out bytes.Buffer
	sink := NewZerologSink(zerolog.New(&out))

	Emit(context.Background(), sink, []Sample{
		{Name: AttemptsCount, Value: 2},
		{Name: RecordsEmitted, Value: 10, Stream: "users"},
	})

	type line struct {
		Counter string `json:"counter"`
		Value   int64  `json:"value"`
		Stream  string `json:"stream"`
		Message string `json:"message"`
	}
	var got []line
	dec := json.NewDecoder(&out)
	for dec.More() {
		var l line
		if err := dec.Decode(&l); err != nil {
			t.Fatalf("decode: %v", err)
		}
		got = append(got, l)
	}
	want := []line{
		{Counter: AttemptsCount, Value: 2, Message: "job counter"},
		{Counter: RecordsEmitted, Value: 10, Stream: "users", Message: "job counter"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}
