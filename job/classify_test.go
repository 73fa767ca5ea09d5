package job

import (
	"reflect"
	"testing"
)

func TestIsTerminal(t *testing.T) {
	cases := map[Status]bool{
		StatusUnknown:    false,
		StatusPending:    false,
		StatusRunning:    false,
		StatusIncomplete: false,
		StatusSucceeded:  true,
		StatusFailed:     true,
		StatusCancelled:  true,
	}
	for s, want := range cases {
		if got := IsTerminal(s); got != want {
			t.Errorf("IsTerminal(%s)=%v, want %v", s, got, want)
		}
	}
}

func TestIsSuccess(t *testing.T) {
	if !IsSuccess(StatusSucceeded) {
		t.Fatal("expected SUCCEEDED to be success")
	}
	for _, s := range []Status{StatusFailed, StatusCancelled, StatusRunning, StatusUnknown} {
		if IsSuccess(s) {
			t.Fatalf("expected %s not to be success", s)
		}
	}
}

func TestParseStatus(t *testing.T) {
	cases := map[string]Status{
		"succeeded":   StatusSucceeded,
		"SUCCEEDED":   StatusSucceeded,
		" running ":   StatusRunning,
		"incomplete":  StatusIncomplete,
		"cancelled":   StatusCancelled,
		"canceled":    StatusCancelled,
		"failed":      StatusFailed,
		"pending":     StatusPending,
		"":            StatusUnknown,
		"exploded???": StatusUnknown,
	}
	for in, want := range cases {
		if got := ParseStatus(in); got != want {
			t.Errorf("ParseStatus(%q)=%s, want %s", in, got, want)
		}
	}
	if StatusSucceeded.String() != "SUCCEEDED" {
		t.Fatalf("unexpected string %q", StatusSucceeded.String())
	}
}

func TestFailureSummaries_OrderedAndSkipsEmpty(t *testing.T) {
	snap := Snapshot{
		Status: StatusFailed,
		Attempts: []Attempt{
			{Index: 0, FailureSummary: "source timed out"},
			{Index: 1},
			{Index: 2, FailureSummary: "connector crashed"},
		},
	}
	got := FailureSummaries(snap)
	want := []string{"source timed out", "connector crashed"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got := FailureSummaries(Snapshot{}); got != nil {
		t.Fatalf("expected nil summaries, got %v", got)
	}
}
