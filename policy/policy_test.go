package policy

import (
	"errors"
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	p := New()
	if p.PollInterval != time.Second || p.MaxDuration != 60*time.Minute {
		t.Fatalf("unexpected defaults: %+v", p)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestNew_OptionsApplyInOrder(t *testing.T) {
	p := New(LongSyncDefaults(), PollInterval(5*time.Second), nil)
	if p.PollInterval != 5*time.Second {
		t.Fatalf("expected later option to win, got %v", p.PollInterval)
	}
	if p.MaxDuration != 24*time.Hour {
		t.Fatalf("expected preset max duration, got %v", p.MaxDuration)
	}
}

func TestValidate_RejectsNonPositive(t *testing.T) {
	cases := []struct {
		name  string
		p     WatchPolicy
		field string
	}{
		{"zero poll", New(PollInterval(0)), "poll_interval"},
		{"negative poll", New(PollInterval(-time.Second)), "poll_interval"},
		{"zero max", New(MaxDuration(0)), "max_duration"},
		{"negative max", New(MaxDuration(-time.Minute)), "max_duration"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.p.Validate()
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %T: %v", err, err)
			}
			if cfgErr.Field != tc.field {
				t.Fatalf("expected field %s, got %s", tc.field, cfgErr.Field)
			}
		})
	}
}

func TestParseJobID(t *testing.T) {
	id, err := ParseJobID(" 970 ")
	if err != nil || id != 970 {
		t.Fatalf("unexpected result: id=%d err=%v", id, err)
	}
	if id, err := ParseJobID("0"); err != nil || id != 0 {
		t.Fatalf("expected 0 to be valid: id=%d err=%v", id, err)
	}

	for _, in := range []string{"abc", "", "12.5", "-3", "99999999999999999999"} {
		_, err := ParseJobID(in)
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("ParseJobID(%q): expected ConfigError, got %v", in, err)
		}
		if cfgErr.Field != "job_id" {
			t.Fatalf("unexpected field %s", cfgErr.Field)
		}
	}
}
