package main

import (
	"bytes"
	"context"
	"io"
	"sync"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aponysus/jobwatch/integrations/promwatch"
	"github.com/aponysus/jobwatch/internal/config"
	"github.com/aponysus/jobwatch/metrics"
)

func TestParseArgs_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobwatch.yaml")
	data := []byte("server:\n  url: http://from-file\nwatch:\n  poll_interval: 30s\n  max_duration: 1h\nlog:\n  level: warn\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	opts, err := parseArgs([]string{"-config", path, "-job-id", "970", "-poll-interval", "2s", "-trace"}, io.Discard)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if opts.jobID != "970" {
		t.Fatalf("unexpected job id %q", opts.jobID)
	}
	cfg := opts.cfg
	if cfg.Server.URL != "http://from-file" || cfg.Log.Level != "warn" {
		t.Fatalf("expected file values to survive, got %+v", cfg)
	}
	if cfg.Watch.PollInterval != 2*time.Second || cfg.Watch.MaxDuration != time.Hour {
		t.Fatalf("unexpected policy %+v", cfg.Watch)
	}
	if !cfg.Trace.Enabled {
		t.Fatal("expected -trace to enable tracing")
	}
}

func TestParseArgs_Errors(t *testing.T) {
	cases := map[string][]string{
		"missing job id":   {"-url", "http://x"},
		"bad duration":     {"-job-id", "1", "-poll-interval", "soon"},
		"zero interval":    {"-job-id", "1", "-poll-interval", "0s"},
		"unknown flag":     {"-job-id", "1", "-verbose"},
		"missing config":   {"-job-id", "1", "-config", filepath.Join(t.TempDir(), "nope.yaml")},
		"bad log level":    {"-job-id", "1", "-log-level", "loud"},
		"empty server url": {"-job-id", "1", "-url", ""},
		"bad push url":     {"-job-id", "1", "-metrics-push-url", "pushgateway:9091"},
	}
	for name, args := range cases {
		if _, err := parseArgs(args, io.Discard); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestRouter_ServesHealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink := promwatch.NewSink(reg)
	sink.Record(context.Background(), metrics.Sample{Name: metrics.AttemptsCount, Value: 2})

	srv := httptest.NewServer(newRouter(reg))
	defer srv.Close()

	body := get(t, srv.URL+"/healthz")
	if body != "ok\n" {
		t.Fatalf("unexpected health body %q", body)
	}
	body = get(t, srv.URL+"/metrics")
	if !strings.Contains(body, "jobwatch_attempts_total 2") {
		t.Fatalf("expected attempts counter in:\n%s", body)
	}
}

func get(t *testing.T, url string) string {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get %s: status %d", url, resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read %s: %v", url, err)
	}
	return string(b)
}

func jobsAPI(t *testing.T, bodies ...string) *httptest.Server {
	t.Helper()
	var calls atomic.Int32
	r := chi.NewRouter()
	r.Post("/api/v1/jobs/get", func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1)) - 1
		if n >= len(bodies) {
			n = len(bodies) - 1
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(bodies[n]))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestRun_Succeeded(t *testing.T) {
	srv := jobsAPI(t,
		`{"job":{"id":970,"status":"running"},"attempts":[{"attempt":{"status":"running"},"logs":{"logLines":["starting"]}}]}`,
		`{"job":{"id":970,"status":"succeeded"},"attempts":[{"attempt":{"status":"succeeded"},"logs":{"logLines":["starting","done"]}}]}`,
	)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-url", srv.URL, "-job-id", "970", "-poll-interval", "10ms", "-max-duration", "10s", "-metrics-addr", "127.0.0.1:0"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d; stderr:\n%s", code, stderr.String())
	}
	if got := stdout.String(); !strings.Contains(got, "job 970 SUCCEEDED") {
		t.Fatalf("unexpected summary %q", got)
	}
	if !strings.Contains(stderr.String(), "done") {
		t.Fatalf("expected job log lines on stderr:\n%s", stderr.String())
	}
}

func TestRun_FailedJobExitsOne(t *testing.T) {
	srv := jobsAPI(t,
		`{"job":{"id":5,"status":"failed"},"attempts":[{"attempt":{"status":"failed","failureSummary":"connector crashed"}}]}`,
	)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-url", srv.URL, "-job-id", "5", "-trace"}, &stdout, &stderr)
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if got := stdout.String(); !strings.Contains(got, "job 5 FAILED") {
		t.Fatalf("unexpected summary %q", got)
	}
	if !strings.Contains(stderr.String(), "failure with reason: connector crashed") {
		t.Fatalf("expected failure reason on stderr:\n%s", stderr.String())
	}
	if !strings.Contains(stderr.String(), "jobwatch.watch") {
		t.Fatalf("expected exported span on stderr:\n%s", stderr.String())
	}
}

func TestRun_UsageErrorExitsOne(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"-url", "http://x"}, &stdout, &stderr); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if stdout.Len() != 0 {
		t.Fatalf("expected no summary, got %q", stdout.String())
	}
}

func TestNewLogger_JSONFormat(t *testing.T) {
	var out bytes.Buffer
	logger := newLogger(config.Log{Level: "warn", Format: "json"}, &out)
	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")
	if strings.Contains(out.String(), "hidden") || !strings.Contains(out.String(), `"message":"shown"`) {
		t.Fatalf("unexpected output %q", out.String())
	}
}

type pushedRequest struct {
	method string
	path   string
	body   []byte
}

// pushgateway records every push it receives.
type pushgateway struct {
	mu     sync.Mutex
	status int
	pushes []pushedRequest
}

func (p *pushgateway) handler() http.Handler {
	r := chi.NewRouter()
	r.HandleFunc("/metrics/*", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		p.mu.Lock()
		p.pushes = append(p.pushes, pushedRequest{method: r.Method, path: r.URL.Path, body: body})
		status := p.status
		p.mu.Unlock()
		if status != 0 {
			http.Error(w, "rejected", status)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func (p *pushgateway) received() []pushedRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]pushedRequest(nil), p.pushes...)
}

const succeededWithStats = `{"job":{"id":970,"status":"succeeded"},"attempts":[{"attempt":{"status":"succeeded","streamStats":[{"streamName":"users","stats":{"recordsEmitted":10}}]},"logs":{"logLines":["done"]}}]}`

func TestRun_PushesCountersAfterWatch(t *testing.T) {
	api := jobsAPI(t, succeededWithStats)
	gw := &pushgateway{}
	gwSrv := httptest.NewServer(gw.handler())
	defer gwSrv.Close()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-url", api.URL, "-job-id", "970", "-metrics-push-url", gwSrv.URL}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d; stderr:\n%s", code, stderr.String())
	}

	pushes := gw.received()
	if len(pushes) != 1 {
		t.Fatalf("expected one push, got %d", len(pushes))
	}
	push := pushes[0]
	if push.method != http.MethodPut || push.path != "/metrics/job/jobwatch/job_id/970" {
		t.Fatalf("unexpected push %s %s", push.method, push.path)
	}
	for _, name := range []string{"jobwatch_attempts_total", "jobwatch_records_emitted_total", "users", "jobwatch_watches_total"} {
		if !bytes.Contains(push.body, []byte(name)) {
			t.Fatalf("expected %s in pushed metrics", name)
		}
	}
}

func TestRun_PushFailureExitsOne(t *testing.T) {
	api := jobsAPI(t, succeededWithStats)
	gw := &pushgateway{status: http.StatusInternalServerError}
	gwSrv := httptest.NewServer(gw.handler())
	defer gwSrv.Close()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-url", api.URL, "-job-id", "970", "-metrics-push-url", gwSrv.URL}, &stdout, &stderr)
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stdout.String(), "job 970 SUCCEEDED") {
		t.Fatalf("expected the job outcome to be reported, got %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "push metrics failed") {
		t.Fatalf("expected push failure on stderr:\n%s", stderr.String())
	}
}
