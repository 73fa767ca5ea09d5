// Command jobwatch follows a remote sync job until it finishes, streaming its
// logs and reporting its final status.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"

	"github.com/aponysus/jobwatch/airbyte"
	"github.com/aponysus/jobwatch/integrations/otelwatch"
	"github.com/aponysus/jobwatch/integrations/promwatch"
	"github.com/aponysus/jobwatch/internal/config"
	"github.com/aponysus/jobwatch/logs"
	"github.com/aponysus/jobwatch/metrics"
	"github.com/aponysus/jobwatch/watch"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	configPath string
	jobID      string
	cfg        config.Config
}

// parseArgs reads the config file named by -config and applies every flag
// given on the command line on top of it.
func parseArgs(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("jobwatch", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		opts         options
		url          string
		pollInterval time.Duration
		maxDuration  time.Duration
		logLevel     string
		metricsAddr  string
		pushURL      string
		trace        bool
	)
	fs.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	fs.StringVar(&url, "url", "", "base URL of the jobs API")
	fs.StringVar(&opts.jobID, "job-id", "", "id of the job to watch")
	fs.DurationVar(&pollInterval, "poll-interval", 0, "delay between status polls")
	fs.DurationVar(&maxDuration, "max-duration", 0, "give up after this long")
	fs.StringVar(&logLevel, "log-level", "", "trace, debug, info, warn or error")
	fs.StringVar(&metricsAddr, "metrics-addr", "", "serve /metrics and /healthz on this address")
	fs.StringVar(&pushURL, "metrics-push-url", "", "push counters to this Prometheus Pushgateway when the watch ends")
	fs.BoolVar(&trace, "trace", false, "print an OpenTelemetry span per watch to stderr")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	opts.cfg = config.Default()
	if opts.configPath != "" {
		cfg, err := config.Load(opts.configPath)
		if err != nil {
			return options{}, err
		}
		opts.cfg = cfg
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "url":
			opts.cfg.Server.URL = url
		case "poll-interval":
			opts.cfg.Watch.PollInterval = pollInterval
		case "max-duration":
			opts.cfg.Watch.MaxDuration = maxDuration
		case "log-level":
			opts.cfg.Log.Level = logLevel
		case "metrics-addr":
			opts.cfg.Metrics.Addr = metricsAddr
		case "metrics-push-url":
			opts.cfg.Metrics.PushURL = pushURL
		case "trace":
			opts.cfg.Trace.Enabled = trace
		}
	})

	if strings.TrimSpace(opts.jobID) == "" {
		return options{}, errors.New("jobwatch: -job-id is required")
	}
	if err := opts.cfg.Validate(); err != nil {
		return options{}, err
	}
	return opts, nil
}

func newLogger(cfg config.Log, w io.Writer) zerolog.Logger {
	lvl, err := cfg.ZerologLevel()
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	out := w
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, err)
		}
		return 1
	}
	cfg := opts.cfg

	logger := newLogger(cfg.Log, stderr)
	jobLogger := logger.With().Str("job_id", strings.TrimSpace(opts.jobID)).Logger()

	client := airbyte.NewClient(cfg.Server.URL,
		airbyte.WithBasicAuth(cfg.Server.Username, cfg.Server.Password),
		airbyte.WithToken(cfg.Server.Token),
		airbyte.WithTimeout(cfg.Server.HTTPTimeout),
	)

	var metricsSink metrics.Sink = metrics.NewZerologSink(jobLogger)
	watchOpts := []watch.Option{
		watch.WithLogSink(logs.NewZerologSink(jobLogger)),
		watch.WithLogger(logger),
	}

	var reg *prometheus.Registry
	if cfg.Metrics.Addr != "" || cfg.Metrics.PushURL != "" {
		reg = prometheus.NewRegistry()
		metricsSink = promwatch.NewSink(reg)
		watchOpts = append(watchOpts, watch.WithObserver(promwatch.NewObserver(reg)))
	}
	if cfg.Metrics.Addr != "" {
		srv, err := startMetricsServer(cfg.Metrics.Addr, reg, logger)
		if err != nil {
			logger.Error().Err(err).Str("addr", cfg.Metrics.Addr).Msg("metrics server failed")
			return 1
		}
		defer shutdown(srv, logger)
	}

	if cfg.Trace.Enabled {
		provider, err := newTracerProvider(ctx, stderr)
		if err != nil {
			logger.Error().Err(err).Msg("init tracer")
			return 1
		}
		defer func() {
			_ = provider.Shutdown(context.Background())
		}()
		otel.SetTracerProvider(provider)
		watchOpts = append(watchOpts, watch.WithObserver(otelwatch.NewObserver(otel.Tracer("jobwatch"))))
	}

	watchOpts = append(watchOpts, watch.WithMetricsSink(metricsSink))
	w := watch.NewWatcher(client, watchOpts...)
	res, err := w.Watch(ctx, opts.jobID, cfg.Watch)
	printSummary(stdout, opts.jobID, res, err)

	code := 0
	if err != nil {
		logger.Error().Err(err).Msg("watch failed")
		code = 1
	}
	if cfg.Metrics.PushURL != "" {
		if err := pushMetrics(cfg.Metrics.PushURL, reg, strings.TrimSpace(opts.jobID)); err != nil {
			logger.Error().Err(err).Str("url", cfg.Metrics.PushURL).Msg("push metrics failed")
			code = 1
		}
	}
	return code
}
