// Package config loads the jobwatch command's YAML configuration.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/aponysus/jobwatch/policy"
)

// Config is the file layout read by the jobwatch command.
type Config struct {
	Server  Server             `yaml:"server"`
	Watch   policy.WatchPolicy `yaml:"watch"`
	Log     Log                `yaml:"log"`
	Metrics Metrics            `yaml:"metrics"`
	Trace   Trace              `yaml:"trace"`
}

type Server struct {
	URL         string        `yaml:"url"`
	Username    string        `yaml:"username"`
	Password    string        `yaml:"password"`
	Token       string        `yaml:"token"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
}

type Log struct {
	Level  string `yaml:"level"`  // trace, debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

type Metrics struct {
	Addr    string `yaml:"addr"`     // Listen address for /metrics; empty disables.
	PushURL string `yaml:"push_url"` // Pushgateway URL pushed to when a watch ends; empty disables.
}

type Trace struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: Server{
			URL:         "http://localhost:8000",
			HTTPTimeout: 30 * time.Second,
		},
		Watch: policy.Default(),
		Log:   Log{Level: "info", Format: "console"},
	}
}

// Parse decodes YAML on top of Default. Keys absent from data keep their
// default values.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Load reads and parses the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Validate checks the fields the command cannot run without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.URL) == "" {
		return fmt.Errorf("config: server.url is required")
	}
	if _, err := c.Log.ZerologLevel(); err != nil {
		return err
	}
	if c.Metrics.PushURL != "" {
		u, err := url.Parse(c.Metrics.PushURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("config: metrics.push_url must be an http(s) URL, got %q", c.Metrics.PushURL)
		}
	}
	switch c.Log.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	return c.Watch.Validate()
}

// ZerologLevel maps Level to a zerolog level. An empty level means info.
func (l Log) ZerologLevel() (zerolog.Level, error) {
	if strings.TrimSpace(l.Level) == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(l.Level)))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("config: %w", err)
	}
	return lvl, nil
}
