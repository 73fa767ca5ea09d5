// Package airbyte fetches connection job state from an Airbyte-style jobs API.
package airbyte

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aponysus/jobwatch/job"
	"github.com/aponysus/jobwatch/observe"
)

const (
	jobsGetPath = "/api/v1/jobs/get"

	// WatchIDHeader carries the watch id of the poll a request belongs to.
	WatchIDHeader = "X-Jobwatch-Watch-Id"

	DefaultHTTPTimeout = 30 * time.Second

	maxErrorBody = 512
)

// Client implements watch.Client over HTTP.
type Client struct {
	BaseURL  string
	Username string
	Password string
	Token    string

	HTTPClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

func WithBasicAuth(username, password string) Option {
	return func(c *Client) {
		c.Username = username
		c.Password = password
	}
}

func WithToken(token string) Option {
	return func(c *Client) {
		c.Token = token
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.HTTPClient = hc
		}
	}
}

// WithTimeout bounds each request. It sets the timeout on a copy of the
// current HTTP client, so a transport given by WithHTTPClient is kept.
// Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d <= 0 {
			return
		}
		hc := &http.Client{}
		if c.HTTPClient != nil {
			*hc = *c.HTTPClient
		}
		hc.Timeout = d
		c.HTTPClient = hc
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: DefaultHTTPTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("airbyte: unexpected status %d", e.Code)
	}
	return fmt.Sprintf("airbyte: unexpected status %d: %s", e.Code, e.Body)
}

// FetchJob returns the current state of jobID.
func (c *Client) FetchJob(ctx context.Context, jobID int64) (job.Snapshot, error) {
	body, err := json.Marshal(map[string]int64{"id": jobID})
	if err != nil {
		return job.Snapshot{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+jobsGetPath, bytes.NewReader(body))
	if err != nil {
		return job.Snapshot{}, fmt.Errorf("airbyte: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	switch {
	case c.Token != "":
		req.Header.Set("Authorization", "Bearer "+c.Token)
	case c.Username != "":
		req.SetBasicAuth(c.Username, c.Password)
	}
	if info, ok := observe.PollFromContext(ctx); ok && info.WatchID != "" {
		req.Header.Set(WatchIDHeader, info.WatchID)
	}

	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return job.Snapshot{}, fmt.Errorf("airbyte: fetch job %d: %w", jobID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return job.Snapshot{}, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	var info jobInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return job.Snapshot{}, fmt.Errorf("airbyte: decode job %d: %w", jobID, err)
	}
	snap := info.snapshot()
	if snap.JobID == 0 {
		snap.JobID = jobID
	}
	return snap, nil
}
