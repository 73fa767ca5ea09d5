package airbyte

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/aponysus/jobwatch/job"
)

type jobInfo struct {
	Job struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	} `json:"job"`
	Attempts []attemptInfo `json:"attempts"`
}

type attemptInfo struct {
	Attempt struct {
		ID             int64           `json:"id"`
		Status         string          `json:"status"`
		FailureSummary json.RawMessage `json:"failureSummary"`
		StreamStats    []streamStat    `json:"streamStats"`
	} `json:"attempt"`
	Logs struct {
		LogLines []string `json:"logLines"`
	} `json:"logs"`
}

type streamStat struct {
	StreamName string `json:"streamName"`
	Stats      struct {
		RecordsCommitted     *int64 `json:"recordsCommitted"`
		RecordsEmitted       *int64 `json:"recordsEmitted"`
		BytesEmitted         *int64 `json:"bytesEmitted"`
		StateMessagesEmitted *int64 `json:"stateMessagesEmitted"`
	} `json:"stats"`
}

type failureSummary struct {
	Failures []struct {
		FailureOrigin   string `json:"failureOrigin"`
		FailureType     string `json:"failureType"`
		ExternalMessage string `json:"externalMessage"`
		InternalMessage string `json:"internalMessage"`
	} `json:"failures"`
}

func (ji jobInfo) snapshot() job.Snapshot {
	snap := job.Snapshot{
		JobID:  ji.Job.ID,
		Status: job.ParseStatus(ji.Job.Status),
	}
	for i, a := range ji.Attempts {
		att := job.Attempt{
			Index:          i,
			Status:         a.Attempt.Status,
			FailureSummary: summarize(a.Attempt.FailureSummary),
			LogLines:       a.Logs.LogLines,
		}
		if a.Attempt.StreamStats != nil {
			att.StreamStats = make([]job.StreamStat, 0, len(a.Attempt.StreamStats))
			for _, s := range a.Attempt.StreamStats {
				att.StreamStats = append(att.StreamStats, job.StreamStat{
					StreamName:           s.StreamName,
					RecordsCommitted:     s.Stats.RecordsCommitted,
					RecordsEmitted:       s.Stats.RecordsEmitted,
					BytesEmitted:         s.Stats.BytesEmitted,
					StateMessagesEmitted: s.Stats.StateMessagesEmitted,
				})
			}
		}
		snap.Attempts = append(snap.Attempts, att)
	}
	return snap
}

// summarize renders a failure summary as text. The API sends either a plain
// string or an object listing failures; anything else is kept as compact JSON.
func summarize(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var fs failureSummary
	if err := json.Unmarshal(raw, &fs); err == nil && len(fs.Failures) > 0 {
		var msgs []string
		for _, f := range fs.Failures {
			msg := f.ExternalMessage
			if msg == "" {
				msg = f.InternalMessage
			}
			if msg == "" {
				msg = f.FailureType
			}
			if msg == "" {
				continue
			}
			if f.FailureOrigin != "" {
				msg = f.FailureOrigin + ": " + msg
			}
			msgs = append(msgs, msg)
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
