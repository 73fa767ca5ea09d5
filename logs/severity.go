// Package logs delivers remote job log lines to a Sink exactly once.
package logs

import "strings"

// Severity is the level a log line is delivered at.
type Severity int

const (
	SeverityTrace Severity = iota
	SeverityDebug
	SeverityInfo
	SeverityWarn
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityTrace:
		return "trace"
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Level markers embedded by the remote system in plain-text log lines.
// Checked in this order; a line carries at most one.
var markers = []struct {
	token string
	sev   Severity
}{
	{"ERROR[", SeverityError},
	{"DEBUG[", SeverityDebug},
	{"TRACE[", SeverityTrace},
}

// Classify returns the severity of a remote log line.
func Classify(line string) Severity {
	for _, m := range markers {
		if strings.Contains(line, m.token) {
			return m.sev
		}
	}
	return SeverityInfo
}
