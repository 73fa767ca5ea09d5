package logs

import (
	"sync"

	"github.com/rs/zerolog"
)

// Sink receives log lines in delivery order.
type Sink interface {
	Log(sev Severity, msg string)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(sev Severity, msg string)

func (f SinkFunc) Log(sev Severity, msg string) { f(sev, msg) }

// Discard drops every line.
var Discard Sink = SinkFunc(func(Severity, string) {})

// ZerologSink writes lines through a zerolog.Logger. Fields attached to the
// logger (job id, watch id) are carried on every line.
type ZerologSink struct {
	Logger zerolog.Logger
}

func NewZerologSink(logger zerolog.Logger) *ZerologSink {
	return &ZerologSink{Logger: logger}
}

func (s *ZerologSink) Log(sev Severity, msg string) {
	var ev *zerolog.Event
	switch sev {
	case SeverityTrace:
		ev = s.Logger.Trace()
	case SeverityDebug:
		ev = s.Logger.Debug()
	case SeverityWarn:
		ev = s.Logger.Warn()
	case SeverityError:
		ev = s.Logger.Error()
	default:
		ev = s.Logger.Info()
	}
	ev.Msg(msg)
}

// Entry is a line captured by Buffer.
type Entry struct {
	Severity Severity
	Message  string
}

// Buffer is an in-memory Sink. It is safe for concurrent use.
type Buffer struct {
	mu      sync.Mutex
	entries []Entry
}

func (b *Buffer) Log(sev Severity, msg string) {
	b.mu.Lock()
	b.entries = append(b.entries, Entry{Severity: sev, Message: msg})
	b.mu.Unlock()
}

// Entries returns a copy of everything logged so far.
func (b *Buffer) Entries() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Messages returns the logged messages at or above min, in order.
func (b *Buffer) Messages(min Severity) []string {
	var out []string
	for _, e := range b.Entries() {
		if e.Severity >= min {
			out = append(out, e.Message)
		}
	}
	return out
}
