package metrics

import (
	"context"

	"github.com/rs/zerolog"
)

// ZerologSink writes each sample as an info event with name, stream and
// value fields.
type ZerologSink struct {
	Logger zerolog.Logger
}

func NewZerologSink(logger zerolog.Logger) *ZerologSink {
	return &ZerologSink{Logger: logger}
}

func (s *ZerologSink) Record(_ context.Context, sample Sample) {
	ev := s.Logger.Info().Str("counter", sample.Name).Int64("value", sample.Value)
	if sample.Stream != "" {
		ev = ev.Str("stream", sample.Stream)
	}
	ev.Msg("job counter")
}
