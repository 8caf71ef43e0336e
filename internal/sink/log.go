package sink

import (
	"context"

	"github.com/rs/zerolog"
)

// Log emits every sample as a debug event.
type Log struct {
	logger zerolog.Logger
}

func NewLog(logger zerolog.Logger) *Log {
	return &Log{logger: logger.With().Str("component", "sink.log").Logger()}
}

func (l *Log) Name() string { return "log" }

func (l *Log) Report(_ context.Context, s Sample) error {
	l.logger.Debug().
		Uint64("poll_count", s.PollCount).
		Uint64("value", s.Value).
		Time("at", s.At).
		Msg("sample")
	return nil
}

func (l *Log) Close() error { return nil }
