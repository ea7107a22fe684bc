package events

import (
	"context"
	"log/slog"
)

// LoggerSink writes every event to the structured logger.
type LoggerSink struct {
	logger *slog.Logger
}

// NewLoggerSink constructs a logging sink.
func NewLoggerSink(logger *slog.Logger) *LoggerSink {
	return &LoggerSink{logger: logger}
}

// Publish writes the event to the structured logger.
func (s *LoggerSink) Publish(_ context.Context, e Event) error {
	if s == nil || s.logger == nil {
		return nil
	}
	attrs := make([]any, 0, 8)
	for k, v := range e.Fields() {
		attrs = append(attrs, slog.String(k, v))
	}
	s.logger.Info("event", attrs...)
	return nil
}
