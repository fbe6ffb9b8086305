// Package logging emits the structured per-request log records for trim
// operations.
package logging

import (
	"log/slog"
	"time"
)

// RequestRecord captures one trim request for the structured log.
type RequestRecord struct {
	Session       string
	Model         string
	TokensIn      int
	TokensOut     int
	CompressRatio float64
	Retention     *float64
	Latency       time.Duration
}

// Logger writes request records through slog.
type Logger struct {
	log *slog.Logger
}

// NewLogger wraps log; nil uses slog's default logger.
func NewLogger(log *slog.Logger) *Logger {
	if log == nil {
		log = slog.Default()
	}
	return &Logger{log: log}
}

// LogRequest emits one structured record. The retention attribute is
// omitted when scoring was disabled.
func (l *Logger) LogRequest(rec RequestRecord) {
	attrs := []any{
		"session", rec.Session,
		"model", rec.Model,
		"token_in", rec.TokensIn,
		"token_out", rec.TokensOut,
		"compress_ratio", rec.CompressRatio,
		"latency_ms", rec.Latency.Milliseconds(),
	}
	if rec.Retention != nil {
		attrs = append(attrs, "semantic_retention", *rec.Retention)
	}
	l.log.Info("trim request", attrs...)
}
