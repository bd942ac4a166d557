// Package observability provides audit logging, metrics, and tracing.
package observability

import (
	"context"
	"log/slog"
	"os"
)

// AuditLogger writes one structured record per privileged mutation.
// Records always go out as JSON so they can be shipped separately from request logs.
type AuditLogger struct {
	logger *slog.Logger
}

// Audit is the process-wide audit logger.
var Audit = NewAuditLogger(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

// NewAuditLogger wraps handler.
func NewAuditLogger(handler slog.Handler) *AuditLogger {
	return &AuditLogger{logger: slog.New(handler).With(slog.String("log_type", "audit"))}
}

// Record logs actor performing action on target.
func (l *AuditLogger) Record(ctx context.Context, actorID uint, action, targetType string, targetID any, fields map[string]any) {
	attrs := []any{
		slog.Uint64("actor_id", uint64(actorID)),
		slog.String("action", action),
		slog.String("target_type", targetType),
		slog.Any("target_id", targetID),
	}
	if tid := ExtractTraceID(ctx); tid != "" {
		attrs = append(attrs, slog.String("trace_id", tid))
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	l.logger.InfoContext(ctx, "audit", attrs...)
}
