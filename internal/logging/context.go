package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldCorrelationID tags every line of one CLI run.
	FieldCorrelationID = "correlation_id"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to check next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldDecisionType names the decision a log line records.
	FieldDecisionType = "decision_type"
	// FieldTrack identifies the track being adjusted.
	FieldTrack = "track"
)

type runIDKey struct{}

// WithRunID stores the run correlation id on ctx.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFromContext returns the run correlation id stored on ctx.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(runIDKey{}).(string)
	return id, ok && id != ""
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if id, ok := RunIDFromContext(ctx); ok {
		return logger.With(slog.String(FieldCorrelationID, id))
	}
	return logger
}
