package fsmkit

import (
	"context"
	"log/slog"
	"time"
)

// Logger provides logging hooks for interpreter execution.
type Logger interface {
	StateEntered(ctx context.Context, machine string, state StateID, contextData map[string]any)
	StateExited(ctx context.Context, machine string, state StateID)
	TransitionFired(ctx context.Context, machine string, from, to StateID, event Event)
	ActionStarted(ctx context.Context, machine string, action ActionRef, phase string)
	ActionCompleted(ctx context.Context, machine string, action ActionRef, phase string, duration time.Duration, err error)
}

// SlogLogger implements Logger using log/slog.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger creates a Logger backed by the given slog.Logger.
// A nil argument falls back to slog.Default().
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLogger{logger: logger}
}

func (l *SlogLogger) StateEntered(ctx context.Context, machine string, state StateID, contextData map[string]any) {
	l.logger.InfoContext(ctx, "state entered",
		"machine", machine,
		"state", string(state),
		"context_keys", len(contextData),
	)
}

func (l *SlogLogger) StateExited(ctx context.Context, machine string, state StateID) {
	l.logger.InfoContext(ctx, "state exited",
		"machine", machine,
		"state", string(state),
	)
}

func (l *SlogLogger) TransitionFired(ctx context.Context, machine string, from, to StateID, event Event) {
	l.logger.InfoContext(ctx, "transition fired",
		"machine", machine,
		"from", string(from),
		"to", string(to),
		"event", string(event.Type),
	)
}

func (l *SlogLogger) ActionStarted(ctx context.Context, machine string, action ActionRef, phase string) {
	l.logger.DebugContext(ctx, "action started",
		"machine", machine,
		"action", string(action),
		"phase", phase,
	)
}

func (l *SlogLogger) ActionCompleted(ctx context.Context, machine string, action ActionRef, phase string, duration time.Duration, err error) {
	fields := []any{
		"machine", machine,
		"action", string(action),
		"phase", phase,
		"duration_ms", duration.Milliseconds(),
	}
	if err != nil {
		fields = append(fields, "error", err.Error())
		l.logger.ErrorContext(ctx, "action failed", fields...)
		return
	}
	l.logger.DebugContext(ctx, "action completed", fields...)
}
