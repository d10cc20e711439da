package logging

import (
	"context"

	"go.uber.org/zap"
)

// ContextFields extracts correlation data from context.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 4)

	if runID := RunIDFromContext(ctx); runID != "" {
		fields = append(fields, zap.String("run.id", runID))
	}

	if phase, step, ok := PhaseFromContext(ctx); ok {
		fields = append(fields,
			zap.Int("phase", phase),
			zap.Int("step", step),
		)
	}

	return fields
}

// Context key types
type runIDCtxKey struct{}
type phaseCtxKey struct{}

type phaseStep struct {
	phase int
	step  int
}

// WithRunID adds the pipeline run ID to context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDCtxKey{}, runID)
}

// RunIDFromContext extracts the run ID from context.
func RunIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(runIDCtxKey{}).(string); ok {
		return id
	}
	return ""
}

// WithPhase records the current pipeline phase and step in context.
// It replaces the process-wide step tracker the workflow previously
// relied on: collaborators read their position from context instead
// of mutating shared state.
func WithPhase(ctx context.Context, phase, step int) context.Context {
	return context.WithValue(ctx, phaseCtxKey{}, phaseStep{phase: phase, step: step})
}

// PhaseFromContext extracts the phase and step from context.
func PhaseFromContext(ctx context.Context) (phase, step int, ok bool) {
	if ps, found := ctx.Value(phaseCtxKey{}).(phaseStep); found {
		return ps.phase, ps.step, true
	}
	return 0, 0, false
}

// loggerCtxKey is the context key for Logger.
type loggerCtxKey struct{}

// WithLogger stores logger in context.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

// FromContext retrieves logger from context.
// Returns a nop logger if not found.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*Logger); ok {
		return l
	}
	return &Logger{zap: zap.NewNop(), config: NewDefaultConfig()}
}
