package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_DefaultConfig(t *testing.T) {
	logger, err := NewLogger(NewDefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.True(t, logger.Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Enabled(zapcore.DebugLevel))
}

func TestNewLogger_InvalidFormat(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Format = "xml"

	_, err := NewLogger(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "format")
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Level = "loud"

	_, err := NewLogger(cfg)
	require.Error(t, err)
}

func TestLogger_ContextFieldsAttached(t *testing.T) {
	logger := NewTestLogger()

	ctx := WithRunID(context.Background(), "run-123")
	ctx = WithPhase(ctx, 2, 1)

	logger.Info(ctx, "strategy generated")

	entries := logger.FilterMessage("strategy generated").All()
	require.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	assert.Equal(t, "run-123", fields["run.id"])
	assert.Equal(t, int64(2), fields["phase"])
	assert.Equal(t, int64(1), fields["step"])
}

func TestLogger_With(t *testing.T) {
	logger := NewTestLogger()
	child := logger.Logger.With(zap.String("component", "runner"))

	child.Info(context.Background(), "hello")

	entries := logger.FilterMessage("hello").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "runner", entries[0].ContextMap()["component"])
}

func TestLogger_TraceFiltered(t *testing.T) {
	logger, err := NewLogger(NewDefaultConfig())
	require.NoError(t, err)

	// Trace below configured info level; must not panic or log.
	logger.Trace(context.Background(), "wire detail")
	assert.False(t, logger.Enabled(TraceLevel))
}

func TestFromContext_Fallback(t *testing.T) {
	logger := FromContext(context.Background())
	require.NotNil(t, logger)

	ctx := WithLogger(context.Background(), NewNop())
	assert.NotNil(t, FromContext(ctx))
}
