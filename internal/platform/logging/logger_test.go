package logging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_KeyValueFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core)).With("component", "draw")

	logger.InfoContext(context.Background(), "draw recorded",
		"committee_id", "c1",
		"cycle", 2,
		"error", errors.New("none"),
		zap.Bool("completed", false),
		"dangling",
	)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "draw", fields["component"])
	assert.Equal(t, "c1", fields["committee_id"])
	assert.EqualValues(t, 2, fields["cycle"])
	assert.Equal(t, "none", fields["error"])
	assert.Equal(t, false, fields["completed"])
	assert.Contains(t, fields, "dangling")
}

func TestLogger_LevelFiltering(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger := FromZap(zap.New(core))

	logger.Info("ignored")
	logger.Warn("kept")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel(" error "))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}

func TestNilLoggerFallsBackToDefault(t *testing.T) {
	var logger *Logger
	assert.NotPanics(t, func() {
		logger.Info("no panic")
		logger.With("k", "v").Warn("still fine")
	})
}
