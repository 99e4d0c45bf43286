package logging

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, parseLevel("info"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger(Config{Level: "debug", Format: "text"})
	assert.NotNil(t, logger)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))

	quiet := NewLogger(Config{Level: "error", Format: "json"})
	assert.False(t, quiet.Enabled(context.Background(), slog.LevelInfo))
}

func TestContextRoundTrip(t *testing.T) {
	logger := NewLogger(Config{Level: "info", Format: "json"})
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))

	// Missing logger falls back to the default.
	assert.NotNil(t, FromContext(context.Background()))
}
