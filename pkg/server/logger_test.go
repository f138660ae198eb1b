package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBLogHandler(t *testing.T) {
	store := newMemoryStore()
	id := uuid.New()
	logger := slog.New(NewDBLogHandler(store, id, slog.LevelInfo))

	logger.Debug("dropped")
	logger.With("url", "https://acme.example").
		WithGroup("model").
		Error("call failed", "error", errors.New("quota"), slog.Group("usage", "tokens", 12))

	require.Len(t, store.logs, 1)
	entry := store.logs[0]
	assert.Equal(t, id, entry.SessionID)
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "call failed", entry.Message)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(entry.Metadata, &meta))
	assert.Equal(t, "https://acme.example", meta["url"])
	assert.Equal(t, "quota", meta["model.error"])
	assert.Equal(t, float64(12), meta["model.usage.tokens"])
}

func TestDBLogHandlerEnabled(t *testing.T) {
	h := NewDBLogHandler(newMemoryStore(), uuid.New(), slog.LevelWarn)
	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))

	def := NewDBLogHandler(newMemoryStore(), uuid.New(), nil)
	assert.True(t, def.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, def.Enabled(context.Background(), slog.LevelDebug))
}
