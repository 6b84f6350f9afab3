package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestJSONLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: FormatJSON, Component: ComponentStorage, Output: &buf})

	logger.Info("saved", FieldEntity, "Wallet")
	logger.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "saved", rec["msg"])
	assert.Equal(t, ComponentStorage, rec[FieldComponent])
	assert.Equal(t, "Wallet", rec[FieldEntity])

	assert.Equal(t, ComponentSync, logger.WithComponent(ComponentSync).Component())
}

func TestContextLogger(t *testing.T) {
	logger := New(Config{Component: ComponentWorker, Output: &bytes.Buffer{}})
	ctx := NewContext(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
	assert.Equal(t, "unknown", FromContext(context.Background()).Component())
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: FormatJSON, Output: &buf})
	sl := NewStructuredLogger(logger)
	ctx := context.Background()

	sl.LogChange(ctx, "Wallet", "w-1", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), true, 3*time.Millisecond)
	sl.LogChange(ctx, "Wallet", "w-1", time.Time{}, false, 0)
	sl.LogError(ctx, "apply failed", errors.New("boom"), ComponentSync, OpSync, nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"applied":true`)
	assert.Contains(t, lines[0], `"modified_at":"2026-01-01T00:00:00Z"`)
	assert.Contains(t, lines[1], `"error":"boom"`)
}
