package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFromString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelError, levelFromString("ERROR"))
	assert.Equal(t, slog.LevelWarn, levelFromString(" warning "))
	assert.Equal(t, slog.LevelInfo, levelFromString("info"))
	assert.Equal(t, slog.LevelDebug, levelFromString("whatever"))
}

func TestNewWithWriterJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "info", "json")
	logger.Debug("hidden")
	logger.Info("run finished", "processed", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "run finished", entry["msg"])
	assert.Equal(t, 3.0, entry["processed"])
}
