package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFromString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelError, levelFromString("ERROR"))
	assert.Equal(t, slog.LevelWarn, levelFromString(" warning "))
	assert.Equal(t, slog.LevelDebug, levelFromString("debug"))
	assert.Equal(t, slog.LevelInfo, levelFromString(""))
	assert.Equal(t, slog.LevelInfo, levelFromString("chatty"))
}

func TestVerboseForcesDebug(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewWithWriter(&buf, "error", true).Debug("fetching", "url", "https://example.org")
	assert.Contains(t, buf.String(), "msg=fetching")

	buf.Reset()
	NewWithWriter(&buf, "warn", false).Info("hidden")
	assert.Empty(t, buf.String())
}
