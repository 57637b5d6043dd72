package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureHandler(t *testing.T) {
	logger, h := NewCaptureLogger()

	logger.With(slog.String("component", "store")).
		WithGroup("ref").
		Warn("reload failed", slog.String("path", "a.xlsx"))
	logger.Info("ready")

	require.Len(t, h.Records(), 2)
	r := RequireLogged(t, h, slog.LevelWarn, "reload")
	assert.Equal(t, map[string]any{"component": "store", "ref.path": "a.xlsx"}, r.Attrs)

	_, ok := h.Find(slog.LevelError, "ready")
	assert.False(t, ok)
}
