package logging

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesKeyValueFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "json", LevelDebug)

	ctx := WithRunID(context.Background(), "run-1")
	logger.WarnContext(ctx, "csv fetch failed", "player", "ann-lee", "error", errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, `"msg":"csv fetch failed"`)
	assert.Contains(t, out, `"player":"ann-lee"`)
	assert.Contains(t, out, `"error":"boom"`)
	assert.Contains(t, out, `"run_id":"run-1"`)
	assert.Contains(t, out, `"level":"WARN"`)
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "json", LevelWarn)
	logger.Info("hidden")
	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, LevelDebug, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestNilLoggerFallsBackToDefault(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() { l.Info("nothing", "k", 1) })
}
