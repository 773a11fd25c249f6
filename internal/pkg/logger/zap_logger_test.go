package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewFromZap(zap.New(core))

	l.Warn("SELECTOR", "dropped unknown table", map[string]interface{}{"table": "ghost"})
	l.Info("PIPELINE", "no details", nil)
	l.Error("PIPELINE", "stage failed", map[string]interface{}{"error": "boom"})

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)

	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "SELECTOR", ctx["module"])
	assert.Equal(t, map[string]interface{}{"table": "ghost"}, ctx["details"])

	assert.Equal(t, map[string]interface{}{}, entries[1].ContextMap()["details"])
	assert.Equal(t, "boom", entries[2].ContextMap()["error_ref"])
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Info("X", "ignored", nil)
	assert.NoError(t, l.Sync())
}
