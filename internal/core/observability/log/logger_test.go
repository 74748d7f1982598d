package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"info":    LevelInfo,
		"warn":    LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"off":     LevelSilent,
		"bogus":   LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestFromZapWritesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core)).Named("bt").With(String("agent", "a1"))

	l.Warn("missing key", String("key", "target"), Int("n", 3), Bool("ok", false))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "bt", entries[0].LoggerName)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "a1", ctx["agent"])
	assert.Equal(t, "target", ctx["key"])
	assert.Equal(t, int64(3), ctx["n"])
	assert.Equal(t, false, ctx["ok"])
}

func TestLogRespectsLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core))
	l.SetLevel(LevelWarn)

	l.Log(LevelInfo, "dropped")
	l.Log(LevelError, "kept")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
	assert.Equal(t, LevelWarn, l.GetLevel())
}

func TestNopIsSilent(t *testing.T) {
	l := NewNop()
	l.Error("nothing")
	assert.Equal(t, LevelSilent, l.GetLevel())
	assert.NotNil(t, Provide())
}
