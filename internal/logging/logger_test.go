package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]int{
		"debug":   Debug,
		"INFO":    Info,
		"warn":    Warning,
		"warning": Warning,
		"error":   Error,
		"fatal":   Critical,
		"":        Info,
		"chatty":  Info,
	}

	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func TestApplyLevel_EmptyKeepsLocalDebug(t *testing.T) {
	prev := LogLevel
	t.Cleanup(func() { SetLogLevel(prev) })

	SetLogLevel(Debug)
	ApplyLevel("")
	assert.Equal(t, Debug, LogLevel)

	ApplyLevel("error")
	assert.Equal(t, Error, LogLevel)
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, "audit-worker")
	l.SetLevel(Info)

	l.Debug("hidden")
	l.Info("Wrote batch", "count", 3, "key", "audit/x.jsonl")
	l.Error("Failed", "error", "boom", "dangling")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[audit-worker] ")
	assert.Contains(t, out, "[INFO] Wrote batch count=3 key=audit/x.jsonl")
	assert.Contains(t, out, "[ERROR] Failed error=boom")
	assert.False(t, strings.Contains(out, "dangling"))
}

func TestFormatMessage(t *testing.T) {
	assert.Equal(t, "[WARN] msg a=1", formatMessage("WARN", "msg", []interface{}{"a", 1}))
	assert.Equal(t, "[WARN] msg", formatMessage("WARN", "msg", nil))
}
