package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriterLogger(&buf, false)

	log.Info("Detected language: %s", "Go")
	log.Error("Failed - Triggering API: %v", "timeout")
	log.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "[INFO] Detected language: Go\n")
	assert.Contains(t, out, "[ERROR] Failed - Triggering API: timeout\n")
	assert.NotContains(t, out, "hidden", "debug line should be dropped when not verbose")

	buf.Reset()
	NewWriterLogger(&buf, true).Debug("shown %d", 1)
	assert.Equal(t, "[DEBUG] shown 1\n", buf.String())
}

func TestRecordingLogger(t *testing.T) {
	rec := NewRecordingLogger()
	rec.Info("a %s", "b")
	rec.Error("c")

	lines := rec.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "[INFO] a b", lines[0])
	assert.True(t, rec.Contains("[ERROR] c"))
	assert.False(t, rec.Contains("missing"))
}

func TestTee(t *testing.T) {
	a, b := NewRecordingLogger(), NewRecordingLogger()
	log := Tee(a, b, NewSilentLogger())
	log.Info("one")
	log.Debug("two")

	for i, rec := range []*RecordingLogger{a, b} {
		assert.Len(t, rec.Lines(), 2, "logger %d", i)
	}
}
