package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunLogs(t *testing.T) {
	logs := NewRunLogs(2)

	logs.Put("run-1", []string{"a"})
	logs.Put("run-2", []string{"b"})

	lines, ok := logs.Get("run-1")
	assert.True(t, ok)
	assert.Equal(t, []string{"a"}, lines)

	// Replacing does not count towards capacity.
	logs.Put("run-2", []string{"b2"})
	_, ok = logs.Get("run-1")
	assert.True(t, ok, "run-1 evicted by replacement")

	logs.Put("run-3", []string{"c"})
	_, ok = logs.Get("run-1")
	assert.False(t, ok, "run-1 should have been evicted")

	lines, ok = logs.Get("run-2")
	assert.True(t, ok)
	assert.Equal(t, []string{"b2"}, lines)
}

func TestNewRunLogs_DefaultCapacity(t *testing.T) {
	assert.Equal(t, defaultRunLogCapacity, NewRunLogs(0).capacity)
}
