package mcp

import (
	"sync"
)

// defaultRunLogCapacity is how many build logs RunLogs keeps.
const defaultRunLogCapacity = 100

// RunLogs keeps the build logs of recent runs for get_run drill-down.
// The oldest log is evicted once capacity is reached.
type RunLogs struct {
	mu       sync.RWMutex
	capacity int
	order    []string
	logs     map[string][]string // run_id -> lines
}

// NewRunLogs creates a store holding at most capacity logs.
func NewRunLogs(capacity int) *RunLogs {
	if capacity <= 0 {
		capacity = defaultRunLogCapacity
	}
	return &RunLogs{
		capacity: capacity,
		logs:     make(map[string][]string),
	}
}

// Put stores the lines of a run, replacing any earlier log for the same ID.
func (s *RunLogs) Put(runID string, lines []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.logs[runID]; !exists {
		s.order = append(s.order, runID)
		if len(s.order) > s.capacity {
			delete(s.logs, s.order[0])
			s.order = s.order[1:]
		}
	}
	s.logs[runID] = lines
}

// Get returns the lines of a run.
func (s *RunLogs) Get(runID string) ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lines, ok := s.logs[runID]
	return lines, ok
}
