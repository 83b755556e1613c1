package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"langdetect-agent/src/contracts"
)

// MemoryStore is an in-memory implementation of Store.
// Used in local mode and by tests.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]contracts.RunRecord
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs: make(map[string]contracts.RunRecord),
	}
}

// CreateRun records a started run. Creating an existing ID is a no-op.
func (s *MemoryStore) CreateRun(ctx context.Context, run *contracts.RunRecord) error {
	if run.ID == "" {
		return fmt.Errorf("run ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.ID]; !exists {
		s.runs[run.ID] = *run
	}
	return nil
}

// FinishRun replaces the stored run.
func (s *MemoryStore) FinishRun(ctx context.Context, run *contracts.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.ID]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, run.ID)
	}
	s.runs[run.ID] = *run
	return nil
}

// GetRun returns a copy of the run with the given ID.
func (s *MemoryStore) GetRun(ctx context.Context, id string) (*contracts.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, exists := s.runs[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &run, nil
}

// ListRuns returns up to limit runs ordered by start time, newest first.
func (s *MemoryStore) ListRuns(ctx context.Context, limit int) ([]contracts.RunRecord, error) {
	s.mu.RLock()
	runs := make([]contracts.RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	s.mu.RUnlock()

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})

	if limit = normalizeLimit(limit); len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
