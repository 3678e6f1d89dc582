package matching

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory Repo used when no database is configured.
type MemoryRepo struct {
	mu      sync.RWMutex
	results map[string][]MatchResult // resumeID -> results, insertion order
}

// NewMemoryRepo creates an empty in-memory repository.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{results: map[string][]MatchResult{}}
}

func (r *MemoryRepo) SaveBatch(_ context.Context, results []MatchResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, result := range results {
		r.results[result.ResumeID] = append(r.results[result.ResumeID], result)
	}
	return nil
}

func (r *MemoryRepo) ListByResume(_ context.Context, resumeID string, limit int) ([]MatchResult, error) {
	if limit <= 0 {
		limit = 50
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.results[resumeID]
	out := make([]MatchResult, 0, len(stored))
	// Newest first.
	for i := len(stored) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, stored[i])
	}
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
