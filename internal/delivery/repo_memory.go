package delivery

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repo used when no database is configured.
type MemoryRepo struct {
	mu     sync.RWMutex
	nextID int64
	jobs   map[string]DeliveryJob
	logs   map[string][]LogEntry // deliveryJobID -> entries, insertion order
}

// NewMemoryRepo creates an empty in-memory repository.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		jobs: map[string]DeliveryJob{},
		logs: map[string][]LogEntry{},
	}
}

func (r *MemoryRepo) CreateJobWithLogs(_ context.Context, job DeliveryJob, logs []LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job
	for _, entry := range logs {
		r.nextID++
		entry.ID = r.nextID
		r.logs[job.ID] = append(r.logs[job.ID], entry)
	}
	return nil
}

func (r *MemoryRepo) GetJob(_ context.Context, deliveryJobID string) (DeliveryJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[deliveryJobID]
	if !ok {
		return DeliveryJob{}, ErrNotFound
	}
	return job, nil
}

func (r *MemoryRepo) ListJobsByUser(_ context.Context, userID string, limit, offset int) ([]DeliveryJob, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []DeliveryJob
	for _, job := range r.jobs {
		if job.UserID == userID {
			out = append(out, job)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepo) ListLogsByJob(_ context.Context, deliveryJobID string) ([]LogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := r.logs[deliveryJobID]
	out := make([]LogEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Seq != out[j].Seq {
			return out[i].Seq < out[j].Seq
		}
		return out[i].JobID < out[j].JobID
	})
	return out, nil
}

func (r *MemoryRepo) ListLogsInRange(_ context.Context, start, end time.Time, limit, offset int) ([]LogEntry, error) {
	if limit <= 0 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []LogEntry
	for _, entries := range r.logs {
		for _, entry := range entries {
			if !start.IsZero() && entry.Timestamp.Before(start) {
				continue
			}
			if !end.IsZero() && !entry.Timestamp.Before(end) {
				continue
			}
			out = append(out, entry)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
