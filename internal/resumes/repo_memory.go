package resumes

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repo used when no database is configured.
type MemoryRepo struct {
	mu      sync.RWMutex
	resumes map[string]Resume
	parses  map[string][]ParseRecord // resumeID -> records ordered by version
}

// NewMemoryRepo creates an empty in-memory repository.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		resumes: map[string]Resume{},
		parses:  map[string][]ParseRecord{},
	}
}

func (r *MemoryRepo) CreateResume(_ context.Context, resume Resume) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resumes[resume.ID] = resume
	return nil
}

func (r *MemoryRepo) GetResume(_ context.Context, resumeID string) (Resume, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	resume, ok := r.resumes[resumeID]
	if !ok {
		return Resume{}, ErrNotFound
	}
	return resume, nil
}

func (r *MemoryRepo) ListResumesByUser(_ context.Context, userID string, limit, offset int) ([]Resume, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Resume
	for _, resume := range r.resumes {
		if resume.UserID == userID {
			out = append(out, resume)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UploadedAt.After(out[j].UploadedAt)
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

func (r *MemoryRepo) UpdateResumeStatus(_ context.Context, resumeID, status, errorMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	resume, ok := r.resumes[resumeID]
	if !ok {
		return ErrNotFound
	}
	resume.Status = status
	resume.ErrorMessage = errorMessage
	resume.UpdatedAt = time.Now().UTC()
	r.resumes[resumeID] = resume
	return nil
}

func (r *MemoryRepo) AppendParse(_ context.Context, record ParseRecord) (ParseRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.resumes[record.ResumeID]; !ok {
		return ParseRecord{}, ErrNotFound
	}
	existing := r.parses[record.ResumeID]
	record.Version = len(existing) + 1
	r.parses[record.ResumeID] = append(existing, record)
	return record, nil
}

func (r *MemoryRepo) LatestParse(_ context.Context, resumeID string) (ParseRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	records := r.parses[resumeID]
	if len(records) == 0 {
		return ParseRecord{}, ErrNoParse
	}
	return records[len(records)-1], nil
}

func (r *MemoryRepo) ListParses(_ context.Context, resumeID string) ([]ParseRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	records := r.parses[resumeID]
	out := make([]ParseRecord, len(records))
	copy(out, records)
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
