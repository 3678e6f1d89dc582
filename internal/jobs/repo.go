package jobs

import "context"

// Repo defines persistence operations for the job catalog.
type Repo interface {
	Create(ctx context.Context, job Job) error
	Get(ctx context.Context, jobID string) (Job, error)

	// GetByIDs returns the jobs for the given IDs. Missing IDs are simply
	// absent from the result; callers compare lengths to detect them.
	GetByIDs(ctx context.Context, jobIDs []string) ([]Job, error)
	ListActive(ctx context.Context, limit, offset int) ([]Job, error)
	UpdateStatus(ctx context.Context, jobID, status string) error
}
