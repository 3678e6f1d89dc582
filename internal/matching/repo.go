package matching

import "context"

// Repo persists the results of matching runs.
type Repo interface {
	// SaveBatch inserts all results from one matching invocation.
	SaveBatch(ctx context.Context, results []MatchResult) error
	ListByResume(ctx context.Context, resumeID string, limit int) ([]MatchResult, error)
}
