package matching

import "time"

// MatchResult is one persisted (resume, job) score from a matching run.
// Results are written in batches by a single invocation and never mutated.
type MatchResult struct {
	ID                     string
	ResumeID               string
	JobID                  string
	Score                  int
	Highlights             []string
	TemplateRecommendation string
	CreatedAt              time.Time
}
