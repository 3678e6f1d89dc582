package matching

import (
	"context"
	"time"

	"github.com/google/uuid"

	"jobflow-backend/internal/jobs"
	"jobflow-backend/internal/resumes"
	"jobflow-backend/internal/shared/metrics"
	"jobflow-backend/internal/shared/telemetry"
)

// Service runs the engine over the latest parse of a resume and the active
// job catalog, persisting one batch of results per run.
type Service struct {
	Repo        Repo
	Resumes     *resumes.Service
	Jobs        *jobs.Service
	DefaultTopN int
}

// catalogWindow bounds how many active jobs one run scores against.
const catalogWindow = 200

// Run scores the resume's latest extracted fields against all active jobs
// and persists the ranked results. topN <= 0 falls back to the default.
func (s *Service) Run(ctx context.Context, resumeID string, topN int) ([]MatchResult, error) {
	if topN <= 0 {
		topN = s.DefaultTopN
	}

	record, err := s.Resumes.LatestParse(ctx, resumeID)
	if err != nil {
		return nil, err
	}

	catalog, err := s.Jobs.ListActive(ctx, catalogWindow, 0)
	if err != nil {
		return nil, err
	}

	candidates := make([]JobSummary, 0, len(catalog))
	for _, job := range catalog {
		candidates = append(candidates, JobSummary{
			ID:       job.ID,
			Title:    job.Title,
			Skills:   job.Requirements.Skills,
			Location: job.Requirements.Location,
		})
	}

	started := time.Now()
	scored := Match(record.ExtractedFields, candidates, topN)
	metrics.ObserveMatchDurationMs(float64(time.Since(started).Microseconds()) / 1000)
	metrics.IncMatchRun()

	now := time.Now().UTC()
	results := make([]MatchResult, 0, len(scored))
	for _, item := range scored {
		results = append(results, MatchResult{
			ID:                     uuid.NewString(),
			ResumeID:               resumeID,
			JobID:                  item.JobID,
			Score:                  item.Score,
			Highlights:             item.Highlights,
			TemplateRecommendation: item.TemplateRecommendation,
			CreatedAt:              now,
		})
	}
	if err := s.Repo.SaveBatch(ctx, results); err != nil {
		return nil, err
	}

	telemetry.Info("matching.run", map[string]any{
		"resume_id": resumeID,
		"jobs":      len(candidates),
		"returned":  len(results),
	})
	return results, nil
}

// History returns previously persisted results for a resume.
func (s *Service) History(ctx context.Context, resumeID string, limit int) ([]MatchResult, error) {
	return s.Repo.ListByResume(ctx, resumeID, limit)
}
