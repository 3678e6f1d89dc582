package jobs

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobflow-backend/internal/llm"
	"jobflow-backend/internal/parsing"
	"jobflow-backend/internal/shared/telemetry"
)

// Service contains business logic for ingesting and serving job postings.
type Service struct {
	Repo Repo
	LLM  llm.Client // nil means ingestion via parsing is unavailable
}

// Ingest parses raw posting text and stores the resulting job. A fully
// failed parse chain is a hard error: a catalog entry without a title and
// company is useless to matching and delivery.
func (s *Service) Ingest(ctx context.Context, rawContent, sourceType string) (Job, error) {
	rawContent = strings.TrimSpace(rawContent)
	if rawContent == "" {
		return Job{}, ErrInvalidInput
	}
	if sourceType == "" {
		sourceType = "manual"
	}

	fields, err := parsing.ParseJobPosting(ctx, rawContent, sourceType, s.LLM)
	if err != nil {
		return Job{}, err
	}

	now := time.Now().UTC()
	job := Job{
		ID:           uuid.NewString(),
		Title:        fields.Title,
		CompanyName:  fields.CompanyName,
		ApplyEmail:   fields.ApplyEmail,
		Requirements: fields.Requirements,
		SourceType:   sourceType,
		RawContent:   rawContent,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, job); err != nil {
		return Job{}, err
	}

	telemetry.Info("jobs.ingested", map[string]any{
		"job_id":      job.ID,
		"title":       job.Title,
		"source_type": sourceType,
	})
	return job, nil
}

// CreateManual stores a job whose fields the caller supplies directly,
// bypassing the parse chain.
func (s *Service) CreateManual(ctx context.Context, job Job) (Job, error) {
	if strings.TrimSpace(job.Title) == "" || strings.TrimSpace(job.CompanyName) == "" {
		return Job{}, ErrInvalidInput
	}

	now := time.Now().UTC()
	job.ID = uuid.NewString()
	if job.SourceType == "" {
		job.SourceType = "manual"
	}
	job.Status = StatusActive
	job.CreatedAt = now
	job.UpdatedAt = now
	if err := s.Repo.Create(ctx, job); err != nil {
		return Job{}, err
	}
	return job, nil
}

// Get returns a job by ID.
func (s *Service) Get(ctx context.Context, jobID string) (Job, error) {
	if jobID == "" {
		return Job{}, ErrInvalidInput
	}
	return s.Repo.Get(ctx, jobID)
}

// GetByIDs returns jobs for the given IDs; missing IDs are absent.
func (s *Service) GetByIDs(ctx context.Context, jobIDs []string) ([]Job, error) {
	return s.Repo.GetByIDs(ctx, jobIDs)
}

// ListActive lists active jobs ordered newest-first.
func (s *Service) ListActive(ctx context.Context, limit, offset int) ([]Job, error) {
	return s.Repo.ListActive(ctx, limit, offset)
}

// Archive marks a job archived so matching and delivery stop seeing it.
func (s *Service) Archive(ctx context.Context, jobID string) error {
	if jobID == "" {
		return ErrInvalidInput
	}
	return s.Repo.UpdateStatus(ctx, jobID, StatusArchived)
}
