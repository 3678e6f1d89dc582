package delivery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"jobflow-backend/internal/jobs"
	"jobflow-backend/internal/resumes"
	"jobflow-backend/internal/shared/metrics"
	"jobflow-backend/internal/shared/telemetry"
)

// Service drives the simulated delivery state machine.
type Service struct {
	Repo    Repo
	Resumes *resumes.Service
	Jobs    *jobs.Service
}

// PrepareResult is the caller-facing outcome of one orchestration run.
type PrepareResult struct {
	DeliveryJobID string
	FinalStatus   string
}

// Prepare validates the request, then drives the delivery job through
// created, queued, sent_simulated and completed_simulated in one synchronous
// run. Each target job accrues a queued and a delivered_simulated log entry.
// The run is all-or-nothing: validation failures reject the request before
// any state exists, and a persistence failure leaves no partial rows.
func (s *Service) Prepare(ctx context.Context, userID, resumeID string, jobIDs []string, config Config) (PrepareResult, error) {
	if err := s.validate(ctx, resumeID, jobIDs); err != nil {
		metrics.IncDeliveryRejected()
		return PrepareResult{}, err
	}

	now := time.Now().UTC()
	job := DeliveryJob{
		ID:        uuid.NewString(),
		UserID:    userID,
		ResumeID:  resumeID,
		JobIDs:    jobIDs,
		Config:    config,
		Status:    StatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}

	logs := make([]LogEntry, 0, 2*len(jobIDs))

	// Stage 1: queue every target, then the job itself is queued.
	for _, targetID := range jobIDs {
		logs = append(logs, LogEntry{
			DeliveryJobID:   job.ID,
			JobID:           targetID,
			ResumeID:        resumeID,
			Seq:             1,
			SimulatedStatus: LogQueued,
			Note:            "queued for simulated delivery",
			TemplateName:    config.TemplateName,
			Attachments:     config.Attachments,
			Timestamp:       time.Now().UTC(),
		})
	}
	job.Status = StatusQueued

	// Stage 2: simulated send.
	job.Status = StatusSentSimulated

	// Stage 3: every target delivered, job completed.
	for _, targetID := range jobIDs {
		logs = append(logs, LogEntry{
			DeliveryJobID:   job.ID,
			JobID:           targetID,
			ResumeID:        resumeID,
			Seq:             2,
			SimulatedStatus: LogDeliveredSimulated,
			Note:            "simulated delivery completed",
			TemplateName:    config.TemplateName,
			Attachments:     config.Attachments,
			Timestamp:       time.Now().UTC(),
		})
	}
	job.Status = StatusCompletedSimulated
	job.UpdatedAt = time.Now().UTC()

	if err := s.Repo.CreateJobWithLogs(ctx, job, logs); err != nil {
		return PrepareResult{}, err
	}

	metrics.IncDeliveryPrepared()
	telemetry.Info("delivery.prepared", map[string]any{
		"delivery_job_id": job.ID,
		"resume_id":       resumeID,
		"targets":         len(jobIDs),
		"status":          job.Status,
	})
	return PrepareResult{DeliveryJobID: job.ID, FinalStatus: job.Status}, nil
}

// Get returns a delivery job with its full log history.
func (s *Service) Get(ctx context.Context, deliveryJobID string) (DeliveryJob, []LogEntry, error) {
	job, err := s.Repo.GetJob(ctx, deliveryJobID)
	if err != nil {
		return DeliveryJob{}, nil, err
	}
	logs, err := s.Repo.ListLogsByJob(ctx, deliveryJobID)
	if err != nil {
		return DeliveryJob{}, nil, err
	}
	return job, logs, nil
}

// List returns delivery jobs for a user ordered newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]DeliveryJob, error) {
	return s.Repo.ListJobsByUser(ctx, userID, limit, offset)
}

func (s *Service) validate(ctx context.Context, resumeID string, jobIDs []string) error {
	if len(jobIDs) == 0 {
		return fmt.Errorf("%w: jobIds must be non-empty", ErrValidation)
	}
	seen := make(map[string]bool, len(jobIDs))
	for _, id := range jobIDs {
		if id == "" {
			return fmt.Errorf("%w: empty job id", ErrValidation)
		}
		if seen[id] {
			return fmt.Errorf("%w: duplicate job id %s", ErrValidation, id)
		}
		seen[id] = true
	}

	if _, err := s.Resumes.Get(ctx, resumeID); err != nil {
		if errors.Is(err, resumes.ErrNotFound) || errors.Is(err, resumes.ErrInvalidInput) {
			return fmt.Errorf("%w: resume %s does not exist", ErrValidation, resumeID)
		}
		return err
	}

	found, err := s.Jobs.GetByIDs(ctx, jobIDs)
	if err != nil {
		return err
	}
	if len(found) != len(jobIDs) {
		exists := make(map[string]bool, len(found))
		for _, job := range found {
			exists[job.ID] = true
		}
		for _, id := range jobIDs {
			if !exists[id] {
				return fmt.Errorf("%w: job %s does not exist", ErrValidation, id)
			}
		}
	}
	return nil
}
