package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobflow-backend/internal/parsing"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new job.
func (r *PGRepo) Create(ctx context.Context, job Job) error {
	const query = `
INSERT INTO jobs (
    id,
    title,
    company_name,
    apply_email,
    requirements,
    source_type,
    raw_content,
    status,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	requirementsJSON, err := json.Marshal(job.Requirements)
	if err != nil {
		return fmt.Errorf("marshal requirements: %w", err)
	}

	var applyEmail sql.NullString
	if job.ApplyEmail != "" {
		applyEmail = sql.NullString{String: job.ApplyEmail, Valid: true}
	}

	_, err = r.DB.ExecContext(
		ctx,
		query,
		job.ID,
		job.Title,
		job.CompanyName,
		applyEmail,
		requirementsJSON,
		job.SourceType,
		job.RawContent,
		job.Status,
		job.CreatedAt,
		job.UpdatedAt,
	)
	return err
}

// Get fetches a job by ID.
func (r *PGRepo) Get(ctx context.Context, jobID string) (Job, error) {
	const query = jobSelect + `
WHERE id = $1
LIMIT 1`
	job, err := scanJob(r.DB.QueryRowContext(ctx, query, jobID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Job{}, ErrNotFound
		}
		return Job{}, err
	}
	return job, nil
}

// GetByIDs fetches jobs by ID; missing IDs are absent from the result.
func (r *PGRepo) GetByIDs(ctx context.Context, jobIDs []string) ([]Job, error) {
	if len(jobIDs) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(jobIDs))
	args := make([]any, len(jobIDs))
	for i, id := range jobIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := jobSelect + fmt.Sprintf("\nWHERE id IN (%s)", strings.Join(placeholders, ", "))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

// ListActive lists active jobs ordered newest-first.
func (r *PGRepo) ListActive(ctx context.Context, limit, offset int) ([]Job, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	query := jobSelect + `
WHERE status = 'active'
ORDER BY created_at DESC
LIMIT $1 OFFSET $2`

	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

// UpdateStatus sets a job's status.
func (r *PGRepo) UpdateStatus(ctx context.Context, jobID, status string) error {
	const query = `
UPDATE jobs
SET status = $1, updated_at = $2
WHERE id = $3`
	res, err := r.DB.ExecContext(ctx, query, status, time.Now().UTC(), jobID)
	if err != nil {
		return err
	}
	if updated, err := res.RowsAffected(); err == nil && updated == 0 {
		return ErrNotFound
	}
	return nil
}

const jobSelect = `
SELECT id, title, company_name, apply_email, requirements, source_type, raw_content, status, created_at, updated_at
FROM jobs`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (Job, error) {
	var job Job
	var applyEmail sql.NullString
	var requirementsJSON []byte
	if err := row.Scan(
		&job.ID,
		&job.Title,
		&job.CompanyName,
		&applyEmail,
		&requirementsJSON,
		&job.SourceType,
		&job.RawContent,
		&job.Status,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		return Job{}, err
	}
	if applyEmail.Valid {
		job.ApplyEmail = applyEmail.String
	}
	if len(requirementsJSON) > 0 {
		var reqs parsing.JobRequirements
		if err := json.Unmarshal(requirementsJSON, &reqs); err != nil {
			return Job{}, fmt.Errorf("decode requirements: %w", err)
		}
		job.Requirements = reqs
	}
	return job, nil
}

var _ Repo = (*PGRepo)(nil)
