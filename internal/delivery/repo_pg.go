package delivery

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// CreateJobWithLogs inserts the delivery job and every log entry in a single
// transaction.
func (r *PGRepo) CreateJobWithLogs(ctx context.Context, job DeliveryJob, logs []LogEntry) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	jobIDsJSON, err := json.Marshal(job.JobIDs)
	if err != nil {
		return fmt.Errorf("marshal job ids: %w", err)
	}
	configJSON, err := json.Marshal(job.Config)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	var resumeID sql.NullString
	if job.ResumeID != "" {
		resumeID = sql.NullString{String: job.ResumeID, Valid: true}
	}

	const jobQuery = `
INSERT INTO delivery_jobs (
    id,
    user_id,
    resume_id,
    job_ids,
    config,
    status,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := tx.ExecContext(
		ctx,
		jobQuery,
		job.ID,
		job.UserID,
		resumeID,
		jobIDsJSON,
		configJSON,
		job.Status,
		job.CreatedAt,
		job.UpdatedAt,
	); err != nil {
		return err
	}

	const logQuery = `
INSERT INTO delivery_logs (
    delivery_job_id,
    job_id,
    resume_id,
    seq,
    simulated_status,
    note,
    failure_reason,
    template_name,
    attachment_names,
    ts
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for _, entry := range logs {
		attachmentsJSON, err := json.Marshal(entry.Attachments)
		if err != nil {
			return fmt.Errorf("marshal attachments: %w", err)
		}
		var failureReason sql.NullString
		if entry.FailureReason != "" {
			failureReason = sql.NullString{String: entry.FailureReason, Valid: true}
		}
		if _, err := tx.ExecContext(
			ctx,
			logQuery,
			entry.DeliveryJobID,
			entry.JobID,
			entry.ResumeID,
			entry.Seq,
			entry.SimulatedStatus,
			entry.Note,
			failureReason,
			entry.TemplateName,
			attachmentsJSON,
			entry.Timestamp,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetJob fetches a delivery job by ID.
func (r *PGRepo) GetJob(ctx context.Context, deliveryJobID string) (DeliveryJob, error) {
	const query = `
SELECT id, user_id, resume_id, job_ids, config, status, created_at, updated_at
FROM delivery_jobs
WHERE id = $1
LIMIT 1`
	job, err := scanDeliveryJob(r.DB.QueryRowContext(ctx, query, deliveryJobID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DeliveryJob{}, ErrNotFound
		}
		return DeliveryJob{}, err
	}
	return job, nil
}

// ListJobsByUser lists delivery jobs for a user ordered newest-first.
func (r *PGRepo) ListJobsByUser(ctx context.Context, userID string, limit, offset int) ([]DeliveryJob, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, user_id, resume_id, job_ids, config, status, created_at, updated_at
FROM delivery_jobs
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DeliveryJob
	for rows.Next() {
		job, err := scanDeliveryJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

// ListLogsByJob returns all log entries for a delivery job in stage order.
func (r *PGRepo) ListLogsByJob(ctx context.Context, deliveryJobID string) ([]LogEntry, error) {
	const query = logSelect + `
WHERE delivery_job_id = $1
ORDER BY seq ASC, job_id ASC`

	rows, err := r.DB.QueryContext(ctx, query, deliveryJobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLogs(rows)
}

// ListLogsInRange returns log entries with ts in [start, end), timestamp
// ascending.
func (r *PGRepo) ListLogsInRange(ctx context.Context, start, end time.Time, limit, offset int) ([]LogEntry, error) {
	if limit <= 0 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}

	var conditions []string
	var args []any
	if !start.IsZero() {
		args = append(args, start)
		conditions = append(conditions, fmt.Sprintf("ts >= $%d", len(args)))
	}
	if !end.IsZero() {
		args = append(args, end)
		conditions = append(conditions, fmt.Sprintf("ts < $%d", len(args)))
	}

	query := logSelect
	if len(conditions) > 0 {
		query += "\nWHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, limit)
	query += fmt.Sprintf("\nORDER BY ts ASC, id ASC\nLIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLogs(rows)
}

const logSelect = `
SELECT id, delivery_job_id, job_id, resume_id, seq, simulated_status, note, failure_reason, template_name, attachment_names, ts
FROM delivery_logs`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeliveryJob(row rowScanner) (DeliveryJob, error) {
	var job DeliveryJob
	var resumeID sql.NullString
	var jobIDsJSON []byte
	var configJSON []byte
	if err := row.Scan(
		&job.ID,
		&job.UserID,
		&resumeID,
		&jobIDsJSON,
		&configJSON,
		&job.Status,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		return DeliveryJob{}, err
	}
	if resumeID.Valid {
		job.ResumeID = resumeID.String
	}
	if len(jobIDsJSON) > 0 {
		if err := json.Unmarshal(jobIDsJSON, &job.JobIDs); err != nil {
			return DeliveryJob{}, fmt.Errorf("decode job ids: %w", err)
		}
	}
	if len(configJSON) > 0 {
		if err := json.Unmarshal(configJSON, &job.Config); err != nil {
			return DeliveryJob{}, fmt.Errorf("decode config: %w", err)
		}
	}
	return job, nil
}

func collectLogs(rows *sql.Rows) ([]LogEntry, error) {
	var out []LogEntry
	for rows.Next() {
		var entry LogEntry
		var failureReason sql.NullString
		var attachmentsJSON []byte
		if err := rows.Scan(
			&entry.ID,
			&entry.DeliveryJobID,
			&entry.JobID,
			&entry.ResumeID,
			&entry.Seq,
			&entry.SimulatedStatus,
			&entry.Note,
			&failureReason,
			&entry.TemplateName,
			&attachmentsJSON,
			&entry.Timestamp,
		); err != nil {
			return nil, err
		}
		if failureReason.Valid {
			entry.FailureReason = failureReason.String
		}
		if len(attachmentsJSON) > 0 {
			if err := json.Unmarshal(attachmentsJSON, &entry.Attachments); err != nil {
				return nil, fmt.Errorf("decode attachments: %w", err)
			}
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
