package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"jobflow-backend/internal/parsing"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// CreateResume inserts a new resume row.
func (r *PGRepo) CreateResume(ctx context.Context, resume Resume) error {
	const query = `
INSERT INTO resumes (
    id,
    user_id,
    filename,
    storage_key,
    status,
    error_message,
    uploaded_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	var errorMessage sql.NullString
	if resume.ErrorMessage != "" {
		errorMessage = sql.NullString{String: resume.ErrorMessage, Valid: true}
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		resume.ID,
		resume.UserID,
		resume.Filename,
		resume.StorageKey,
		resume.Status,
		errorMessage,
		resume.UploadedAt,
		resume.UpdatedAt,
	)
	return err
}

// GetResume fetches a resume by ID.
func (r *PGRepo) GetResume(ctx context.Context, resumeID string) (Resume, error) {
	const query = `
SELECT id, user_id, filename, storage_key, status, error_message, uploaded_at, updated_at
FROM resumes
WHERE id = $1
LIMIT 1`
	var resume Resume
	var errorMessage sql.NullString
	err := r.DB.QueryRowContext(ctx, query, resumeID).Scan(
		&resume.ID,
		&resume.UserID,
		&resume.Filename,
		&resume.StorageKey,
		&resume.Status,
		&errorMessage,
		&resume.UploadedAt,
		&resume.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	if errorMessage.Valid {
		resume.ErrorMessage = errorMessage.String
	}
	return resume, nil
}

// ListResumesByUser lists resumes for a user ordered newest-first.
func (r *PGRepo) ListResumesByUser(ctx context.Context, userID string, limit, offset int) ([]Resume, error) {
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
SELECT id, user_id, filename, storage_key, status, error_message, uploaded_at, updated_at
FROM resumes
WHERE user_id = $1
ORDER BY uploaded_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Resume
	for rows.Next() {
		var resume Resume
		var errorMessage sql.NullString
		if err := rows.Scan(
			&resume.ID,
			&resume.UserID,
			&resume.Filename,
			&resume.StorageKey,
			&resume.Status,
			&errorMessage,
			&resume.UploadedAt,
			&resume.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if errorMessage.Valid {
			resume.ErrorMessage = errorMessage.String
		}
		out = append(out, resume)
	}
	return out, rows.Err()
}

// UpdateResumeStatus sets the status and error message for a resume.
func (r *PGRepo) UpdateResumeStatus(ctx context.Context, resumeID, status, errorMessage string) error {
	const query = `
UPDATE resumes
SET status = $1, error_message = $2, updated_at = $3
WHERE id = $4`

	var message sql.NullString
	if errorMessage != "" {
		message = sql.NullString{String: errorMessage, Valid: true}
	}
	res, err := r.DB.ExecContext(ctx, query, status, message, time.Now().UTC(), resumeID)
	if err != nil {
		return err
	}
	if updated, err := res.RowsAffected(); err == nil && updated == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendParse assigns the next version and inserts the record. The resume row
// is locked for the duration of the transaction so concurrent appends cannot
// leave gaps or duplicates in the version sequence.
func (r *PGRepo) AppendParse(ctx context.Context, record ParseRecord) (ParseRecord, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return ParseRecord{}, err
	}
	defer tx.Rollback()

	const lockQuery = `SELECT id FROM resumes WHERE id = $1 FOR UPDATE`
	var lockedID string
	if err := tx.QueryRowContext(ctx, lockQuery, record.ResumeID).Scan(&lockedID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ParseRecord{}, ErrNotFound
		}
		return ParseRecord{}, err
	}

	const versionQuery = `SELECT COALESCE(MAX(version), 0) + 1 FROM resume_parses WHERE resume_id = $1`
	if err := tx.QueryRowContext(ctx, versionQuery, record.ResumeID).Scan(&record.Version); err != nil {
		return ParseRecord{}, err
	}

	fieldsJSON, err := json.Marshal(record.ExtractedFields)
	if err != nil {
		return ParseRecord{}, fmt.Errorf("marshal extracted fields: %w", err)
	}

	const insertQuery = `
INSERT INTO resume_parses (
    id,
    resume_id,
    version,
    parsed_json,
    extracted_fields,
    parsed_at
) VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := tx.ExecContext(
		ctx,
		insertQuery,
		record.ID,
		record.ResumeID,
		record.Version,
		[]byte(record.ParsedJSON),
		fieldsJSON,
		record.ParsedAt,
	); err != nil {
		return ParseRecord{}, err
	}

	if err := tx.Commit(); err != nil {
		return ParseRecord{}, err
	}
	return record, nil
}

// LatestParse returns the highest-version parse record for a resume.
func (r *PGRepo) LatestParse(ctx context.Context, resumeID string) (ParseRecord, error) {
	const query = `
SELECT id, resume_id, version, parsed_json, extracted_fields, parsed_at
FROM resume_parses
WHERE resume_id = $1
ORDER BY version DESC
LIMIT 1`
	record, err := scanParse(r.DB.QueryRowContext(ctx, query, resumeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ParseRecord{}, ErrNoParse
		}
		return ParseRecord{}, err
	}
	return record, nil
}

// ListParses returns all parse records for a resume, oldest version first.
func (r *PGRepo) ListParses(ctx context.Context, resumeID string) ([]ParseRecord, error) {
	const query = `
SELECT id, resume_id, version, parsed_json, extracted_fields, parsed_at
FROM resume_parses
WHERE resume_id = $1
ORDER BY version ASC`

	rows, err := r.DB.QueryContext(ctx, query, resumeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ParseRecord
	for rows.Next() {
		record, err := scanParse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanParse(row rowScanner) (ParseRecord, error) {
	var record ParseRecord
	var parsedJSON []byte
	var fieldsJSON []byte
	if err := row.Scan(
		&record.ID,
		&record.ResumeID,
		&record.Version,
		&parsedJSON,
		&fieldsJSON,
		&record.ParsedAt,
	); err != nil {
		return ParseRecord{}, err
	}
	record.ParsedJSON = json.RawMessage(parsedJSON)
	if len(fieldsJSON) > 0 {
		var fields parsing.Fields
		if err := json.Unmarshal(fieldsJSON, &fields); err != nil {
			return ParseRecord{}, fmt.Errorf("decode extracted fields: %w", err)
		}
		record.ExtractedFields = fields
	}
	return record, nil
}

var _ Repo = (*PGRepo)(nil)
