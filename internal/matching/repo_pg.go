package matching

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// SaveBatch inserts all results from one matching run in a single transaction.
func (r *PGRepo) SaveBatch(ctx context.Context, results []MatchResult) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const query = `
INSERT INTO match_results (
    id,
    resume_id,
    job_id,
    score,
    highlights,
    template_recommendation,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for _, result := range results {
		highlightsJSON, err := json.Marshal(result.Highlights)
		if err != nil {
			return fmt.Errorf("marshal highlights: %w", err)
		}
		if _, err := tx.ExecContext(
			ctx,
			query,
			result.ID,
			result.ResumeID,
			result.JobID,
			result.Score,
			highlightsJSON,
			result.TemplateRecommendation,
			result.CreatedAt,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListByResume returns the most recent results for a resume.
func (r *PGRepo) ListByResume(ctx context.Context, resumeID string, limit int) ([]MatchResult, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
SELECT id, resume_id, job_id, score, highlights, template_recommendation, created_at
FROM match_results
WHERE resume_id = $1
ORDER BY created_at DESC, score DESC
LIMIT $2`

	rows, err := r.DB.QueryContext(ctx, query, resumeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MatchResult
	for rows.Next() {
		var result MatchResult
		var highlightsJSON []byte
		if err := rows.Scan(
			&result.ID,
			&result.ResumeID,
			&result.JobID,
			&result.Score,
			&highlightsJSON,
			&result.TemplateRecommendation,
			&result.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(highlightsJSON) > 0 {
			if err := json.Unmarshal(highlightsJSON, &result.Highlights); err != nil {
				return nil, fmt.Errorf("decode highlights: %w", err)
			}
		}
		out = append(out, result)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
