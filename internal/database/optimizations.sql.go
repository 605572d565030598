package database

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

const createOptimization = `-- name: CreateOptimization :one
INSERT INTO optimizations (
user_id, resume_id, job_title, job_description, original_text, optimized_text, mode, model)
VALUES ( $1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, user_id, resume_id, job_title, job_description, original_text, optimized_text, mode, model, created_at
`

type CreateOptimizationParams struct {
	UserID         uuid.UUID
	ResumeID       uuid.NullUUID
	JobTitle       string
	JobDescription string
	OriginalText   string
	OptimizedText  string
	Mode           string
	Model          string
}

func (q *Queries) CreateOptimization(ctx context.Context, arg CreateOptimizationParams) (Optimization, error) {
	row := q.db.QueryRowContext(ctx, createOptimization,
		arg.UserID,
		arg.ResumeID,
		arg.JobTitle,
		arg.JobDescription,
		arg.OriginalText,
		arg.OptimizedText,
		arg.Mode,
		arg.Model,
	)
	var i Optimization
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.ResumeID,
		&i.JobTitle,
		&i.JobDescription,
		&i.OriginalText,
		&i.OptimizedText,
		&i.Mode,
		&i.Model,
		&i.CreatedAt,
	)
	return i, err
}

const getOptimization = `-- name: GetOptimization :one
SELECT id, user_id, resume_id, job_title, job_description, original_text, optimized_text, mode, model, created_at FROM optimizations WHERE id=$1
`

func (q *Queries) GetOptimization(ctx context.Context, id uuid.UUID) (Optimization, error) {
	row := q.db.QueryRowContext(ctx, getOptimization, id)
	var i Optimization
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.ResumeID,
		&i.JobTitle,
		&i.JobDescription,
		&i.OriginalText,
		&i.OptimizedText,
		&i.Mode,
		&i.Model,
		&i.CreatedAt,
	)
	return i, err
}

const listOptimizationsByUser = `-- name: ListOptimizationsByUser :many
SELECT id, user_id, resume_id, job_title, job_description, original_text, optimized_text, mode, model, created_at FROM optimizations
WHERE user_id=$1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`

type ListOptimizationsByUserParams struct {
	UserID uuid.UUID
	Limit  int32
	Offset int32
}

func (q *Queries) ListOptimizationsByUser(ctx context.Context, arg ListOptimizationsByUserParams) ([]Optimization, error) {
	rows, err := q.db.QueryContext(ctx, listOptimizationsByUser, arg.UserID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Optimization
	for rows.Next() {
		var i Optimization
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.ResumeID,
			&i.JobTitle,
			&i.JobDescription,
			&i.OriginalText,
			&i.OptimizedText,
			&i.Mode,
			&i.Model,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteOptimizationForUser = `-- name: DeleteOptimizationForUser :execrows
DELETE FROM optimizations WHERE id=$1 AND user_id=$2
`

type DeleteOptimizationForUserParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

func (q *Queries) DeleteOptimizationForUser(ctx context.Context, arg DeleteOptimizationForUserParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteOptimizationForUser, arg.ID, arg.UserID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getOptimizationStats = `-- name: GetOptimizationStats :one
SELECT
    COUNT(*)::bigint AS total,
    COUNT(*) FILTER (WHERE created_at > CURRENT_TIMESTAMP - INTERVAL '30 days')::bigint AS last_30_days,
    MAX(created_at)::timestamptz AS last_created_at
FROM optimizations
WHERE user_id=$1
`

type GetOptimizationStatsRow struct {
	Total         int64
	Last30Days    int64
	LastCreatedAt sql.NullTime
}

func (q *Queries) GetOptimizationStats(ctx context.Context, userID uuid.UUID) (GetOptimizationStatsRow, error) {
	row := q.db.QueryRowContext(ctx, getOptimizationStats, userID)
	var i GetOptimizationStatsRow
	err := row.Scan(&i.Total, &i.Last30Days, &i.LastCreatedAt)
	return i, err
}

const countOptimizationsByMode = `-- name: CountOptimizationsByMode :many
SELECT mode, COUNT(*)::bigint AS count FROM optimizations
WHERE user_id=$1
GROUP BY mode
ORDER BY mode
`

type CountOptimizationsByModeRow struct {
	Mode  string
	Count int64
}

func (q *Queries) CountOptimizationsByMode(ctx context.Context, userID uuid.UUID) ([]CountOptimizationsByModeRow, error) {
	rows, err := q.db.QueryContext(ctx, countOptimizationsByMode, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CountOptimizationsByModeRow
	for rows.Next() {
		var i CountOptimizationsByModeRow
		if err := rows.Scan(&i.Mode, &i.Count); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
