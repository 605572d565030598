package database

import (
	"context"

	"github.com/google/uuid"
)

const createResume = `-- name: CreateResume :one
INSERT INTO resumes (
user_id, original_filename, mime, size_bytes, storage_provider, object_key, extracted_text)
VALUES ( $1, $2, $3, $4, $5, $6, $7)
RETURNING id, user_id, original_filename, mime, size_bytes, storage_provider, object_key, extracted_text, created_at
`

type CreateResumeParams struct {
	UserID           uuid.UUID
	OriginalFilename string
	Mime             string
	SizeBytes        int64
	StorageProvider  string
	ObjectKey        string
	ExtractedText    string
}

func (q *Queries) CreateResume(ctx context.Context, arg CreateResumeParams) (Resume, error) {
	row := q.db.QueryRowContext(ctx, createResume,
		arg.UserID,
		arg.OriginalFilename,
		arg.Mime,
		arg.SizeBytes,
		arg.StorageProvider,
		arg.ObjectKey,
		arg.ExtractedText,
	)
	var i Resume
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.OriginalFilename,
		&i.Mime,
		&i.SizeBytes,
		&i.StorageProvider,
		&i.ObjectKey,
		&i.ExtractedText,
		&i.CreatedAt,
	)
	return i, err
}

const getResumeForUser = `-- name: GetResumeForUser :one
SELECT id, user_id, original_filename, mime, size_bytes, storage_provider, object_key, extracted_text, created_at FROM resumes WHERE id=$1 AND user_id=$2
`

type GetResumeForUserParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

func (q *Queries) GetResumeForUser(ctx context.Context, arg GetResumeForUserParams) (Resume, error) {
	row := q.db.QueryRowContext(ctx, getResumeForUser, arg.ID, arg.UserID)
	var i Resume
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.OriginalFilename,
		&i.Mime,
		&i.SizeBytes,
		&i.StorageProvider,
		&i.ObjectKey,
		&i.ExtractedText,
		&i.CreatedAt,
	)
	return i, err
}

const countResumesByUser = `-- name: CountResumesByUser :one
SELECT COUNT(*) FROM resumes WHERE user_id=$1
`

func (q *Queries) CountResumesByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	row := q.db.QueryRowContext(ctx, countResumesByUser, userID)
	var count int64
	err := row.Scan(&count)
	return count, err
}
