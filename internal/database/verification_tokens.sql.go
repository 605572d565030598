package database

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const deleteUnconsumedTokensByUser = `-- name: DeleteUnconsumedTokensByUser :exec
DELETE FROM verification_tokens WHERE user_id=$1 AND consumed_at IS NULL
`

func (q *Queries) DeleteUnconsumedTokensByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, deleteUnconsumedTokensByUser, userID)
	return err
}

const createVerificationToken = `-- name: CreateVerificationToken :one
INSERT INTO verification_tokens (
user_id, token_hash, expires_at)
VALUES ( $1, $2, $3)
RETURNING id, user_id, token_hash, expires_at, consumed_at, created_at
`

type CreateVerificationTokenParams struct {
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
}

func (q *Queries) CreateVerificationToken(ctx context.Context, arg CreateVerificationTokenParams) (VerificationToken, error) {
	row := q.db.QueryRowContext(ctx, createVerificationToken, arg.UserID, arg.TokenHash, arg.ExpiresAt)
	var i VerificationToken
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.TokenHash,
		&i.ExpiresAt,
		&i.ConsumedAt,
		&i.CreatedAt,
	)
	return i, err
}

const getVerificationTokenByHash = `-- name: GetVerificationTokenByHash :one
SELECT id, user_id, token_hash, expires_at, consumed_at, created_at FROM verification_tokens WHERE token_hash=$1
`

func (q *Queries) GetVerificationTokenByHash(ctx context.Context, tokenHash string) (VerificationToken, error) {
	row := q.db.QueryRowContext(ctx, getVerificationTokenByHash, tokenHash)
	var i VerificationToken
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.TokenHash,
		&i.ExpiresAt,
		&i.ConsumedAt,
		&i.CreatedAt,
	)
	return i, err
}

const consumeVerificationToken = `-- name: ConsumeVerificationToken :execrows
UPDATE verification_tokens
SET consumed_at = CURRENT_TIMESTAMP
WHERE id=$1 AND consumed_at IS NULL
`

func (q *Queries) ConsumeVerificationToken(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.ExecContext(ctx, consumeVerificationToken, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
