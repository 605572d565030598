package database

import (
	"context"

	"github.com/google/uuid"
)

const createContactMessage = `-- name: CreateContactMessage :one
INSERT INTO contact_messages (
user_id, name, email, subject, message)
VALUES ( $1, $2, $3, $4, $5)
RETURNING id
`

type CreateContactMessageParams struct {
	UserID  uuid.NullUUID
	Name    string
	Email   string
	Subject string
	Message string
}

func (q *Queries) CreateContactMessage(ctx context.Context, arg CreateContactMessageParams) (uuid.UUID, error) {
	row := q.db.QueryRowContext(ctx, createContactMessage,
		arg.UserID,
		arg.Name,
		arg.Email,
		arg.Subject,
		arg.Message,
	)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}
