package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrTokenConsumed   = errors.New("verification token already consumed")
	uniqueViolationErr = pq.ErrorCode("23505")
)

// Store bundles the generated queries with the multi-statement operations
// that must run inside a single transaction.
type Store struct {
	*Queries
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{Queries: New(db), db: db}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ExecTx runs fn inside a transaction, committing on success and rolling
// back on error or panic.
func (s *Store) ExecTx(ctx context.Context, fn func(q *Queries) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(s.WithTx(tx))
	return err
}

// UpdateUserProfile updates the name and email. When the email changes, the
// user's pending verification tokens are dropped with it so that a link sent
// to the old address cannot verify the new one.
func (s *Store) UpdateUserProfile(ctx context.Context, arg UpdateUserProfileParams) (User, error) {
	var user User
	err := s.ExecTx(ctx, func(q *Queries) error {
		current, err := q.GetUserByID(ctx, arg.ID)
		if err != nil {
			return err
		}
		user, err = q.UpdateUserProfile(ctx, arg)
		if err != nil {
			return err
		}
		if current.Email != user.Email {
			if err := q.DeleteUnconsumedTokensByUser(ctx, arg.ID); err != nil {
				return fmt.Errorf("deleting pending tokens: %w", err)
			}
		}
		return nil
	})
	return user, err
}

// RotateVerificationToken drops the user's pending tokens and issues a new one.
func (s *Store) RotateVerificationToken(ctx context.Context, arg CreateVerificationTokenParams) (VerificationToken, error) {
	var token VerificationToken
	err := s.ExecTx(ctx, func(q *Queries) error {
		if err := q.DeleteUnconsumedTokensByUser(ctx, arg.UserID); err != nil {
			return fmt.Errorf("deleting pending tokens: %w", err)
		}
		var err error
		token, err = q.CreateVerificationToken(ctx, arg)
		if err != nil {
			return fmt.Errorf("creating token: %w", err)
		}
		return nil
	})
	return token, err
}

// ConsumeTokenAndVerify marks the token consumed and the owner verified.
// ErrTokenConsumed is returned when another request consumed it first.
func (s *Store) ConsumeTokenAndVerify(ctx context.Context, tokenID, userID uuid.UUID) error {
	return s.ExecTx(ctx, func(q *Queries) error {
		n, err := q.ConsumeVerificationToken(ctx, tokenID)
		if err != nil {
			return fmt.Errorf("consuming token: %w", err)
		}
		if n == 0 {
			return ErrTokenConsumed
		}
		if err := q.MarkUserEmailVerified(ctx, userID); err != nil {
			return fmt.Errorf("marking user verified: %w", err)
		}
		return nil
	})
}

// IsNotFound reports whether err came from a single-row read that matched nothing.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, ErrNotFound)
}

func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolationErr
	}
	return false
}
