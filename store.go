package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/muhammadolammi/resumeoptimizer/internal/database"
)

// Store is the slice of the database layer the handlers depend on.
// *database.Store satisfies it.
type Store interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error)
	GetUserByEmail(ctx context.Context, email string) (database.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
	UpdateUserProfile(ctx context.Context, arg database.UpdateUserProfileParams) (database.User, error)
	UpdateUserPassword(ctx context.Context, arg database.UpdateUserPasswordParams) error

	CreateResume(ctx context.Context, arg database.CreateResumeParams) (database.Resume, error)
	GetResumeForUser(ctx context.Context, arg database.GetResumeForUserParams) (database.Resume, error)
	CountResumesByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	CreateOptimization(ctx context.Context, arg database.CreateOptimizationParams) (database.Optimization, error)
	GetOptimization(ctx context.Context, id uuid.UUID) (database.Optimization, error)
	ListOptimizationsByUser(ctx context.Context, arg database.ListOptimizationsByUserParams) ([]database.Optimization, error)
	DeleteOptimizationForUser(ctx context.Context, arg database.DeleteOptimizationForUserParams) (int64, error)
	GetOptimizationStats(ctx context.Context, userID uuid.UUID) (database.GetOptimizationStatsRow, error)
	CountOptimizationsByMode(ctx context.Context, userID uuid.UUID) ([]database.CountOptimizationsByModeRow, error)

	RotateVerificationToken(ctx context.Context, arg database.CreateVerificationTokenParams) (database.VerificationToken, error)
	GetVerificationTokenByHash(ctx context.Context, tokenHash string) (database.VerificationToken, error)
	ConsumeTokenAndVerify(ctx context.Context, tokenID, userID uuid.UUID) error

	CreateContactMessage(ctx context.Context, arg database.CreateContactMessageParams) (uuid.UUID, error)
}

var _ Store = (*database.Store)(nil)
