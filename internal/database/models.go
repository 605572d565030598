package database

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type ContactMessage struct {
	ID        uuid.UUID
	UserID    uuid.NullUUID
	Name      string
	Email     string
	Subject   string
	Message   string
	CreatedAt time.Time
}

type Optimization struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	ResumeID       uuid.NullUUID
	JobTitle       string
	JobDescription string
	OriginalText   string
	OptimizedText  string
	Mode           string
	Model          string
	CreatedAt      time.Time
}

type Resume struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	OriginalFilename string
	Mime             string
	SizeBytes        int64
	StorageProvider  string
	ObjectKey        string
	ExtractedText    string
	CreatedAt        time.Time
}

type User struct {
	ID              uuid.UUID
	Name            string
	Email           string
	PasswordHash    string
	EmailVerifiedAt sql.NullTime
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type VerificationToken struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	TokenHash  string
	ExpiresAt  time.Time
	ConsumedAt sql.NullTime
	CreatedAt  time.Time
}
