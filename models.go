package main

import (
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/muhammadolammi/resumeoptimizer/internal/database"
	"github.com/muhammadolammi/resumeoptimizer/internal/metrics"
	"github.com/muhammadolammi/resumeoptimizer/internal/ratelimit"
	"go.uber.org/zap"
)

type ApiConfig struct {
	DB                   Store
	Optimizer            Optimizer
	Storage              ObjectStorage
	Mailer               Mailer
	Events               EventPublisher
	Limiter              ratelimit.Limiter
	Metrics              *metrics.Metrics
	Logger               *zap.Logger
	Sanitizer            *bluemonday.Policy
	JWTSecret            []byte
	SessionTTL           time.Duration
	VerificationTokenTTL time.Duration
	MaxUploadBytes       int64
	AppURL               string
	ContactInbox         string
	SecureCookies        bool
}

type User struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Resume struct {
	ID        uuid.UUID `json:"id"`
	Filename  string    `json:"filename"`
	Mime      string    `json:"mime"`
	Size      int64     `json:"size"`
	Stored    bool      `json:"stored"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type Optimization struct {
	ID             uuid.UUID  `json:"id"`
	ResumeID       *uuid.UUID `json:"resumeId,omitempty"`
	JobTitle       string     `json:"jobTitle"`
	JobDescription string     `json:"jobDescription"`
	OriginalText   string     `json:"originalText"`
	OptimizedText  string     `json:"optimizedText"`
	Mode           string     `json:"mode"`
	Model          string     `json:"model"`
	CreatedAt      time.Time  `json:"createdAt"`
}

type OptimizationSummary struct {
	ID        uuid.UUID `json:"id"`
	JobTitle  string    `json:"jobTitle"`
	Mode      string    `json:"mode"`
	CreatedAt time.Time `json:"createdAt"`
}

type DashboardStats struct {
	TotalOptimizations      int64                 `json:"totalOptimizations"`
	OptimizationsLast30Days int64                 `json:"optimizationsLast30Days"`
	ByMode                  map[string]int64      `json:"byMode"`
	TotalUploads            int64                 `json:"totalUploads"`
	LastOptimizationAt      *time.Time            `json:"lastOptimizationAt"`
	EmailVerified           bool                  `json:"emailVerified"`
	Recent                  []OptimizationSummary `json:"recent"`
}

func databaseUserToUser(u database.User) User {
	return User{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		EmailVerified: u.EmailVerifiedAt.Valid,
		CreatedAt:     u.CreatedAt,
	}
}

func databaseResumeToResume(r database.Resume) Resume {
	return Resume{
		ID:        r.ID,
		Filename:  r.OriginalFilename,
		Mime:      r.Mime,
		Size:      r.SizeBytes,
		Stored:    r.StorageProvider != storageProviderNone,
		Text:      r.ExtractedText,
		CreatedAt: r.CreatedAt,
	}
}

func databaseOptimizationToOptimization(o database.Optimization) Optimization {
	out := Optimization{
		ID:             o.ID,
		JobTitle:       o.JobTitle,
		JobDescription: o.JobDescription,
		OriginalText:   o.OriginalText,
		OptimizedText:  o.OptimizedText,
		Mode:           o.Mode,
		Model:          o.Model,
		CreatedAt:      o.CreatedAt,
	}
	if o.ResumeID.Valid {
		id := o.ResumeID.UUID
		out.ResumeID = &id
	}
	return out
}

func databaseOptimizationsToOptimizations(items []database.Optimization) []Optimization {
	out := make([]Optimization, 0, len(items))
	for _, o := range items {
		out = append(out, databaseOptimizationToOptimization(o))
	}
	return out
}
