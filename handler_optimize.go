package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/muhammadolammi/resumeoptimizer/internal/database"
	"go.uber.org/zap"
)

type optimizeRequest struct {
	ResumeText     string `json:"resumeText" binding:"omitempty,min=50,max=50000"`
	ResumeID       string `json:"resumeId" binding:"omitempty,uuid"`
	JobTitle       string `json:"jobTitle" binding:"max=200"`
	JobDescription string `json:"jobDescription" binding:"required,min=20,max=20000"`
	Mode           string `json:"mode" binding:"omitempty,oneof=full seo engagement clarity"`
}

func (apiConfig *ApiConfig) optimizeHandler(c *gin.Context) {
	user, _ := currentUser(c)
	ctx := c.Request.Context()

	if !user.EmailVerifiedAt.Valid {
		respondWithError(c, http.StatusForbidden, "verify your email address before optimizing")
		return
	}

	var req optimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithValidationError(c, err)
		return
	}
	hasText := strings.TrimSpace(req.ResumeText) != ""
	hasID := req.ResumeID != ""
	if hasText == hasID {
		respondWithJSON(c, http.StatusBadRequest, gin.H{
			"error":   "invalid request",
			"details": []string{"provide exactly one of resumeText or resumeId"},
		})
		return
	}
	mode, _ := parseMode(req.Mode)

	resumeText := req.ResumeText
	var resumeID uuid.NullUUID
	if hasID {
		id, _ := uuid.Parse(req.ResumeID)
		resume, err := apiConfig.DB.GetResumeForUser(ctx, database.GetResumeForUserParams{ID: id, UserID: user.ID})
		if err != nil {
			if database.IsNotFound(err) {
				respondWithError(c, http.StatusNotFound, "resume not found")
				return
			}
			apiConfig.Logger.Error("error loading resume", zap.Error(err))
			respondWithError(c, http.StatusInternalServerError, "could not load resume")
			return
		}
		resumeText = resume.ExtractedText
		resumeID = uuid.NullUUID{UUID: resume.ID, Valid: true}
	}

	input := OptimizeInput{
		UserID:         user.ID.String(),
		ResumeText:     resumeText,
		JobTitle:       strings.TrimSpace(req.JobTitle),
		JobDescription: req.JobDescription,
		Mode:           mode,
	}

	start := time.Now()
	result, err := apiConfig.Optimizer.Optimize(ctx, input)
	apiConfig.Metrics.ObserveLLM(time.Since(start))
	if err != nil {
		apiConfig.Logger.Error("optimization failed",
			zap.String("user_id", user.ID.String()), zap.String("mode", string(mode)), zap.Error(err))
		apiConfig.Metrics.ObserveOptimization(string(mode), optimizationStatusFailed)
		apiConfig.publishUpdate(ctx, OptimizationUpdate{
			UserID:  user.ID,
			Status:  optimizationStatusFailed,
			Mode:    string(mode),
			Message: "the language model could not optimize this resume",
		})
		respondWithError(c, http.StatusBadGateway, "the optimization service is unavailable, try again later")
		return
	}

	record, err := apiConfig.DB.CreateOptimization(ctx, database.CreateOptimizationParams{
		UserID:         user.ID,
		ResumeID:       resumeID,
		JobTitle:       input.JobTitle,
		JobDescription: input.JobDescription,
		OriginalText:   resumeText,
		OptimizedText:  result.Text,
		Mode:           string(mode),
		Model:          result.Model,
	})
	if err != nil {
		apiConfig.Logger.Error("error saving optimization", zap.Error(err))
		respondWithError(c, http.StatusInternalServerError, "could not save the optimization")
		return
	}
	apiConfig.Metrics.ObserveOptimization(string(mode), optimizationStatusCompleted)
	apiConfig.publishUpdate(ctx, OptimizationUpdate{
		OptimizationID: &record.ID,
		UserID:         user.ID,
		Status:         optimizationStatusCompleted,
		Mode:           string(mode),
		Message:        "optimization completed",
	})

	keywords := result.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	respondWithJSON(c, http.StatusOK, gin.H{
		"success":      true,
		"optimization": databaseOptimizationToOptimization(record),
		"keywords":     keywords,
	})
}

func (apiConfig *ApiConfig) publishUpdate(ctx context.Context, update OptimizationUpdate) {
	update.Timestamp = time.Now().UTC()
	if err := apiConfig.Events.PublishOptimizationUpdate(ctx, update); err != nil {
		apiConfig.Logger.Warn("error publishing optimization update",
			zap.String("user_id", update.UserID.String()), zap.String("status", update.Status), zap.Error(err))
	}
}
