package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/muhammadolammi/resumeoptimizer/internal/auth"
	"github.com/muhammadolammi/resumeoptimizer/internal/database"
	"go.uber.org/zap"
)

type settingsRequest struct {
	Name            *string `json:"name" binding:"omitempty,min=1,max=100"`
	Email           *string `json:"email" binding:"omitempty,email,max=254"`
	CurrentPassword *string `json:"currentPassword"`
	NewPassword     *string `json:"newPassword" binding:"omitempty,min=8,max=128"`
}

func (apiConfig *ApiConfig) updateSettingsHandler(c *gin.Context) {
	user, _ := currentUser(c)
	ctx := c.Request.Context()

	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithValidationError(c, err)
		return
	}
	if req.Name == nil && req.Email == nil && req.NewPassword == nil {
		respondWithError(c, http.StatusBadRequest, "nothing to update")
		return
	}

	if req.NewPassword != nil {
		if req.CurrentPassword == nil || *req.CurrentPassword == "" {
			respondWithError(c, http.StatusBadRequest, "current password is required to set a new password")
			return
		}
		if err := auth.CheckPassword(user.PasswordHash, *req.CurrentPassword); err != nil {
			respondWithError(c, http.StatusUnauthorized, "current password is incorrect")
			return
		}
	}

	name := user.Name
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
	}
	email := user.Email
	if req.Email != nil {
		email = normalizeEmail(*req.Email)
	}

	if email != user.Email {
		existing, err := apiConfig.DB.GetUserByEmail(ctx, email)
		switch {
		case err == nil && existing.ID != user.ID:
			respondWithError(c, http.StatusConflict, "an account with this email already exists")
			return
		case err != nil && !database.IsNotFound(err):
			apiConfig.Logger.Error("error checking email availability", zap.Error(err))
			respondWithError(c, http.StatusInternalServerError, "could not update settings")
			return
		}
	}

	updated := user
	if name != user.Name || email != user.Email {
		var err error
		updated, err = apiConfig.DB.UpdateUserProfile(ctx, database.UpdateUserProfileParams{
			ID:    user.ID,
			Name:  name,
			Email: email,
		})
		if err != nil {
			if database.IsUniqueViolation(err) {
				respondWithError(c, http.StatusConflict, "an account with this email already exists")
				return
			}
			apiConfig.Logger.Error("error updating profile", zap.Error(err))
			respondWithError(c, http.StatusInternalServerError, "could not update settings")
			return
		}
	}

	if req.NewPassword != nil {
		hash, err := auth.HashPassword(*req.NewPassword)
		if err != nil {
			apiConfig.Logger.Error("error hashing password", zap.Error(err))
			respondWithError(c, http.StatusInternalServerError, "could not update settings")
			return
		}
		if err := apiConfig.DB.UpdateUserPassword(ctx, database.UpdateUserPasswordParams{
			ID:           user.ID,
			PasswordHash: hash,
		}); err != nil {
			apiConfig.Logger.Error("error updating password", zap.Error(err))
			respondWithError(c, http.StatusInternalServerError, "could not update settings")
			return
		}
	}

	respondWithJSON(c, http.StatusOK, gin.H{
		"success": true,
		"user":    databaseUserToUser(updated),
	})
}
