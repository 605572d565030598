package main

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/muhammadolammi/resumeoptimizer/internal/auth"
	"github.com/muhammadolammi/resumeoptimizer/internal/database"
	"go.uber.org/zap"
)

var errMailNotQueued = errors.New("verification email not queued")

var timeNow = time.Now

type verifyRequest struct {
	Token string `json:"token" form:"token"`
}

func (apiConfig *ApiConfig) verificationStatusHandler(c *gin.Context) {
	user, _ := currentUser(c)
	respondWithJSON(c, http.StatusOK, gin.H{
		"success":  true,
		"verified": user.EmailVerifiedAt.Valid,
		"email":    user.Email,
	})
}

func (apiConfig *ApiConfig) sendVerificationHandler(c *gin.Context) {
	user, _ := currentUser(c)
	if user.EmailVerifiedAt.Valid {
		respondWithError(c, http.StatusBadRequest, "email is already verified")
		return
	}

	token, err := apiConfig.issueVerification(c.Request.Context(), user)
	if err != nil {
		apiConfig.Logger.Error("error issuing verification token",
			zap.String("user_id", user.ID.String()), zap.Error(err))
		respondWithError(c, http.StatusInternalServerError, "could not send verification email")
		return
	}

	respondWithJSON(c, http.StatusOK, gin.H{
		"success":   true,
		"expiresAt": token.ExpiresAt.UTC(),
	})
}

func (apiConfig *ApiConfig) verifyEmailHandler(c *gin.Context) {
	var req verifyRequest
	if c.Request.Method == http.MethodPost && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithValidationError(c, err)
			return
		}
	}
	if req.Token == "" {
		req.Token = c.Query("token")
	}
	raw := strings.TrimSpace(req.Token)
	if raw == "" {
		respondWithError(c, http.StatusBadRequest, "token is required")
		return
	}

	ctx := c.Request.Context()
	token, err := apiConfig.DB.GetVerificationTokenByHash(ctx, auth.HashToken(raw))
	if err != nil {
		if database.IsNotFound(err) {
			respondWithError(c, http.StatusBadRequest, "invalid or expired token")
			return
		}
		apiConfig.Logger.Error("error loading verification token", zap.Error(err))
		respondWithError(c, http.StatusInternalServerError, "could not verify email")
		return
	}
	if token.ConsumedAt.Valid || !timeNow().Before(token.ExpiresAt) {
		respondWithError(c, http.StatusBadRequest, "invalid or expired token")
		return
	}

	if err := apiConfig.DB.ConsumeTokenAndVerify(ctx, token.ID, token.UserID); err != nil {
		if errors.Is(err, database.ErrTokenConsumed) {
			respondWithError(c, http.StatusBadRequest, "invalid or expired token")
			return
		}
		apiConfig.Logger.Error("error consuming verification token", zap.Error(err))
		respondWithError(c, http.StatusInternalServerError, "could not verify email")
		return
	}

	respondWithJSON(c, http.StatusOK, gin.H{"success": true})
}
