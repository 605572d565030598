package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/muhammadolammi/resumeoptimizer/internal/auth"
	"github.com/muhammadolammi/resumeoptimizer/internal/database"
	"go.uber.org/zap"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (apiConfig *ApiConfig) registerHandler(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithValidationError(c, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		apiConfig.Logger.Error("error hashing password", zap.Error(err))
		respondWithError(c, http.StatusInternalServerError, "could not create account")
		return
	}

	dbUser, err := apiConfig.DB.CreateUser(c.Request.Context(), database.CreateUserParams{
		Name:         req.Name,
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			respondWithError(c, http.StatusConflict, "an account with this email already exists")
			return
		}
		apiConfig.Logger.Error("error creating user", zap.Error(err))
		respondWithError(c, http.StatusInternalServerError, "could not create account")
		return
	}

	if _, err := apiConfig.issueVerification(c.Request.Context(), dbUser); err != nil {
		apiConfig.Logger.Warn("verification email not queued after registration",
			zap.String("user_id", dbUser.ID.String()), zap.Error(err))
	}

	respondWithJSON(c, http.StatusOK, gin.H{
		"success": true,
		"user":    databaseUserToUser(dbUser),
	})
}

func (apiConfig *ApiConfig) credentialsLoginHandler(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithValidationError(c, err)
		return
	}

	dbUser, err := apiConfig.DB.GetUserByEmail(c.Request.Context(), normalizeEmail(req.Email))
	if err != nil {
		if !database.IsNotFound(err) {
			apiConfig.Logger.Error("error loading user", zap.Error(err))
			respondWithError(c, http.StatusInternalServerError, "could not sign in")
			return
		}
		respondWithError(c, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}
	if err := auth.CheckPassword(dbUser.PasswordHash, req.Password); err != nil {
		respondWithError(c, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}

	token, expires, err := auth.GenerateSessionToken(dbUser.ID.String(), dbUser.Email, apiConfig.JWTSecret, apiConfig.SessionTTL)
	if err != nil {
		apiConfig.Logger.Error("error signing session token", zap.Error(err))
		respondWithError(c, http.StatusInternalServerError, "could not sign in")
		return
	}

	apiConfig.setSessionCookie(c, token, int(apiConfig.SessionTTL.Seconds()))
	respondWithJSON(c, http.StatusOK, gin.H{
		"success": true,
		"user":    databaseUserToUser(dbUser),
		"token":   token,
		"expires": expires.UTC(),
	})
}

func (apiConfig *ApiConfig) sessionHandler(c *gin.Context) {
	user, ok := currentUser(c)
	claims, _ := currentClaims(c)
	if !ok || claims == nil {
		respondWithJSON(c, http.StatusOK, gin.H{})
		return
	}
	respondWithJSON(c, http.StatusOK, gin.H{
		"user":    databaseUserToUser(user),
		"expires": claims.ExpiresAt.Time.UTC(),
	})
}

func (apiConfig *ApiConfig) signoutHandler(c *gin.Context) {
	apiConfig.setSessionCookie(c, "", -1)
	respondWithJSON(c, http.StatusOK, gin.H{"success": true})
}

func (apiConfig *ApiConfig) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, token, maxAge, "/", "", apiConfig.SecureCookies, true)
}

// issueVerification replaces the user's pending tokens with a fresh one and
// queues the email carrying it.
func (apiConfig *ApiConfig) issueVerification(ctx context.Context, user database.User) (database.VerificationToken, error) {
	raw, hash, err := auth.NewVerificationToken()
	if err != nil {
		return database.VerificationToken{}, err
	}
	token, err := apiConfig.DB.RotateVerificationToken(ctx, database.CreateVerificationTokenParams{
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: timeNow().Add(apiConfig.VerificationTokenTTL),
	})
	if err != nil {
		return database.VerificationToken{}, err
	}
	if err := apiConfig.Mailer.Send(ctx, verificationEmail(apiConfig.AppURL, databaseUserToUser(user), raw)); err != nil {
		return database.VerificationToken{}, errors.Join(errMailNotQueued, err)
	}
	return token, nil
}
