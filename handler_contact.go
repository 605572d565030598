package main

import (
	"html"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/muhammadolammi/resumeoptimizer/internal/database"
	"go.uber.org/zap"
)

type contactRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=100"`
	Email   string `json:"email" binding:"required,email,max=254"`
	Subject string `json:"subject" binding:"max=200"`
	Message string `json:"message" binding:"required,min=10,max=5000"`
}

// sanitize decodes entities first so escaped markup is stripped along with
// literal markup. The result is HTML-safe.
func (apiConfig *ApiConfig) sanitize(s string) string {
	return strings.TrimSpace(apiConfig.Sanitizer.Sanitize(html.UnescapeString(s)))
}

func (apiConfig *ApiConfig) contactHandler(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithValidationError(c, err)
		return
	}

	name := apiConfig.sanitize(req.Name)
	subject := strings.Join(strings.Fields(apiConfig.sanitize(req.Subject)), " ")
	message := apiConfig.sanitize(req.Message)
	email := normalizeEmail(req.Email)
	if name == "" || len(message) < 10 {
		respondWithJSON(c, http.StatusBadRequest, gin.H{
			"error":   "invalid request",
			"details": []string{"message must contain readable text"},
		})
		return
	}

	var userID uuid.NullUUID
	if user, ok := currentUser(c); ok {
		userID = uuid.NullUUID{UUID: user.ID, Valid: true}
	}

	id, err := apiConfig.DB.CreateContactMessage(c.Request.Context(), database.CreateContactMessageParams{
		UserID:  userID,
		Name:    name,
		Email:   email,
		Subject: subject,
		Message: message,
	})
	if err != nil {
		apiConfig.Logger.Error("error saving contact message", zap.Error(err))
		respondWithError(c, http.StatusInternalServerError, "could not send message")
		return
	}

	if apiConfig.ContactInbox != "" {
		msg := contactNotificationEmail(apiConfig.ContactInbox, name, email, subject, message)
		if err := apiConfig.Mailer.Send(c.Request.Context(), msg); err != nil {
			apiConfig.Logger.Warn("contact notification not queued", zap.String("contact_id", id.String()), zap.Error(err))
		}
	}

	respondWithJSON(c, http.StatusOK, gin.H{
		"success": true,
		"id":      id,
	})
}
