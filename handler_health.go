package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (apiConfig *ApiConfig) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	dbState := "up"
	if err := apiConfig.DB.Ping(ctx); err != nil {
		apiConfig.Logger.Error("database ping failed", zap.Error(err))
		status = http.StatusServiceUnavailable
		dbState = "down"
	}

	respondWithJSON(c, status, gin.H{
		"success":   status == http.StatusOK,
		"status":    "ok",
		"database":  dbState,
		"timestamp": time.Now().UTC(),
	})
}
