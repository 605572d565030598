package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/muhammadolammi/resumeoptimizer/internal/database"
	"go.uber.org/zap"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

func (apiConfig *ApiConfig) listOptimizationsHandler(c *gin.Context) {
	user, _ := currentUser(c)

	limit := defaultPageLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPageLimit {
			respondWithError(c, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}
	offset := 0
	if raw := c.Query("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondWithError(c, http.StatusBadRequest, "offset must be a non-negative number")
			return
		}
		offset = n
	}

	items, err := apiConfig.DB.ListOptimizationsByUser(c.Request.Context(), database.ListOptimizationsByUserParams{
		UserID: user.ID,
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		apiConfig.Logger.Error("error listing optimizations", zap.Error(err))
		respondWithError(c, http.StatusInternalServerError, "could not load optimizations")
		return
	}

	respondWithJSON(c, http.StatusOK, gin.H{
		"success":       true,
		"optimizations": databaseOptimizationsToOptimizations(items),
	})
}

// loadOwnedOptimization writes the error response itself and reports false
// when the caller should stop.
func (apiConfig *ApiConfig) loadOwnedOptimization(c *gin.Context) (database.Optimization, bool) {
	user, _ := currentUser(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondWithError(c, http.StatusBadRequest, "invalid optimization id")
		return database.Optimization{}, false
	}
	record, err := apiConfig.DB.GetOptimization(c.Request.Context(), id)
	if err != nil {
		if database.IsNotFound(err) {
			respondWithError(c, http.StatusNotFound, "optimization not found")
			return database.Optimization{}, false
		}
		apiConfig.Logger.Error("error loading optimization", zap.Error(err))
		respondWithError(c, http.StatusInternalServerError, "could not load optimization")
		return database.Optimization{}, false
	}
	if record.UserID != user.ID {
		respondWithError(c, http.StatusForbidden, "forbidden")
		return database.Optimization{}, false
	}
	return record, true
}

func (apiConfig *ApiConfig) getOptimizationHandler(c *gin.Context) {
	record, ok := apiConfig.loadOwnedOptimization(c)
	if !ok {
		return
	}
	respondWithJSON(c, http.StatusOK, gin.H{
		"success":      true,
		"optimization": databaseOptimizationToOptimization(record),
	})
}

func (apiConfig *ApiConfig) deleteOptimizationHandler(c *gin.Context) {
	record, ok := apiConfig.loadOwnedOptimization(c)
	if !ok {
		return
	}
	n, err := apiConfig.DB.DeleteOptimizationForUser(c.Request.Context(), database.DeleteOptimizationForUserParams{
		ID:     record.ID,
		UserID: record.UserID,
	})
	if err != nil {
		apiConfig.Logger.Error("error deleting optimization", zap.Error(err))
		respondWithError(c, http.StatusInternalServerError, "could not delete optimization")
		return
	}
	if n == 0 {
		respondWithError(c, http.StatusNotFound, "optimization not found")
		return
	}
	respondWithJSON(c, http.StatusOK, gin.H{"success": true})
}
