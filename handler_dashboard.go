package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/muhammadolammi/resumeoptimizer/internal/database"
	"go.uber.org/zap"
)

const recentOptimizations = 5

func (apiConfig *ApiConfig) dashboardStatsHandler(c *gin.Context) {
	user, _ := currentUser(c)
	ctx := c.Request.Context()

	totals, err := apiConfig.DB.GetOptimizationStats(ctx, user.ID)
	if err != nil {
		apiConfig.Logger.Error("error loading optimization stats", zap.Error(err))
		respondWithError(c, http.StatusInternalServerError, "could not load stats")
		return
	}
	byMode, err := apiConfig.DB.CountOptimizationsByMode(ctx, user.ID)
	if err != nil {
		apiConfig.Logger.Error("error counting optimizations by mode", zap.Error(err))
		respondWithError(c, http.StatusInternalServerError, "could not load stats")
		return
	}
	uploads, err := apiConfig.DB.CountResumesByUser(ctx, user.ID)
	if err != nil {
		apiConfig.Logger.Error("error counting uploads", zap.Error(err))
		respondWithError(c, http.StatusInternalServerError, "could not load stats")
		return
	}
	recent, err := apiConfig.DB.ListOptimizationsByUser(ctx, database.ListOptimizationsByUserParams{
		UserID: user.ID,
		Limit:  recentOptimizations,
	})
	if err != nil {
		apiConfig.Logger.Error("error listing recent optimizations", zap.Error(err))
		respondWithError(c, http.StatusInternalServerError, "could not load stats")
		return
	}

	stats := DashboardStats{
		TotalOptimizations:      totals.Total,
		OptimizationsLast30Days: totals.Last30Days,
		ByMode:                  map[string]int64{},
		TotalUploads:            uploads,
		EmailVerified:           user.EmailVerifiedAt.Valid,
		Recent:                  make([]OptimizationSummary, 0, len(recent)),
	}
	for _, m := range []OptimizationMode{ModeFull, ModeSEO, ModeEngagement, ModeClarity} {
		stats.ByMode[string(m)] = 0
	}
	for _, row := range byMode {
		stats.ByMode[row.Mode] = row.Count
	}
	if totals.LastCreatedAt.Valid {
		t := totals.LastCreatedAt.Time.UTC()
		stats.LastOptimizationAt = &t
	}
	for _, o := range recent {
		stats.Recent = append(stats.Recent, OptimizationSummary{
			ID:        o.ID,
			JobTitle:  o.JobTitle,
			Mode:      o.Mode,
			CreatedAt: o.CreatedAt,
		})
	}

	respondWithJSON(c, http.StatusOK, gin.H{
		"success": true,
		"stats":   stats,
	})
}
