package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
)

func (apiConfig *ApiConfig) Router(corsOrigins []string) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(ginzap.Ginzap(apiConfig.Logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(apiConfig.Logger, true))
	if apiConfig.Metrics != nil {
		router.Use(apiConfig.Metrics.Middleware())
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.NoRoute(func(c *gin.Context) {
		respondWithError(c, http.StatusNotFound, "not found")
	})
	router.NoMethod(func(c *gin.Context) {
		respondWithError(c, http.StatusMethodNotAllowed, "method not allowed")
	})

	if apiConfig.Metrics != nil {
		router.GET("/metrics", gin.WrapH(apiConfig.Metrics.Handler()))
	}

	api := router.Group("/api")
	api.GET("/health", apiConfig.healthHandler)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", apiConfig.rateLimit("register", 5, time.Hour, byClientIP), apiConfig.registerHandler)
	authGroup.POST("/callback/credentials", apiConfig.rateLimit("login", 10, 15*time.Minute, byClientIP), apiConfig.credentialsLoginHandler)
	authGroup.GET("/session", apiConfig.optionalAuth(), apiConfig.sessionHandler)
	authGroup.POST("/signout", apiConfig.signoutHandler)

	api.POST("/contact", apiConfig.optionalAuth(), apiConfig.rateLimit("contact", 5, time.Hour, byClientIP), apiConfig.contactHandler)
	api.GET("/verification/verify", apiConfig.verifyEmailHandler)
	api.POST("/verification/verify", apiConfig.verifyEmailHandler)

	protected := api.Group("")
	protected.Use(apiConfig.requireAuth())
	protected.PUT("/settings", apiConfig.updateSettingsHandler)
	protected.POST("/upload", apiConfig.uploadHandler)
	protected.GET("/resumes/:id/file", apiConfig.resumeFileHandler)
	protected.POST("/optimize", apiConfig.rateLimit("optimize", 20, time.Hour, byUser), apiConfig.optimizeHandler)
	protected.GET("/optimizations", apiConfig.listOptimizationsHandler)
	protected.GET("/optimizations/:id", apiConfig.getOptimizationHandler)
	protected.DELETE("/optimizations/:id", apiConfig.deleteOptimizationHandler)
	protected.GET("/verification/status", apiConfig.verificationStatusHandler)
	protected.POST("/verification/send", apiConfig.rateLimit("verification", 3, 15*time.Minute, byUser), apiConfig.sendVerificationHandler)
	protected.GET("/dashboard/stats", apiConfig.dashboardStatsHandler)

	return router
}
