package main

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/muhammadolammi/resumeoptimizer/internal/auth"
	"github.com/muhammadolammi/resumeoptimizer/internal/database"
	"go.uber.org/zap"
)

const (
	sessionCookieName = "session_token"
	ctxUserKey        = "user"
	ctxClaimsKey      = "claims"
)

func sessionTokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := c.Cookie(sessionCookieName); err == nil {
		return cookie
	}
	return ""
}

// loadSessionUser resolves the request's session to a user row. ok is false
// when there is no valid session or the user is gone.
func (apiConfig *ApiConfig) loadSessionUser(c *gin.Context) (database.User, *auth.Claims, bool) {
	token := sessionTokenFromRequest(c)
	if token == "" {
		return database.User{}, nil, false
	}
	claims, err := auth.ParseSessionToken(token, apiConfig.JWTSecret)
	if err != nil {
		return database.User{}, nil, false
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return database.User{}, nil, false
	}
	user, err := apiConfig.DB.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if !database.IsNotFound(err) {
			apiConfig.Logger.Error("error loading session user", zap.Error(err))
		}
		return database.User{}, nil, false
	}
	return user, claims, true
}

func (apiConfig *ApiConfig) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, claims, ok := apiConfig.loadSessionUser(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, "unauthorized")
			return
		}
		c.Set(ctxUserKey, user)
		c.Set(ctxClaimsKey, claims)
		c.Next()
	}
}

func (apiConfig *ApiConfig) optionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, claims, ok := apiConfig.loadSessionUser(c); ok {
			c.Set(ctxUserKey, user)
			c.Set(ctxClaimsKey, claims)
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) (database.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return database.User{}, false
	}
	user, ok := v.(database.User)
	return user, ok
}

func currentClaims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ctxClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

func byClientIP(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

func byUser(c *gin.Context) string {
	if user, ok := currentUser(c); ok {
		return "user:" + user.ID.String()
	}
	return byClientIP(c)
}

// rateLimit allows limit hits per window for each key. Limiter errors let
// the request through.
func (apiConfig *ApiConfig) rateLimit(name string, limit int, window time.Duration, key func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := apiConfig.Limiter.Allow(c.Request.Context(), name+":"+key(c), limit, window)
		if err != nil {
			apiConfig.Logger.Warn("rate limiter unavailable", zap.String("limit", name), zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			respondWithError(c, http.StatusTooManyRequests, "too many requests")
			return
		}
		c.Next()
	}
}
