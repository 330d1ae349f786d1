package router

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/contractor-ledger/internal/api/domain"
	"github.com/cuongbtq/contractor-ledger/internal/api/handler"
)

// ProfileHeader carries the acting profile id on profile-scoped routes.
const ProfileHeader = "profile_id"

// LoggerMiddleware logs HTTP requests with slog
func LoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		attrs := []any{
			slog.Int("status", c.Writer.Status()),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.String("ip", c.ClientIP()),
			slog.Duration("latency", time.Since(start)),
			slog.Int("body_size", c.Writer.Size()),
		}
		if profile, ok := handler.ProfileFromContext(c); ok {
			attrs = append(attrs, slog.Int64("profile_id", profile.ID))
		}
		logger.Info("HTTP Request", attrs...)

		for _, e := range c.Errors {
			logger.Error("Request error",
				slog.String("error", e.Error()),
				slog.Uint64("type", uint64(e.Type)),
			)
		}
	}
}

// CORSMiddleware allows the configured origins; none or "*" allows any origin.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", ProfileHeader},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
	}
	return cors.New(cfg)
}

// RequireProfile loads the profile named by the profile_id header and rejects
// the request with 401 when it is missing or unknown.
func RequireProfile(profiles handler.ProfileStore, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(ProfileHeader))
		id, err := strconv.ParseInt(raw, 10, 64)
		if raw == "" || err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		profile, err := profiles.GetProfile(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
			logger.Error("Failed to resolve profile",
				slog.Int64("profile_id", id),
				slog.Any("error", err),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}

		handler.SetProfile(c, profile)
		c.Next()
	}
}
