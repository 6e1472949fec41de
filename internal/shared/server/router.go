package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"triage-backend/internal/analyses"
	googleauth "triage-backend/internal/auth"
	"triage-backend/internal/doctors"
	"triage-backend/internal/intake"
	"triage-backend/internal/shared/config"
	"triage-backend/internal/shared/metrics"
	"triage-backend/internal/shared/server/middleware"
	"triage-backend/internal/shared/server/respond"
	"triage-backend/internal/shared/storage/object"
	"triage-backend/internal/users"
)

// RouterDeps carries the wired handlers the router mounts.
type RouterDeps struct {
	Config          config.Config
	Store           object.ObjectStore
	GoogleAuth      *googleauth.GoogleService
	UserHandler     *users.Handler
	IntakeHandler   *intake.Handler
	AnalysisHandler *analyses.Handler
	DoctorHandler   *doctors.Handler
	DoctorGuard     gin.HandlerFunc
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(),
	)

	if deps.Store != nil {
		r.GET("/files/:bucket/*key", serveObject(deps.Store))
	}

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", metrics.Handler())

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(api)
	}
	if deps.IntakeHandler != nil {
		limited := api.Group("")
		limited.Use(middleware.RateLimit(submitRateLimit()))
		deps.IntakeHandler.RegisterRoutes(limited)
	}
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(api)
	}
	if deps.DoctorHandler != nil {
		deps.DoctorHandler.RegisterRoutes(api)
		if deps.DoctorGuard != nil {
			guarded := api.Group("")
			guarded.Use(deps.DoctorGuard)
			deps.DoctorHandler.RegisterDoctorRoutes(guarded)
		}
	}

	return r
}

// submitRateLimit bounds inference submissions per user. Inference calls are
// slow and expensive; the cap is generous for a human, tight for a loop.
func submitRateLimit() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"SUBMIT": {Rate: 3.0 / 60.0, Burst: 3},
		},
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method == http.MethodPost && c.FullPath() == "/api/v1/intake/submit" {
				return "SUBMIT"
			}
			return ""
		},
	}
}

// serveObject streams stored attachments so locally stored files resolve at
// the URLs handed out at upload time.
func serveObject(store object.ObjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		bucket := c.Param("bucket")
		key := c.Param("key")
		if len(key) > 0 && key[0] == '/' {
			key = key[1:]
		}
		rc, err := store.Open(c.Request.Context(), bucket, key)
		if err != nil {
			if errors.Is(err, object.ErrNotFound) {
				respond.Error(c, http.StatusNotFound, "not_found", "file not found", nil)
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to open file", nil)
			return
		}
		defer rc.Close()
		c.Status(http.StatusOK)
		io.Copy(c.Writer, rc)
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
