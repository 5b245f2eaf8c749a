// Package api wires together all HTTP routes for the license key backend.
//
// Route grouping philosophy:
//   - The validation route (/api/v1/validate) is intentionally
//     unauthenticated: installed applications must be able to validate their
//     key without holding any credential beyond the key itself.
//   - Admin routes (/api/v1/...) always require the master key or a session
//     token issued by /api/v1/auth/login. The auth middleware runs before any
//     handler, so an unauthorized request can never reach a mutating
//     operation.
package api

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	adminapi "github.com/ajinzmodzhp/admin-panel2/internal/api/admin"
	clientapi "github.com/ajinzmodzhp/admin-panel2/internal/api/client"
	"github.com/ajinzmodzhp/admin-panel2/internal/auth"
	"github.com/ajinzmodzhp/admin-panel2/internal/config"
	"github.com/ajinzmodzhp/admin-panel2/internal/db/repositories"
	"github.com/ajinzmodzhp/admin-panel2/internal/keygen"
	"github.com/ajinzmodzhp/admin-panel2/internal/licensing"
	"github.com/ajinzmodzhp/admin-panel2/internal/middleware"
)

// BackgroundServices holds resources that must be stopped during graceful
// shutdown. The caller (cmd/server) is responsible for calling Shutdown()
// after the HTTP server has drained in-flight requests.
type BackgroundServices struct {
	rateLimiters []*middleware.RateLimiter
}

// Shutdown stops all background goroutines.
func (bg *BackgroundServices) Shutdown() {
	for _, rl := range bg.rateLimiters {
		rl.Stop()
	}
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, database *sql.DB) (*gin.Engine, *BackgroundServices) {
	router := gin.New()
	router.Use(gin.Recovery())

	bg := &BackgroundServices{}

	// Repositories share one sqlx handle over the raw pool.
	sqlxDB := sqlx.NewDb(database, "postgres")
	keyRepo := repositories.NewKeyRepository(sqlxDB)
	eventRepo := repositories.NewEventRepository(sqlxDB)

	// Core services
	service := licensing.NewService(keyRepo, eventRepo)
	generator := keygen.NewGenerator(keyRepo, eventRepo, keygen.Config{
		Format: keygen.TokenFormat{
			Prefix:       cfg.Licensing.TokenPrefix,
			SuffixLength: cfg.Licensing.TokenSuffixLength,
			Alphabet:     cfg.Licensing.TokenAlphabet,
		},
		MaxBatch:      cfg.Licensing.MaxGenerate,
		MaxAttempts:   cfg.Licensing.MaxInsertAttempts,
		InvalidExpiry: keygen.InvalidExpiryPolicy(cfg.Licensing.InvalidExpiry),
	})

	// Auth primitives
	master := auth.NewMasterVerifier(cfg.Auth.MasterKey, cfg.Auth.MasterKeyHash)
	sessions := auth.NewSessionIssuer(cfg.Auth.SessionSecret, cfg.Auth.SessionTTL)

	// Global middleware: Security → RequestID → Metrics → CORS
	router.Use(middleware.SecurityHeadersMiddleware(middleware.APISecurityHeadersConfig()))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Security.CORS.AllowedOrigins, cfg.Security.CORS.AllowedMethods))

	// Rate limiters: a general one for API traffic and a strict one for the
	// master-key login endpoint.
	var apiLimit, loginLimit gin.HandlerFunc
	if cfg.Security.RateLimiting.Enabled {
		generalCfg := middleware.DefaultRateLimitConfig()
		if cfg.Security.RateLimiting.RequestsPerMinute > 0 {
			generalCfg.RequestsPerMinute = cfg.Security.RateLimiting.RequestsPerMinute
		}
		if cfg.Security.RateLimiting.Burst > 0 {
			generalCfg.BurstSize = cfg.Security.RateLimiting.Burst
		}

		general := middleware.NewRateLimiter(generalCfg)
		login := middleware.NewRateLimiter(middleware.LoginRateLimitConfig())
		bg.rateLimiters = append(bg.rateLimiters, general, login)

		apiLimit = middleware.RateLimitMiddleware(general)
		loginLimit = middleware.RateLimitMiddleware(login)
	} else {
		noop := func(c *gin.Context) { c.Next() }
		apiLimit, loginLimit = noop, noop
	}

	// Handlers
	authHandlers := adminapi.NewAuthHandlers(master, sessions)
	keyHandlers := adminapi.NewKeyHandlers(generator, service, keyRepo)
	statsHandlers := adminapi.NewStatsHandlers(service, cfg.Licensing.RecentEvents)
	validateHandlers := clientapi.NewValidateHandlers(service)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		if err := database.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		// Public, client-facing
		v1.POST("/validate", apiLimit, validateHandlers.ValidateHandler())

		// Login exchanges the master key for a session token
		v1.POST("/auth/login", loginLimit, authHandlers.LoginHandler())

		// Admin-gated
		adminGroup := v1.Group("")
		adminGroup.Use(apiLimit)
		adminGroup.Use(middleware.AdminAuthMiddleware(sessions, master))
		adminGroup.Use(middleware.AuditMiddleware())
		{
			adminGroup.POST("/keys/generate", keyHandlers.GenerateHandler())
			adminGroup.GET("/keys", keyHandlers.ListHandler())
			adminGroup.DELETE("/keys/:ref", keyHandlers.DeleteHandler())
			adminGroup.GET("/stats", statsHandlers.StatsHandler())
			adminGroup.GET("/events", statsHandlers.EventsHandler())
		}
	}

	return router, bg
}
