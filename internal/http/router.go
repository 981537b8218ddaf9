// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// circuit breaking, rate limiting, authentication, CORS, and security headers.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/cardvault/card-vault-backend/docs"
	"github.com/cardvault/card-vault-backend/internal/config"
	"github.com/cardvault/card-vault-backend/internal/http/handlers"
	"github.com/cardvault/card-vault-backend/internal/http/middleware"
	"github.com/cardvault/card-vault-backend/internal/repo"
	"github.com/cardvault/card-vault-backend/internal/services"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), resilience (circuit
// breaker, fixed-window rate limiting), authentication, CORS and security
// headers, health and metrics endpoints, and then mounts the versioned API
// under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Body size limiter, gzip
//  5. Metrics
//  6. Circuit breaker (outermost resilience layer: sees final statuses,
//     and its 503s are classified before rate limiting or auth run)
//  7. Recovery: inside the breaker, so a panic becomes a 500 the breaker
//     counts as a failure
//  8. Per-route tiers: IP rate limit → auth → per-credential rate limit
//  9. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, notifier services.Notifier, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))

	// 4) Global body size limit (1 MiB) and response compression
	r.Use(limitBody(1 << 20))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 5) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 6) Per-route circuit breaker
	breaker := middleware.NewBreakerRegistry(middleware.BreakerOptions{
		FailureThreshold:  cfg.Breaker.FailureThreshold,
		ResetTimeout:      cfg.Breaker.ResetTimeout,
		HalfOpenSuccesses: cfg.Breaker.HalfOpenSuccesses,
	})
	r.Use(breaker.Handler())

	// 7) Panic recovery to JSON 500 (with request id). Registered inside the
	// breaker so the resulting 500 reaches its failure classification.
	r.Use(middleware.Recovery())

	// 8) Fixed-window rate limiter; the engine shares one window store so
	// the IP tier and credential tier stay consistent.
	rl := middleware.NewRateLimiter(cfg.RateWindow, cfg.RateDefaultLimit)

	// 9) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.HeaderAPIKey, middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "Retry-After"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.HeaderAPIKey, middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "Retry-After"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      true, // card codes must never land in shared caches
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Dependency injection: services ← db/notifier
	withdrawSvc := &services.WithdrawService{DB: db, Notifier: notifier}
	statusSvc := &services.StatusService{DB: db, PollInterval: cfg.PollInterval, MaxWait: cfg.PollMaxWait}
	cardSvc := &services.CardService{DB: db}
	webhookSvc := &services.WebhookService{DB: db}
	keySvc := &services.APIKeyService{DB: db}

	h := handlers.New(withdrawSvc, statusSvc, cardSvc)
	wh := handlers.NewWebhookHandlers(webhookSvc)
	admin := handlers.NewAdminHandlers(cardSvc, keySvc, db)

	// Liveness/health (unauthenticated, IP-limited)
	r.GET("/health", rl.ByIP(), admin.Health)

	// Swagger UI (opt-in)
	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	touch := func(ctx context.Context, keyID string, at time.Time) {
		_ = repo.TouchAPIKeyLastUsed(ctx, db, keyID, at)
	}

	// Versioned API. The IP tier runs before auth so unauthenticated floods
	// are throttled without paying a key lookup per request; the credential
	// tier runs after auth to apply each key's own ceiling.
	api := groupWithPrefix(r, cfg.APIBasePath)
	api.Use(rl.ByIP())
	api.Use(middleware.RequireAPIKey(keySvc, touch))
	api.Use(rl.ByCredential())
	{
		// Withdrawals
		api.POST("/withdraw",
			middleware.IdempotencyValidator(middleware.IdempotencyOptions{MaxLen: 200}),
			h.Withdraw)
		api.GET("/status/:transactionId", h.GetStatus)
		api.GET("/status/:transactionId/wait", h.WaitStatus)

		// Inventory
		api.GET("/cards", h.ListCards)
		api.GET("/cards/categories", h.ListCategories)

		// Webhook subscriptions
		api.POST("/webhooks", wh.Subscribe)
		api.GET("/webhooks", wh.ListSubscriptions)
		api.DELETE("/webhooks/:id", wh.Unsubscribe)

		// Operator surface
		api.POST("/generate/keys", admin.GenerateKeys)
		api.POST("/generate/write", admin.WriteCodes)
		api.POST("/generate/check", admin.CheckCodes)
		api.GET("/stats", admin.Stats)
		api.GET("/settings", admin.GetSettings)
		api.PUT("/settings", admin.UpdateSettings)
		api.POST("/admin/api-keys", admin.IssueAPIKey)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
