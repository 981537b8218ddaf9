// Command server runs the card issuing API.
//
// Startup order: env → config → logging → database (+migrations) → tracing
// → webhook dispatcher → HTTP router → server. Shutdown reverses it: the
// HTTP listener drains first, then the dispatcher closes (queued webhook
// events that have not been picked up by a worker are dropped), then the
// trace exporter flushes.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/cardvault/card-vault-backend/internal/config"
	httpapi "github.com/cardvault/card-vault-backend/internal/http"
	"github.com/cardvault/card-vault-backend/internal/notify"
	"github.com/cardvault/card-vault-backend/internal/observability"
	"github.com/cardvault/card-vault-backend/internal/repo"
	"github.com/cardvault/card-vault-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags.
var version = "dev"

// @title       Card Vault API
// @version     1.0
// @description Single-use card issuing API: atomic withdrawal, status resolution, webhook notifications, and inventory administration.
// @BasePath    /api/v1
//
// @securityDefinitions.apikey ApiKeyAuth
// @in   header
// @name X-API-Key
func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	gin.SetMode(cfg.GinMode)

	db, err := openDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database open failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	ctx := context.Background()
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	dispatcher := notify.NewDispatcher(db, notify.Options{
		Workers:         cfg.Webhook.Workers,
		QueueSize:       cfg.Webhook.QueueSize,
		Timeout:         cfg.Webhook.Timeout,
		EgressPerSecond: cfg.Webhook.EgressPerSecond,
	})

	r := gin.New()
	httpapi.RegisterRoutes(r, db, dispatcher, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("driver", cfg.DBDriver).
			Str("version", version).
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}

	// In-flight deliveries finish; events still queued are dropped.
	dispatcher.Close()

	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown failed")
	}

	log.Info().Msg("server stopped")
}

func openDB(cfg config.Config) (*gorm.DB, error) {
	if cfg.DBDriver == "mysql" {
		return repo.Open("mysql", cfg.DBDSN)
	}
	return repo.Open("sqlite", cfg.DBPath)
}
