// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, database selection, resilience knobs
// (circuit breaker, rate limiting), webhook dispatch, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "card-vault-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// BreakerConfig tunes the per-route circuit breaker.
type BreakerConfig struct {
	FailureThreshold  int           // consecutive-ish failures to trip open
	ResetTimeout      time.Duration // open → half-open probe delay
	HalfOpenSuccesses int           // half-open successes to close
}

// WebhookConfig tunes the asynchronous delivery dispatcher.
type WebhookConfig struct {
	Workers         int           // delivery worker goroutines
	QueueSize       int           // bounded event queue; overflow drops
	Timeout         time.Duration // per-delivery HTTP timeout
	EgressPerSecond float64       // outbound pacing; 0 disables
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 45s (must exceed the long-poll window)
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Database
	DBDriver string // sqlite|mysql
	DBPath   string // SQLite path (DBDriver=sqlite)
	DBDSN    string // MySQL DSN (DBDriver=mysql)

	// Rate limiting (fixed window)
	RateWindow       time.Duration // window length
	RateDefaultLimit int           // per-IP / fallback ceiling per window

	// Resilience
	Breaker BreakerConfig

	// Webhook dispatch
	Webhook WebhookConfig

	// Status long-polling
	PollInterval time.Duration // re-check cadence while waiting
	PollMaxWait  time.Duration // upper bound a /wait request is held

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 45*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// Database
		DBDriver: strings.ToLower(getenv("DB_DRIVER", "sqlite")),
		DBPath:   getenv("DB_PATH", "cards.db"),
		DBDSN:    getenv("DB_DSN", ""),

		// Rate limiting
		RateWindow:       getdur("RATE_WINDOW", time.Minute),
		RateDefaultLimit: getint("RATE_DEFAULT_LIMIT", 100),

		// Resilience
		Breaker: BreakerConfig{
			FailureThreshold:  getint("BREAKER_FAILURE_THRESHOLD", 10),
			ResetTimeout:      getdur("BREAKER_RESET_TIMEOUT", 30*time.Second),
			HalfOpenSuccesses: getint("BREAKER_HALF_OPEN_SUCCESSES", 3),
		},

		// Webhook dispatch
		Webhook: WebhookConfig{
			Workers:         getint("WEBHOOK_WORKERS", 8),
			QueueSize:       getint("WEBHOOK_QUEUE_SIZE", 256),
			Timeout:         getdur("WEBHOOK_TIMEOUT", 10*time.Second),
			EgressPerSecond: getfloat("WEBHOOK_EGRESS_PER_SECOND", 0),
		},

		// Status long-polling
		PollInterval: getdur("POLL_INTERVAL", 5*time.Second),
		PollMaxWait:  getdur("POLL_MAX_WAIT", 30*time.Second),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "card-vault-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	switch cfg.DBDriver {
	case "sqlite":
		if strings.TrimSpace(cfg.DBPath) == "" {
			return cfg, errors.New("DB_PATH must not be empty when DB_DRIVER=sqlite")
		}
	case "mysql":
		if strings.TrimSpace(cfg.DBDSN) == "" {
			return cfg, errors.New("DB_DSN must not be empty when DB_DRIVER=mysql")
		}
	default:
		return cfg, errors.New("DB_DRIVER must be sqlite or mysql")
	}
	if cfg.RateWindow <= 0 {
		return cfg, errors.New("RATE_WINDOW must be > 0")
	}
	if cfg.RateDefaultLimit < 1 {
		return cfg, errors.New("RATE_DEFAULT_LIMIT must be >= 1")
	}
	if cfg.Breaker.FailureThreshold < 1 {
		return cfg, errors.New("BREAKER_FAILURE_THRESHOLD must be >= 1")
	}
	if cfg.Breaker.ResetTimeout <= 0 {
		return cfg, errors.New("BREAKER_RESET_TIMEOUT must be > 0")
	}
	if cfg.Breaker.HalfOpenSuccesses < 1 {
		return cfg, errors.New("BREAKER_HALF_OPEN_SUCCESSES must be >= 1")
	}
	if cfg.Webhook.Workers < 1 {
		return cfg, errors.New("WEBHOOK_WORKERS must be >= 1")
	}
	if cfg.Webhook.QueueSize < 1 {
		return cfg, errors.New("WEBHOOK_QUEUE_SIZE must be >= 1")
	}
	if cfg.Webhook.Timeout <= 0 {
		return cfg, errors.New("WEBHOOK_TIMEOUT must be > 0")
	}
	if cfg.Webhook.EgressPerSecond < 0 {
		return cfg, errors.New("WEBHOOK_EGRESS_PER_SECOND must be >= 0")
	}
	if cfg.PollInterval <= 0 {
		return cfg, errors.New("POLL_INTERVAL must be > 0")
	}
	if cfg.PollMaxWait < cfg.PollInterval {
		return cfg, errors.New("POLL_MAX_WAIT must be >= POLL_INTERVAL")
	}
	if cfg.WriteTimeout <= cfg.PollMaxWait {
		return cfg, errors.New("WRITE_TIMEOUT must exceed POLL_MAX_WAIT or long-poll responses are cut off")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
