// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, WhatsApp gateway credentials, storage
// paths, rate limiting, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/instagov/birthbot/internal/boterr"
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
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "birthbot")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// WhatsAppConfig holds Meta WhatsApp Business API credentials and endpoints.
// Token, PhoneID, and VerifyToken have no defaults; the service refuses to
// start without them.
type WhatsAppConfig struct {
	Token       string // WHATSAPP_TOKEN (Bearer token)
	PhoneID     string // WHATSAPP_PHONE_ID (sender phone number id)
	VerifyToken string // WEBHOOK_VERIFY_TOKEN (handshake shared secret)
	APIVersion  string // META_API_VERSION (e.g. "v18.0")
	BaseURL     string // GRAPH_API_BASE_URL (overridable for tests)
}

// AlertConfig configures the operator alert channel used for critical
// classifications and high-frequency error warnings.
type AlertConfig struct {
	WebhookURL     string // ALERT_WEBHOOK_URL; empty means log-only alerts
	ErrorThreshold int    // ERROR_ALERT_THRESHOLD per error kind
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging
	LogLevel    string // debug|info|warn|error|fatal|panic
	LogPretty   bool   // pretty console logs in dev
	APIBasePath string // base path for API routes

	// App
	DBPath          string        // SQLite path (records + delivery ledger)
	WebhookDedupTTL time.Duration // suppression window for redelivered events
	OTPTTL          time.Duration // OTP validity window

	// WhatsApp gateway
	WhatsApp WhatsAppConfig

	// Operator alerts
	Alert AlertConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

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
		Port:              getenv("PORT", "3000"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging
		LogLevel:    strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:   getbool("LOG_PRETTY", false),
		APIBasePath: normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// App
		DBPath:          getenv("DB_PATH", "birthbot.db"),
		WebhookDedupTTL: getdur("WEBHOOK_DEDUP_TTL", 10*time.Minute),
		OTPTTL:          getdur("OTP_TTL", 5*time.Minute),

		// WhatsApp gateway
		WhatsApp: WhatsAppConfig{
			Token:       getenv("WHATSAPP_TOKEN", ""),
			PhoneID:     getenv("WHATSAPP_PHONE_ID", ""),
			VerifyToken: getenv("WEBHOOK_VERIFY_TOKEN", ""),
			APIVersion:  getenv("META_API_VERSION", "v18.0"),
			BaseURL:     getenv("GRAPH_API_BASE_URL", "https://graph.facebook.com"),
		},

		// Operator alerts
		Alert: AlertConfig{
			WebhookURL:     getenv("ALERT_WEBHOOK_URL", ""),
			ErrorThreshold: getint("ERROR_ALERT_THRESHOLD", 50),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

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
			ServiceName: getenv("OTEL_SERVICE_NAME", "birthbot"),
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
	if !strings.HasPrefix(cfg.WhatsApp.APIVersion, "v") {
		cfg.WhatsApp.APIVersion = "v" + cfg.WhatsApp.APIVersion
	}
	cfg.WhatsApp.BaseURL = strings.TrimRight(cfg.WhatsApp.BaseURL, "/")

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
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.WebhookDedupTTL <= 0 {
		return cfg, errors.New("WEBHOOK_DEDUP_TTL must be > 0")
	}
	if cfg.OTPTTL <= 0 {
		return cfg, errors.New("OTP_TTL must be > 0")
	}
	// Missing credentials are tagged so the fatal startup log carries the
	// configuration kind rather than a bare message.
	if strings.TrimSpace(cfg.WhatsApp.Token) == "" {
		return cfg, boterr.Configuration(errors.New("WHATSAPP_TOKEN must not be empty"))
	}
	if strings.TrimSpace(cfg.WhatsApp.PhoneID) == "" {
		return cfg, boterr.Configuration(errors.New("WHATSAPP_PHONE_ID must not be empty"))
	}
	if strings.TrimSpace(cfg.WhatsApp.VerifyToken) == "" {
		return cfg, boterr.Configuration(errors.New("WEBHOOK_VERIFY_TOKEN must not be empty"))
	}
	if cfg.Alert.ErrorThreshold < 1 {
		return cfg, errors.New("ERROR_ALERT_THRESHOLD must be >= 1")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
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
