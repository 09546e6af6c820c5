package config

import (
	"strings"
	"testing"
	"time"

	"github.com/instagov/birthbot/internal/boterr"
)

// setRequired sets the credentials the loader refuses to start without.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("WHATSAPP_TOKEN", "tok")
	t.Setenv("WHATSAPP_PHONE_ID", "555000")
	t.Setenv("WEBHOOK_VERIFY_TOKEN", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "3000" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.GinMode != "release" || cfg.LogLevel != "info" {
		t.Errorf("mode/level = %q/%q", cfg.GinMode, cfg.LogLevel)
	}
	if cfg.APIBasePath != "/api/v1" {
		t.Errorf("APIBasePath = %q", cfg.APIBasePath)
	}
	if cfg.WebhookDedupTTL != 10*time.Minute || cfg.OTPTTL != 5*time.Minute {
		t.Errorf("TTLs = %v/%v", cfg.WebhookDedupTTL, cfg.OTPTTL)
	}
	if cfg.WhatsApp.APIVersion != "v18.0" {
		t.Errorf("APIVersion = %q", cfg.WhatsApp.APIVersion)
	}
	if cfg.WhatsApp.BaseURL != "https://graph.facebook.com" {
		t.Errorf("BaseURL = %q", cfg.WhatsApp.BaseURL)
	}
	if cfg.Alert.ErrorThreshold != 50 {
		t.Errorf("ErrorThreshold = %d", cfg.Alert.ErrorThreshold)
	}
	if cfg.RateRPS != 5.0 || cfg.RateBurst != 10 {
		t.Errorf("rate = %v/%d", cfg.RateRPS, cfg.RateBurst)
	}
}

func TestLoad_MissingCredentials(t *testing.T) {
	cases := []struct {
		name string
		omit string
	}{
		{"token", "WHATSAPP_TOKEN"},
		{"phone id", "WHATSAPP_PHONE_ID"},
		{"verify token", "WEBHOOK_VERIFY_TOKEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tc.omit, "")
			_, err := Load()
			if err == nil {
				t.Fatalf("expected error without %s", tc.omit)
			}
			if boterr.KindOf(err) != boterr.KindConfiguration {
				t.Fatalf("missing %s classified as %q", tc.omit, boterr.KindOf(err))
			}
		})
	}
}

func TestLoad_Normalization(t *testing.T) {
	setRequired(t)
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("GIN_MODE", "banana")
	t.Setenv("META_API_VERSION", "19.0")
	t.Setenv("GRAPH_API_BASE_URL", "https://graph.example.com/")
	t.Setenv("API_BASE_PATH", "api/v2/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode = %q", cfg.GinMode)
	}
	if cfg.WhatsApp.APIVersion != "v19.0" {
		t.Errorf("APIVersion = %q", cfg.WhatsApp.APIVersion)
	}
	if strings.HasSuffix(cfg.WhatsApp.BaseURL, "/") {
		t.Errorf("BaseURL = %q", cfg.WhatsApp.BaseURL)
	}
	if cfg.APIBasePath != "/api/v2" {
		t.Errorf("APIBasePath = %q", cfg.APIBasePath)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"zero dedup ttl", "WEBHOOK_DEDUP_TTL", "0s"},
		{"zero otp ttl", "OTP_TTL", "0s"},
		{"negative rps", "RATE_RPS", "-1"},
		{"zero burst", "RATE_BURST", "0"},
		{"zero threshold", "ERROR_ALERT_THRESHOLD", "0"},
		{"bad sampler arg", "OTEL_TRACES_SAMPLER_ARG", "2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", tc.key, tc.value)
			}
		})
	}
}

func TestLoad_CORSOrigins(t *testing.T) {
	setRequired(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if len(cfg.CORS.AllowedOrigins) != len(want) {
		t.Fatalf("origins = %v", cfg.CORS.AllowedOrigins)
	}
	for i := range want {
		if cfg.CORS.AllowedOrigins[i] != want[i] {
			t.Errorf("origin[%d] = %q", i, cfg.CORS.AllowedOrigins[i])
		}
	}
}

func TestLoad_BoolParsing(t *testing.T) {
	setRequired(t)
	t.Setenv("LOG_PRETTY", "Yes")
	t.Setenv("OTEL_ENABLED", "on")
	t.Setenv("ENABLE_HSTS", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.LogPretty || !cfg.OTEL.Enabled || cfg.Security.EnableHSTS {
		t.Errorf("bools = pretty=%v otel=%v hsts=%v", cfg.LogPretty, cfg.OTEL.Enabled, cfg.Security.EnableHSTS)
	}
}
