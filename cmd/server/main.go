// Command server runs the WhatsApp birth-certificate assistant: the Meta
// webhook listener, the conversation engine, and the web-form API, backed by
// SQLite for application records and the delivery ledger.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/instagov/birthbot/internal/alert"
	"github.com/instagov/birthbot/internal/boterr"
	"github.com/instagov/birthbot/internal/config"
	"github.com/instagov/birthbot/internal/engine"
	httpapi "github.com/instagov/birthbot/internal/http"
	"github.com/instagov/birthbot/internal/i18n"
	"github.com/instagov/birthbot/internal/observability"
	"github.com/instagov/birthbot/internal/otp"
	"github.com/instagov/birthbot/internal/store"
	"github.com/instagov/birthbot/internal/sysutil"
	"github.com/instagov/birthbot/internal/wa"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	// Local development convenience; missing .env is not an error.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := store.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	catalog := i18n.Default()

	var notifier boterr.Notifier = alert.LogNotifier{Log: log.Logger}
	if cfg.Alert.WebhookURL != "" {
		notifier = alert.NewWebhookNotifier(cfg.Alert.WebhookURL, log.Logger)
	}
	classifier := boterr.NewClassifier(catalog, notifier, log.Logger, cfg.Alert.ErrorThreshold)

	sessions := store.NewMemorySessions()
	records := store.NewGormRecords(db)
	ledger := store.NewGormLedger(db)
	sender := wa.NewClient(cfg.WhatsApp, log.Logger)

	eng := engine.New(engine.Options{
		Sessions:   sessions,
		Records:    records,
		Ledger:     ledger,
		Sender:     sender,
		Catalog:    catalog,
		Classifier: classifier,
		DedupTTL:   cfg.WebhookDedupTTL,
		Log:        log.Logger,
	})

	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{
		Engine:    eng,
		Submitter: eng,
		Sessions:  sessions,
		Records:   records,
		Ledger:    ledger,
		OTP:       otp.NewService(cfg.OTPTTL),
	}, cfg)

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
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
