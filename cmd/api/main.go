package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/careops/registry-api/internal/config"
	"github.com/careops/registry-api/internal/handler"
	dashboardHandler "github.com/careops/registry-api/internal/handler/dashboard"
	locationHandler "github.com/careops/registry-api/internal/handler/location"
	patientHandler "github.com/careops/registry-api/internal/handler/patient"
	sampleHandler "github.com/careops/registry-api/internal/handler/sample"
	"github.com/careops/registry-api/internal/identifier"
	"github.com/careops/registry-api/internal/notify"
	"github.com/careops/registry-api/internal/repository/sqlstore"
	"github.com/careops/registry-api/internal/router"
	"github.com/careops/registry-api/internal/service/registry"
	"github.com/careops/registry-api/internal/workflow"
	"github.com/careops/registry-api/pkg/logger"
	"github.com/careops/registry-api/pkg/metrics"
	"golang.org/x/time/rate"
)

const metricsNamespace = "registry"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	appLogger := logger.New(logger.Config{Level: level})

	db, err := sqlstore.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx := context.Background()
	if err := sqlstore.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	locationRepo := sqlstore.NewLocationRepository(db)
	patientRepo := sqlstore.NewPatientRepository(db)
	recordRepo := sqlstore.NewHealthRecordRepository(db)
	sampleRepo := sqlstore.NewBloodSampleRepository(db)
	sequenceRepo := sqlstore.NewSequenceRepository(db)

	m := metrics.NewMetrics(metricsNamespace)
	issuer := identifier.NewIssuer(sequenceRepo)
	notifier := newNotifier(cfg.Notifier, appLogger)
	engine := workflow.NewEngine(sampleRepo, notifier, cfg.Notifier.SendTimeout, m, appLogger)

	svc := registry.NewService(
		locationRepo,
		patientRepo,
		recordRepo,
		sampleRepo,
		issuer,
		engine,
		cfg.Cache.DashboardTTL,
		m,
		appLogger,
	)

	r := router.NewRouter(
		handler.NewHandler(db),
		dashboardHandler.NewHandler(svc),
		patientHandler.NewHandler(svc),
		locationHandler.NewHandler(svc),
		sampleHandler.NewHandler(svc),
		appLogger,
		router.Config{
			RequestTimeout:   cfg.Server.RequestTimeout,
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimit:        rate.Limit(cfg.RateLimit.RPS),
			RateBurst:        cfg.RateLimit.Burst,
			MetricsNamespace: metricsNamespace,
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info().Msg("server exited properly")
}

func newNotifier(cfg config.NotifierConfig, logger zerolog.Logger) notify.Sender {
	switch cfg.Channel {
	case "smtp":
		return notify.NewSMTPSender(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			Subject:  cfg.SMTP.Subject,
		})
	default:
		return notify.NewWhatsAppSimulator(logger)
	}
}
