package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"rfid-attendance/internal/attendance"
	"rfid-attendance/internal/auth"
	"rfid-attendance/internal/bootstrap"
	"rfid-attendance/internal/cloudinary"
	"rfid-attendance/internal/config"
	"rfid-attendance/internal/handler"
	"rfid-attendance/internal/logging"
	"rfid-attendance/internal/metrics"
	"rfid-attendance/internal/report"
	"rfid-attendance/internal/roster"
)

func main() {
	cfg := config.Load(logging.Bootstrap(nil))

	logger, err := logging.New(logging.FromConfig(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg, logger); err != nil {
		logger.Fatal("http server failed", zap.Error(err))
	}
}

func runHTTP(cfg config.App, logger *zap.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		logger.Warn("falling back to UTC", zap.Error(err))
	}

	infra, err := bootstrap.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = infra.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)
	users := roster.New(roster.Seed)
	records := attendance.NewRepository(attendance.Seed)
	m.SetRecords(records.Len())

	scanner := attendance.NewScanner(users, records, logger.Named("scanner"),
		attendance.WithResetAfter(cfg.ScanResetAfter),
		attendance.WithObserver(m),
	)
	defer scanner.Close()

	authStore := auth.NewStore(ctx, infra.Session, cfg.SessionKey, logger.Named("auth"))
	exporter := report.NewExporter(logger.Named("report"))

	var photos handler.PhotoUploader
	if cfg.CloudinaryEnabled() {
		photos = cloudinary.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		logger.Info("cloudinary configured", zap.String("cloud", cfg.CloudinaryCloudName))
	} else {
		logger.Info("cloudinary not configured, photo uploads disabled")
	}

	if infra.InProcessQueue() {
		worker := report.NewWorker(exporter, cfg.ExportDir, m, logger.Named("export"))
		go func() {
			if err := worker.Run(ctx, infra.Queue); err != nil {
				logger.Error("export worker exited", zap.Error(err))
			}
		}()
	}

	h := handler.New(handler.Deps{
		Users:    users,
		Records:  records,
		Scanner:  scanner,
		Auth:     authStore,
		Exporter: exporter,
		Queue:    infra.Queue,
		Photos:   photos,
		Metrics:  m,
		Health:   infra.Checks(),
		Logger:   logger,
	}, handler.Settings{
		Location:      loc,
		JWTIssuer:     cfg.JWTIssuer,
		JWTSigningKey: cfg.JWTSigningKey,
		AccessTTL:     cfg.AccessTTL,
		RecentLimit:   cfg.RecentLimit,
		ExportDir:     cfg.ExportDir,
	})
	r := handler.NewRouter(h, handler.RouterOptions{
		AllowOrigins:          cfg.CORSAllowOrigins,
		ExportRateLimitPerMin: cfg.ExportRateLimitPerMin,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr), zap.String("timezone", loc.String()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server forced shutdown", zap.Error(err))
	}
	logger.Info("server exited")
	return nil
}
