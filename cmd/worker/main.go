package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"rfid-attendance/internal/bootstrap"
	"rfid-attendance/internal/config"
	"rfid-attendance/internal/logging"
	"rfid-attendance/internal/metrics"
	"rfid-attendance/internal/report"
)

// Worker consumes export jobs from the queue and writes the workbooks.
func main() {
	cfg := config.Load(logging.Bootstrap(nil))

	logger, err := logging.New(logging.FromConfig(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	infra, err := bootstrap.Open(cfg, logger)
	if err != nil {
		logger.Fatal("infrastructure init failed", zap.Error(err))
	}
	defer func() { _ = infra.Close() }()

	if infra.InProcessQueue() {
		logger.Warn("QUEUE_BACKEND=memory: jobs are consumed by the api process, this worker will stay idle")
	}
	if infra.Redis != nil && !infra.Redis.Healthy(ctx) {
		logger.Warn("redis not reachable yet, will keep polling", zap.String("addr", cfg.RedisAddr))
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	worker := report.NewWorker(report.NewExporter(logger.Named("report")), cfg.ExportDir, m, logger.Named("export"))
	if err := worker.Run(ctx, infra.Queue); err != nil {
		logger.Error("worker stopped with error", zap.Error(err))
	}
}
