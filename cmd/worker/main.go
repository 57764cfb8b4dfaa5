// Command worker consumes queued email tasks and delivers them through the
// configured sender.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aquasync/backend/app"
	"github.com/aquasync/backend/config"
	"github.com/aquasync/backend/internal/observability"
	"github.com/aquasync/backend/jobs"
	"go.uber.org/zap"
)

func main() {
	logger, err := observability.NewLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(logger); err != nil {
		logger.Fatal("worker failed", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.New(ctx)
	if err != nil {
		return err
	}
	if !cfg.Redis.Enabled() {
		return fmt.Errorf("REDIS_ADDR is required to run the worker")
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: app.RedisConnOpt(cfg.Redis),
		Email:     jobs.NewEmailHandler(app.NewSender(cfg.Email, logger), observability.NewMetrics(), logger),
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	logger.Info("worker started", zap.String("redis", cfg.Redis.Addr))
	return worker.Run(ctx)
}
