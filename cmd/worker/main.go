package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task-scheduling-assistant/config"
	"task-scheduling-assistant/internal/app"
	"task-scheduling-assistant/internal/cronjob"
	"task-scheduling-assistant/pkg/log"
)

const (
	jobTimeout  = 5 * time.Minute
	stopTimeout = 30 * time.Second
)

// main is the entry point for the background worker.
// It runs the reminder and reconciliation sweeps and the outbox dispatcher on cron schedules.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load config: ", err)
		return
	}

	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting worker service...")

	// Infrastructure + use cases
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "Failed to initialize application: ", err)
		return
	}
	defer a.Close()

	// Schedules
	runner := cronjob.New(logger, jobTimeout)
	if err := a.RegisterJobs(runner); err != nil {
		logger.Error(ctx, "Failed to register jobs: ", err)
		return
	}
	runner.Start()

	logger.Info(ctx, "Worker running. Waiting for shutdown signal...")
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := runner.Stop(stopCtx); err != nil {
		logger.Warnf(ctx, "Jobs still running at shutdown: %v", err)
	}
	logger.Info(ctx, "Worker stopped gracefully")
}
