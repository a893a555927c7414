package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"task-scheduling-assistant/config"
	_ "task-scheduling-assistant/docs" // Swagger docs
	"task-scheduling-assistant/internal/app"
	"task-scheduling-assistant/internal/httpserver"
	"task-scheduling-assistant/internal/middleware"
	"task-scheduling-assistant/pkg/log"
)

// @title       Task Scheduling Assistant API
// @description Proposes calendar slots for tasks and negotiates them with the user over short replies.
// @version     1
// @host        localhost:8080
// @schemes     http
func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load config: ", err)
		return
	}

	// 2. Logger
	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting Task Scheduling Assistant API...")
	logger.Infof(ctx, "Environment: %s", cfg.Environment.Name)
	logger.Infof(ctx, "Database driver: %s", cfg.Database.Driver)

	// 3. Infrastructure + use cases
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "Failed to initialize application: ", err)
		return
	}
	defer a.Close()

	// 4. Telegram webhook: configured URL or ngrok auto-detection
	if a.Bot != nil {
		webhookURL, whErr := resolveWebhookURL(ctx, cfg.Telegram.WebhookURL, newNgrokProbe(cfg.Telegram.NgrokAPI))
		if whErr != nil {
			logger.Warnf(ctx, "Could not resolve Telegram webhook URL: %v", whErr)
		} else if whErr = a.Bot.SetWebhook(ctx, webhookURL, cfg.Telegram.WebhookSecret); whErr != nil {
			logger.Warnf(ctx, "Failed to set Telegram webhook: %v", whErr)
		} else {
			logger.Infof(ctx, "Telegram webhook registered at %s", webhookURL)
		}
	} else {
		logger.Warn(ctx, "Telegram skipped: TELEGRAM_BOT_TOKEN is missing")
	}

	// 5. HTTP Server
	httpServer, err := httpserver.New(logger, httpserver.Config{
		Logger:      logger,
		Port:        cfg.HTTPServer.Port,
		Mode:        cfg.HTTPServer.Mode,
		Environment: cfg.Environment.Name,
		DB:          a.DB,
		Middleware: middleware.Config{
			RateLimitPerMin: cfg.RateLimit.PerMin,
			TelegramSecret:  cfg.Telegram.WebhookSecret,
		},
		Scheduling:  a.Scheduling,
		Calendar:    a.Calendar,
		Outbox:      a.Outbox,
		Bot:         a.Bot,
		Translator:  a.Translator,
		Preferences: a.Repo,
	})
	if err != nil {
		logger.Error(ctx, "Failed to initialize HTTP server: ", err)
		return
	}

	// 6. Run
	if err := httpServer.Run(ctx); err != nil {
		logger.Error(ctx, "Failed to run server: ", err)
		return
	}

	logger.Info(ctx, "Server stopped gracefully")
}
