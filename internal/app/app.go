// Package app assembles the shared infrastructure and use cases used by every binary.
package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"golang.org/x/oauth2"

	"task-scheduling-assistant/config"
	"task-scheduling-assistant/internal/calendar"
	"task-scheduling-assistant/internal/cronjob"
	calendarRepo "task-scheduling-assistant/internal/calendar/repository/postgre"
	"task-scheduling-assistant/internal/notification"
	notificationRepo "task-scheduling-assistant/internal/notification/repository"
	notificationPostgre "task-scheduling-assistant/internal/notification/repository/postgre"
	"task-scheduling-assistant/internal/reconcile"
	"task-scheduling-assistant/internal/reminder"
	"task-scheduling-assistant/internal/scheduling"
	tgDelivery "task-scheduling-assistant/internal/scheduling/delivery/telegram"
	"task-scheduling-assistant/internal/scheduling/repository"
	schedulingRepo "task-scheduling-assistant/internal/scheduling/repository/postgre"
	"task-scheduling-assistant/internal/scheduling/usecase"
	"task-scheduling-assistant/internal/slotfinder"
	"task-scheduling-assistant/internal/storage"
	"task-scheduling-assistant/pkg/gcalendar"
	"task-scheduling-assistant/pkg/log"
	"task-scheduling-assistant/pkg/telegram"
	"task-scheduling-assistant/pkg/translator"
)

// App holds the wired components.
type App struct {
	Config     *config.Config
	Logger     log.Logger
	DB         *sqlx.DB
	Translator *translator.Translator

	Repo       repository.Repository
	Tokens     calendar.TokenStore
	Calendar   calendar.Service
	Finder     slotfinder.Finder
	Scheduling scheduling.UseCase
	Outbox     notificationRepo.Repository

	// Bot is nil when no Telegram token is configured; Sender then only logs.
	Bot    *telegram.Bot
	Sender scheduling.Sender
}

// New opens the database, ensures the schema and builds every component.
func New(ctx context.Context, cfg *config.Config, l log.Logger) (*App, error) {
	db, err := storage.Open(ctx, storage.Config{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
	})
	if err != nil {
		return nil, err
	}
	if err := storage.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	tr, err := translator.New(translator.Config{DefaultLanguage: cfg.Scheduling.DefaultLanguage})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := &App{
		Config:     cfg,
		Logger:     l,
		DB:         db,
		Translator: tr,
		Repo:       schedulingRepo.New(db, l),
		Tokens:     calendarRepo.New(db, l),
		Outbox:     notificationPostgre.New(db, l),
	}

	a.Calendar = calendar.NewGoogle(l, a.Tokens, calendar.GoogleOptions{
		OAuth:      a.oauthConfig(ctx),
		CalendarID: cfg.GoogleCalendar.CalendarID,
	})

	a.Finder = slotfinder.New(l, a.Calendar, a.Repo, slotfinder.Options{
		LookaheadDays:   cfg.Scheduling.LookaheadDays,
		MaxSlots:        cfg.Scheduling.MaxSlots,
		StepMinutes:     cfg.Scheduling.SlotStepMinutes,
		BreakMinutes:    cfg.Scheduling.BreakMinutes,
		DefaultTimezone: cfg.Scheduling.DefaultTimezone,
	})

	a.Scheduling = usecase.New(l, a.Repo, a.Calendar, a.Finder, tr, usecase.Options{
		OpTimeout: cfg.Scheduling.OpTimeout,
	})

	if cfg.Telegram.BotToken != "" {
		a.Bot = telegram.NewBot(cfg.Telegram.BotToken)
		a.Sender = tgDelivery.NewSender(a.Bot)
	} else {
		l.Warn(ctx, "Telegram bot token missing: outbound messages are only logged")
		a.Sender = logSender{l: l}
	}

	return a, nil
}

// oauthConfig is nil when no credentials file is configured; stored tokens are then used as-is.
func (a *App) oauthConfig(ctx context.Context) *oauth2.Config {
	path := a.Config.GoogleCalendar.CredentialsPath
	if path == "" {
		a.Logger.Warn(ctx, "google_calendar.credentials_path not set: calendar tokens will not be refreshed")
		return nil
	}
	oc, err := gcalendar.LoadOAuthConfig(path, a.Config.GoogleCalendar.RedirectURL)
	if err != nil {
		a.Logger.Warnf(ctx, "Google OAuth client not available: %v", err)
		return nil
	}
	return oc
}

// Reminder builds the start-reminder and post-check sweeper.
func (a *App) Reminder() reminder.Sweeper {
	return reminder.New(a.Logger, a.Repo, a.Scheduling, a.Sender, a.Translator, reminder.Options{})
}

// Reconciler builds the orphaned-event sweeper.
func (a *App) Reconciler() reconcile.Sweeper {
	return reconcile.New(a.Logger, a.Tokens, a.Calendar, a.Repo, reconcile.Options{
		GracePeriod: a.Config.Reconcile.GracePeriod,
	})
}

// Dispatcher builds the outbox dispatcher.
func (a *App) Dispatcher() notification.Dispatcher {
	n := a.Config.Notification
	return notification.NewDispatcher(a.Logger, a.Outbox, notification.Options{
		BaseURLs:    n.BaseURLs(),
		Path:        n.Path,
		MaxAttempts: n.MaxAttempts,
		BaseBackoff: n.BaseBackoff,
		Timeout:     n.Timeout,
	})
}

// Job names registered by RegisterJobs.
const (
	JobReminder  = "reminder"
	JobReconcile = "reconcile"
	JobDispatch  = "dispatch"
)

// RegisterJobs schedules the enabled background sweeps on r.
func (a *App) RegisterJobs(r *cronjob.Runner) error {
	cfg := a.Config

	if cfg.Reminder.Enabled {
		sweeper := a.Reminder()
		if err := r.Add(JobReminder, cfg.Reminder.Cron, func(ctx context.Context) error {
			_, err := sweeper.Run(ctx)
			return err
		}); err != nil {
			return err
		}
	}

	if cfg.Reconcile.Enabled {
		sweeper := a.Reconciler()
		if err := r.Add(JobReconcile, cfg.Reconcile.Cron, func(ctx context.Context) error {
			_, err := sweeper.Run(ctx)
			return err
		}); err != nil {
			return err
		}
	}

	if len(cfg.Notification.BaseURLs()) > 0 {
		dispatcher := a.Dispatcher()
		spec := fmt.Sprintf("@every %s", cfg.Notification.PollInterval)
		if err := r.Add(JobDispatch, spec, func(ctx context.Context) error {
			_, err := dispatcher.Run(ctx)
			return err
		}); err != nil {
			return err
		}
	} else {
		a.Logger.Warn(context.Background(), "notification.primary_url not set: outbox rows stay pending")
	}
	return nil
}

func (a *App) Close() error {
	if err := a.DB.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

type logSender struct {
	l log.Logger
}

func (s logSender) Send(ctx context.Context, userID, text string) error {
	s.l.Infof(ctx, "outbound message to %s: %s", userID, text)
	return nil
}
