package reminder

import (
	"context"
	"time"

	"task-scheduling-assistant/internal/scheduling"
	"task-scheduling-assistant/internal/scheduling/repository"
	"task-scheduling-assistant/pkg/log"
	"task-scheduling-assistant/pkg/translator"
)

const (
	DefaultLeadTime      = 5 * time.Minute
	DefaultPostCheckFrom = 2 * time.Minute
	DefaultPostCheckTo   = 10 * time.Minute
	defaultBatch         = 200
)

// Options configures the sweep windows. Zero values fall back to defaults.
type Options struct {
	// LeadTime is how far ahead of its start an event gets a start reminder.
	LeadTime time.Duration
	// Post-checks go out for events that ended between PostCheckTo and PostCheckFrom ago.
	PostCheckFrom time.Duration
	PostCheckTo   time.Duration
	Clock         func() time.Time
}

// Sweeper sends start reminders and post-event completion checks.
type Sweeper interface {
	Run(ctx context.Context) (Result, error)
}

// Result counts what one pass did.
type Result struct {
	Reminders  int
	PostChecks int
	Skipped    int
}

type implSweeper struct {
	l      log.Logger
	repo   repository.Repository
	uc     scheduling.UseCase
	sender scheduling.Sender
	tr     *translator.Translator
	opt    Options
}

// New creates the reminder sweeper.
func New(l log.Logger, repo repository.Repository, uc scheduling.UseCase, sender scheduling.Sender, tr *translator.Translator, opt Options) Sweeper {
	if opt.LeadTime <= 0 {
		opt.LeadTime = DefaultLeadTime
	}
	if opt.PostCheckFrom <= 0 {
		opt.PostCheckFrom = DefaultPostCheckFrom
	}
	if opt.PostCheckTo <= opt.PostCheckFrom {
		opt.PostCheckTo = DefaultPostCheckTo
	}
	if opt.Clock == nil {
		opt.Clock = time.Now
	}
	return &implSweeper{
		l:      l,
		repo:   repo,
		uc:     uc,
		sender: sender,
		tr:     tr,
		opt:    opt,
	}
}
