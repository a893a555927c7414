package usecase

import (
	"time"

	"task-scheduling-assistant/internal/calendar"
	"task-scheduling-assistant/internal/scheduling/repository"
	"task-scheduling-assistant/internal/slotfinder"
	"task-scheduling-assistant/pkg/keylock"
	pkgLog "task-scheduling-assistant/pkg/log"
	"task-scheduling-assistant/pkg/translator"
)

const defaultOpTimeout = 30 * time.Second

// Options tunes the coordinator. Zero values fall back to defaults.
type Options struct {
	// OpTimeout bounds one transition once it is detached from the caller's context.
	OpTimeout time.Duration
	Clock     func() time.Time
}

type implUseCase struct {
	l        pkgLog.Logger
	repo     repository.Repository
	calendar calendar.Gateway
	finder   slotfinder.Finder
	tr       *translator.Translator
	locks    *keylock.KeyLock
	clock    func() time.Time
	timeout  time.Duration
}

// New creates a new scheduling UseCase instance.
func New(
	l pkgLog.Logger,
	repo repository.Repository,
	cal calendar.Gateway,
	finder slotfinder.Finder,
	tr *translator.Translator,
	opt Options,
) *implUseCase {
	if opt.OpTimeout <= 0 {
		opt.OpTimeout = defaultOpTimeout
	}
	if opt.Clock == nil {
		opt.Clock = time.Now
	}
	return &implUseCase{
		l:        l,
		repo:     repo,
		calendar: cal,
		finder:   finder,
		tr:       tr,
		locks:    keylock.New(),
		clock:    opt.Clock,
		timeout:  opt.OpTimeout,
	}
}
