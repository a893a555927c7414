// Package reconcile removes calendar events this service created but never recorded,
// e.g. when the database commit after a successful event creation failed.
package reconcile

import (
	"context"
	"time"

	"task-scheduling-assistant/internal/calendar"
	"task-scheduling-assistant/internal/scheduling/repository"
	"task-scheduling-assistant/pkg/log"
)

const (
	DefaultGracePeriod = 10 * time.Minute
	DefaultLookBack    = 24 * time.Hour
	DefaultLookAhead   = 14 * 24 * time.Hour
)

// Options configures the sweep window. Zero values fall back to defaults.
type Options struct {
	// GracePeriod protects events whose database commit may still be in flight.
	GracePeriod time.Duration
	LookBack    time.Duration
	LookAhead   time.Duration
	Clock       func() time.Time
}

// Users lists the users with a connected calendar.
type Users interface {
	ListConnectedUsers(ctx context.Context) ([]string, error)
}

// Result counts what one pass did.
type Result struct {
	Users   int
	Deleted int
	Failed  int
}

// Sweeper runs one reconciliation pass.
type Sweeper interface {
	Run(ctx context.Context) (Result, error)
}

type implSweeper struct {
	l      log.Logger
	users  Users
	cal    calendar.Gateway
	events repository.EventRepository
	opt    Options
}

// New creates the orphan-event sweeper.
func New(l log.Logger, users Users, cal calendar.Gateway, events repository.EventRepository, opt Options) Sweeper {
	if opt.GracePeriod <= 0 {
		opt.GracePeriod = DefaultGracePeriod
	}
	if opt.LookBack <= 0 {
		opt.LookBack = DefaultLookBack
	}
	if opt.LookAhead <= 0 {
		opt.LookAhead = DefaultLookAhead
	}
	if opt.Clock == nil {
		opt.Clock = time.Now
	}
	return &implSweeper{l: l, users: users, cal: cal, events: events, opt: opt}
}

// Run checks every connected user. Errors for one user are logged and do not stop the pass.
func (s *implSweeper) Run(ctx context.Context) (Result, error) {
	users, err := s.users.ListConnectedUsers(ctx)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, userID := range users {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		res.Users++
		deleted, failed := s.user(log.WithUserID(ctx, userID), userID)
		res.Deleted += deleted
		res.Failed += failed
	}

	if res.Deleted+res.Failed > 0 {
		s.l.Infof(ctx, "reconcile.Run: users=%d deleted=%d failed=%d", res.Users, res.Deleted, res.Failed)
	}
	return res, nil
}

func (s *implSweeper) user(ctx context.Context, userID string) (deleted, failed int) {
	now := s.opt.Clock().UTC()

	tagged, err := s.cal.ListTaggedEvents(ctx, userID, now.Add(-s.opt.LookBack), now.Add(s.opt.LookAhead))
	if err != nil {
		s.l.Warnf(ctx, "reconcile.user: list events: %v", err)
		return 0, 1
	}
	if len(tagged) == 0 {
		return 0, 0
	}

	known, err := s.events.ListExternalEventIDs(ctx, userID)
	if err != nil {
		s.l.Errorf(ctx, "reconcile.user: list known ids: %v", err)
		return 0, 1
	}

	cutoff := now.Add(-s.opt.GracePeriod)
	for _, ev := range tagged {
		if _, ok := known[ev.EventID]; ok {
			continue
		}
		if ev.Created.IsZero() || ev.Created.After(cutoff) {
			continue
		}
		if err := s.cal.DeleteEvent(ctx, userID, ev.EventID); err != nil {
			s.l.Warnf(ctx, "reconcile.user: delete orphan %s: %v", ev.EventID, err)
			failed++
			continue
		}
		s.l.Infof(ctx, "reconcile.user: deleted orphan event %s (task %s)", ev.EventID, ev.TaskID)
		deleted++
	}
	return deleted, failed
}
