package slotfinder

import (
	"context"
	"time"

	"task-scheduling-assistant/internal/model"
)

// Finder ranks free calendar slots for a task.
type Finder interface {
	// FindBestSlots returns up to MaxSlots mutually non-overlapping slots, best first.
	// An empty result with a nil error means there is no capacity.
	FindBestSlots(ctx context.Context, input FindInput) (FindOutput, error)
}

// BusySource reports when the user is busy.
type BusySource interface {
	BusyPeriods(ctx context.Context, userID string, from, to time.Time) ([]model.BusyPeriod, error)
}

// PreferencesSource supplies working hours, days and locale.
type PreferencesSource interface {
	GetPreferences(ctx context.Context, userID string) (model.UserPreferences, error)
}
