package repository

import (
	"time"

	"task-scheduling-assistant/internal/model"
)

type CreateTaskOptions struct {
	UserID           string
	Title            string
	Description      string
	EstimatedMinutes int
	Priority         int
	EnergyLevel      int
	Deadline         *time.Time
}

type ListTasksOptions struct {
	UserID string
	Status model.SchedulingStatus
	Limit  int
}

// GetEventOptions filters a single ScheduledEvent. Non-empty fields are ANDed.
type GetEventOptions struct {
	ID              string
	ExternalEventID string
	UserID          string
}

// ListDueEventsOptions selects events for the reminder sweep.
// For reminders the window applies to start_time, for post-checks to end_time.
type ListDueEventsOptions struct {
	From  time.Time
	To    time.Time
	Limit int
}

// CommitTaskEventOptions persists one transition atomically.
// InsertEvent creates Event instead of updating the row with the same ID.
type CommitTaskEventOptions struct {
	Task        model.Task
	Event       model.ScheduledEvent
	InsertEvent bool
}

// SaveStateOptions writes a conversation row. ExpectedVersion is the version that was read (0 = no row).
type SaveStateOptions struct {
	UserID          string
	Payload         model.Payload
	ExpectedVersion int64
}

// DeleteStateOptions removes a conversation row. ExpectedVersion <= 0 deletes unconditionally.
type DeleteStateOptions struct {
	UserID          string
	ExpectedVersion int64
}

// UpsertPreferencesOptions stores preferences and, in the same transaction, an outbox row.
type UpsertPreferencesOptions struct {
	Preferences model.UserPreferences
	Outbox      *model.Notification
}
