package repository

import (
	"context"
	"time"

	"task-scheduling-assistant/internal/model"
)

// Repository is the composed data store of the scheduling domain.
type Repository interface {
	TaskRepository
	EventRepository
	StateRepository
	PreferencesRepository

	// CommitTaskEvent writes the task and its scheduled event in one transaction.
	CommitTaskEvent(ctx context.Context, opt CommitTaskEventOptions) error
}

type TaskRepository interface {
	CreateTask(ctx context.Context, opt CreateTaskOptions) (model.Task, error)
	// GetTask returns a zero Task (ID == "") when not found.
	GetTask(ctx context.Context, id string) (model.Task, error)
	ListTasks(ctx context.Context, opt ListTasksOptions) ([]model.Task, error)
	UpdateTask(ctx context.Context, t model.Task) error
}

type EventRepository interface {
	// GetEvent returns a zero ScheduledEvent (ID == "") when not found.
	GetEvent(ctx context.Context, opt GetEventOptions) (model.ScheduledEvent, error)
	ListDueReminders(ctx context.Context, opt ListDueEventsOptions) ([]model.ScheduledEvent, error)
	ListDuePostChecks(ctx context.Context, opt ListDueEventsOptions) ([]model.ScheduledEvent, error)
	MarkReminderSent(ctx context.Context, id string, at time.Time) error
	MarkPostCheckSent(ctx context.Context, id string, at time.Time) error
	ListExternalEventIDs(ctx context.Context, userID string) (map[string]struct{}, error)
}

type StateRepository interface {
	GetState(ctx context.Context, userID string) (model.ConversationState, bool, error)
	SaveState(ctx context.Context, opt SaveStateOptions) (model.ConversationState, error)
	DeleteState(ctx context.Context, opt DeleteStateOptions) error
}

type PreferencesRepository interface {
	// GetPreferences returns defaults for users without a row.
	GetPreferences(ctx context.Context, userID string) (model.UserPreferences, error)
	UpsertPreferences(ctx context.Context, opt UpsertPreferencesOptions) error
}
