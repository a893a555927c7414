package repository

import (
	"context"
	"errors"
	"time"

	"task-scheduling-assistant/internal/model"
)

var (
	ErrFailedToList   = errors.New("failed to list notifications")
	ErrFailedToUpdate = errors.New("failed to update notification")
)

// Repository is the outbox table. Rows are written by the producing domain
// in its own transaction; this side only reads and settles them.
type Repository interface {
	// ListDue returns pending rows whose next attempt is at or before now, oldest first.
	ListDue(ctx context.Context, now time.Time, limit int) ([]model.Notification, error)
	MarkDelivered(ctx context.Context, id string, at time.Time) error
	// MarkRetry records a failed attempt and when to try again.
	MarkRetry(ctx context.Context, opt MarkRetryOptions) error
	MarkDead(ctx context.Context, opt MarkRetryOptions) error
	ListDead(ctx context.Context, limit int) ([]model.Notification, error)
}

// MarkRetryOptions describes a failed delivery attempt.
type MarkRetryOptions struct {
	ID            string
	Attempts      int
	NextAttemptAt time.Time
	LastError     string
}
