package scheduling

import "errors"

// Domain-specific errors for the scheduling package.
var (
	ErrEmptyUser            = errors.New("user id is empty")
	ErrTaskNotFound         = errors.New("task not found")
	ErrEventNotFound        = errors.New("scheduled event not found")
	ErrEventClosed          = errors.New("scheduled event already answered")
	ErrExternalService      = errors.New("calendar service failed")
	ErrInvalidChoice        = errors.New("invalid choice")
	ErrNoCapacity           = errors.New("no free slot available")
	ErrCalendarNotConnected = errors.New("calendar not connected")
	ErrStateConflict        = errors.New("conversation state changed concurrently")
	ErrEmptyTitle           = errors.New("task title is empty")
	ErrInvalidDeadline      = errors.New("invalid deadline")
	ErrInvalidResponse      = errors.New("invalid event response")
	ErrInvalidPreferences   = errors.New("invalid preferences")
)
