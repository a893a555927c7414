package model

import "time"

// UserResponse is the user's answer about a scheduled event.
type UserResponse string

const (
	ResponsePending UserResponse = "pending"
	ResponseDone    UserResponse = "done"
	ResponseNotDone UserResponse = "not_done"
	ResponseSnoozed UserResponse = "snoozed"
)

func (r UserResponse) Valid() bool {
	switch r {
	case ResponsePending, ResponseDone, ResponseNotDone, ResponseSnoozed:
		return true
	}
	return false
}

// ScheduledEvent links a task to the calendar event created for it.
type ScheduledEvent struct {
	ID               string
	TaskID           string
	UserID           string
	ExternalEventID  string
	StartTime        time.Time
	EndTime          time.Time
	UserResponse     UserResponse
	RescheduledCount int
	ReminderSentAt   *time.Time
	PostCheckSentAt  *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Duration is the scheduled length of the event.
func (e ScheduledEvent) Duration() time.Duration {
	return e.EndTime.Sub(e.StartTime)
}

// Closed reports whether the user already answered done or not done.
func (e ScheduledEvent) Closed() bool {
	return e.UserResponse == ResponseDone || e.UserResponse == ResponseNotDone
}
