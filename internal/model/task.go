package model

import "time"

// SchedulingStatus is where a task stands in the calendar negotiation.
type SchedulingStatus string

const (
	StatusUnscheduled SchedulingStatus = "unscheduled"
	StatusScheduled   SchedulingStatus = "scheduled"
	StatusDone        SchedulingStatus = "done"
	StatusNotDone     SchedulingStatus = "not_done"
	StatusSnoozed     SchedulingStatus = "snoozed"
)

// RequiresEvent reports whether a task in this status must carry an external event id.
func (s SchedulingStatus) RequiresEvent() bool {
	switch s {
	case StatusScheduled, StatusDone, StatusNotDone, StatusSnoozed:
		return true
	}
	return false
}

func (s SchedulingStatus) Valid() bool {
	return s == StatusUnscheduled || s.RequiresEvent()
}

// Task is the schedulable unit of work.
type Task struct {
	ID               string
	UserID           string
	Title            string
	Description      string
	EstimatedMinutes int
	Priority         int // 0..4
	EnergyLevel      int // 0..3
	Deadline         *time.Time
	Completed        bool
	SchedulingStatus SchedulingStatus
	ScheduledFor     *time.Time
	ProposedStart    *time.Time
	ProposedEnd      *time.Time
	ExternalEventID  string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Duration returns the estimated duration, defaulting to 30 minutes.
func (t Task) Duration() time.Duration {
	if t.EstimatedMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(t.EstimatedMinutes) * time.Minute
}

// DurationMinutes is Duration in whole minutes.
func (t Task) DurationMinutes() int {
	return int(t.Duration() / time.Minute)
}

// Consistent reports whether ExternalEventID agrees with SchedulingStatus.
func (t Task) Consistent() bool {
	return (t.ExternalEventID != "") == t.SchedulingStatus.RequiresEvent()
}
