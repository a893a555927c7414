package gcalendar

import (
	"errors"
	"time"
)

// ErrNotFound is returned when the event does not exist anymore (404 or 410).
var ErrNotFound = errors.New("gcalendar: event not found")

// CreateEventRequest is the input for creating a Google Calendar event.
type CreateEventRequest struct {
	CalendarID  string
	Summary     string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	Timezone    string            // e.g. "Europe/Paris"
	Private     map[string]string // private extended properties
}

// PatchEventRequest moves an existing event.
type PatchEventRequest struct {
	CalendarID string
	EventID    string
	StartTime  time.Time
	EndTime    time.Time
	Timezone   string
}

// Event is a simplified representation of a Google Calendar event.
type Event struct {
	ID          string
	Summary     string
	Description string
	HtmlLink    string
	StartTime   time.Time
	EndTime     time.Time
	Created     time.Time
	Private     map[string]string
}

// ListEventsRequest is the input for listing Google Calendar events.
// PrivateProperty entries are "key=value" filters.
type ListEventsRequest struct {
	CalendarID      string
	TimeMin         time.Time
	TimeMax         time.Time
	MaxResults      int64
	PrivateProperty []string
}

// BusyInterval is one entry of a free/busy answer.
type BusyInterval struct {
	Start time.Time
	End   time.Time
}
