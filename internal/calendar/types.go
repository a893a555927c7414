package calendar

import "time"

// Private extended property keys stamped on every event we create.
const (
	TagKey       = "scheduler"
	TagValue     = "true"
	TaskIDKey    = "taskId"
	cacheSize    = 1000
	connectedTTL = time.Minute
)

type CreateEventInput struct {
	UserID      string
	TaskID      string
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Timezone    string
}

type CreateEventOutput struct {
	Success bool
	EventID string
}

type UpdateEventInput struct {
	UserID   string
	EventID  string
	Start    time.Time
	End      time.Time
	Timezone string
}

type UpdateEventOutput struct {
	Success bool
}

// TaggedEvent is an event carrying our private tag.
type TaggedEvent struct {
	EventID string
	TaskID  string
	Start   time.Time
	End     time.Time
	Created time.Time
}
