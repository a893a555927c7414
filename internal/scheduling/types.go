package scheduling

import (
	"task-scheduling-assistant/internal/model"
)

type CreateTaskInput struct {
	Title            string
	Description      string
	EstimatedMinutes int
	Priority         int
	EnergyLevel      int
	// Deadline is RFC3339, a date, or a relative expression such as "demain" or "in 3 days".
	Deadline string
}

type CreateTaskOutput struct {
	Task     model.Task
	Proposal ProposeOutput
}

type ProposeInput struct {
	TaskID string
}

// ProposeOutput carries the reply to send. Proposed is true when a slot was offered.
type ProposeOutput struct {
	Proposed bool
	Reply    string
	Slots    []model.Slot
}

type MessageInput struct {
	Text string
}

// MessageOutput is the reply for one inbound message. State is empty when the user ends idle.
type MessageOutput struct {
	Handled bool
	Reply   string
	State   model.StateTag
}

type CompletionInput struct {
	EventID string
}

type CompletionOutput struct {
	Requested bool
	Reply     string
}

type RespondInput struct {
	EventID       string
	Response      model.UserResponse
	SnoozeMinutes int
}

// PreferencesInput is a partial update; nil fields keep their stored value.
type PreferencesInput struct {
	Timezone             *string
	Language             *string
	StartHour            *int
	EndHour              *int
	AllowedDays          []int
	NotificationsEnabled *bool
}
