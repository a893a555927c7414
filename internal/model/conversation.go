package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// StateTag names the conversation step a user is in. Idle users have no row.
type StateTag string

const (
	StateAwaitingScheduleConfirmation StateTag = "awaiting_schedule_confirmation"
	StateAwaitingSlotChoice           StateTag = "awaiting_slot_choice"
	StateAwaitingTaskCompletion       StateTag = "awaiting_task_completion"
)

// ErrUnknownState is returned when decoding a payload with an unrecognized tag.
var ErrUnknownState = errors.New("unknown conversation state")

// Payload is implemented by exactly one type per StateTag.
type Payload interface {
	Tag() StateTag
	isPayload()
}

// ScheduleConfirmationPayload holds the full ranked list; Slots[0] is the one being proposed.
type ScheduleConfirmationPayload struct {
	TaskID string `json:"task_id"`
	Slots  []Slot `json:"slots"`
}

func (ScheduleConfirmationPayload) Tag() StateTag { return StateAwaitingScheduleConfirmation }
func (ScheduleConfirmationPayload) isPayload()    {}

// SlotChoicePayload holds the options shown to the user, in display order.
type SlotChoicePayload struct {
	TaskID  string `json:"task_id"`
	Options []Slot `json:"options"`
}

func (SlotChoicePayload) Tag() StateTag { return StateAwaitingSlotChoice }
func (SlotChoicePayload) isPayload()    {}

type TaskCompletionPayload struct {
	EventID   string `json:"event_id"`
	TaskID    string `json:"task_id"`
	TaskTitle string `json:"task_title"`
}

func (TaskCompletionPayload) Tag() StateTag { return StateAwaitingTaskCompletion }
func (TaskCompletionPayload) isPayload()    {}

// ConversationState is the single live conversation of a user.
type ConversationState struct {
	UserID      string
	Payload     Payload
	Version     int64
	LastUpdated time.Time
}

// State returns the tag of the held payload.
func (s ConversationState) State() StateTag {
	if s.Payload == nil {
		return ""
	}
	return s.Payload.Tag()
}

// EncodePayload serializes p for storage.
func EncodePayload(p Payload) ([]byte, error) {
	if p == nil {
		return nil, ErrUnknownState
	}
	return json.Marshal(p)
}

// DecodePayload restores a payload stored under tag.
func DecodePayload(tag StateTag, raw []byte) (Payload, error) {
	switch tag {
	case StateAwaitingScheduleConfirmation:
		var p ScheduleConfirmationPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", tag, err)
		}
		return p, nil
	case StateAwaitingSlotChoice:
		var p SlotChoicePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", tag, err)
		}
		return p, nil
	case StateAwaitingTaskCompletion:
		var p TaskCompletionPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", tag, err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownState, tag)
	}
}
