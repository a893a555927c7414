package scheduling

import (
	"context"

	"task-scheduling-assistant/internal/model"
)

// UseCase negotiates calendar slots with a user through short text replies.
type UseCase interface {
	// CreateTask stores a task and immediately proposes a slot for it.
	CreateTask(ctx context.Context, sc model.Scope, input CreateTaskInput) (CreateTaskOutput, error)

	// ProposeForTask computes slots for the task and asks the user to confirm the best one.
	ProposeForTask(ctx context.Context, sc model.Scope, input ProposeInput) (ProposeOutput, error)

	// HandleMessage advances the user's live conversation. Handled is false when the user is idle.
	HandleMessage(ctx context.Context, sc model.Scope, input MessageInput) (MessageOutput, error)

	// RequestCompletion asks the user whether they finished the task behind an ended event.
	RequestCompletion(ctx context.Context, sc model.Scope, input CompletionInput) (CompletionOutput, error)

	// RespondToEvent applies a structured done / not_done / snoozed answer regardless of conversation state.
	RespondToEvent(ctx context.Context, sc model.Scope, input RespondInput) (MessageOutput, error)

	CurrentState(ctx context.Context, sc model.Scope) (model.ConversationState, bool, error)

	UpdatePreferences(ctx context.Context, sc model.Scope, input PreferencesInput) (model.UserPreferences, error)
}

// Sender pushes a reply to the user's messaging channel.
type Sender interface {
	Send(ctx context.Context, userID, text string) error
}

// StateSender is implemented by channels that can attach quick replies for the
// conversation step the message opens.
type StateSender interface {
	SendForState(ctx context.Context, userID, text string, state model.StateTag) error
}
