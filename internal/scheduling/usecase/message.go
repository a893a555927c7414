package usecase

import (
	"context"

	"task-scheduling-assistant/internal/model"
	"task-scheduling-assistant/internal/scheduling"
	"task-scheduling-assistant/internal/scheduling/repository"
)

// HandleMessage routes a free-text reply to the handler of the user's current step.
func (uc *implUseCase) HandleMessage(ctx context.Context, sc model.Scope, input scheduling.MessageInput) (scheduling.MessageOutput, error) {
	if sc.UserID == "" {
		return scheduling.MessageOutput{}, scheduling.ErrEmptyUser
	}

	ctx, done := uc.begin(ctx, sc.UserID)
	defer done()

	s, err := uc.load(ctx, sc.UserID)
	if err != nil {
		uc.l.Errorf(ctx, "HandleMessage: %v", err)
		return scheduling.MessageOutput{Handled: true, Reply: uc.t(&s, "internalError", nil)}, nil
	}
	if s.state == nil {
		return scheduling.MessageOutput{}, nil
	}

	m := scheduling.Interpret(s.state.State(), input.Text)
	uc.l.Infof(ctx, "HandleMessage: state=%s intent=%s", s.state.State(), m.Intent)

	switch p := s.state.Payload.(type) {
	case model.ScheduleConfirmationPayload:
		return uc.onConfirmation(ctx, &s, p, m), nil
	case model.SlotChoicePayload:
		return uc.onSlotChoice(ctx, &s, p, m), nil
	case model.TaskCompletionPayload:
		return uc.onCompletion(ctx, &s, p, m), nil
	default:
		return uc.abort(ctx, &s, model.ErrUnknownState), nil
	}
}

func (uc *implUseCase) onConfirmation(ctx context.Context, s *session, p model.ScheduleConfirmationPayload, m scheduling.Match) scheduling.MessageOutput {
	switch m.Intent {
	case scheduling.IntentAffirm:
		if len(p.Slots) == 0 {
			return uc.end(ctx, s, "declined", nil)
		}
		return uc.schedule(ctx, s, p.TaskID, p.Slots[0], "scheduled")

	case scheduling.IntentAlternatives:
		if len(p.Slots) <= 1 {
			return uc.stay(s, uc.t(s, "noAlternative", nil))
		}
		options := p.Slots[:min(len(p.Slots), maxOptions)]
		return uc.next(ctx, s,
			model.SlotChoicePayload{TaskID: p.TaskID, Options: options},
			"alternatives", map[string]any{"Options": formatOptions(options)})

	case scheduling.IntentDecline:
		return uc.end(ctx, s, "declined", nil)
	}

	label := ""
	if len(p.Slots) > 0 {
		label = p.Slots[0].Label
	}
	return uc.stay(s, uc.t(s, "confirmationReprompt", map[string]any{"Slot": label}))
}

func (uc *implUseCase) onSlotChoice(ctx context.Context, s *session, p model.SlotChoicePayload, m scheduling.Match) scheduling.MessageOutput {
	switch m.Intent {
	case scheduling.IntentDecline:
		return uc.end(ctx, s, "slotChoiceCancelled", nil)
	case scheduling.IntentChoice:
		if m.Number >= 1 && m.Number <= len(p.Options) {
			return uc.schedule(ctx, s, p.TaskID, p.Options[m.Number-1], "scheduledFromChoice")
		}
		uc.l.Infof(ctx, "onSlotChoice: %v: %d of %d", scheduling.ErrInvalidChoice, m.Number, len(p.Options))
	}
	return uc.stay(s, uc.t(s, "slotChoiceReprompt", map[string]any{
		"Count":   len(p.Options),
		"Options": formatOptions(p.Options),
	}))
}

// schedule books slot for the task, commits the task and its event, and ends the conversation.
func (uc *implUseCase) schedule(ctx context.Context, s *session, taskID string, slot model.Slot, messageID string) scheduling.MessageOutput {
	t, err := uc.repo.GetTask(ctx, taskID)
	if err != nil {
		return uc.abort(ctx, s, err)
	}
	if t.ID == "" || t.UserID != s.userID {
		return uc.abort(ctx, s, scheduling.ErrTaskNotFound)
	}

	ev, insert, err := uc.placeEvent(ctx, s, t, slot)
	if err != nil {
		return uc.abort(ctx, s, err)
	}

	start, end := slot.Start, slot.End
	t.SchedulingStatus = model.StatusScheduled
	t.ExternalEventID = ev.ExternalEventID
	t.ScheduledFor = &start
	t.ProposedStart, t.ProposedEnd = &start, &end
	t.Completed = false

	if err := uc.repo.CommitTaskEvent(ctx, repository.CommitTaskEventOptions{Task: t, Event: ev, InsertEvent: insert}); err != nil {
		uc.l.Errorf(ctx, "schedule: commit task %s event %s: %v", t.ID, ev.ExternalEventID, err)
		return uc.abort(ctx, s, err)
	}

	uc.l.Infof(ctx, "schedule: task=%s event=%s start=%s", t.ID, ev.ExternalEventID, slot.Start)
	return uc.end(ctx, s, messageID, map[string]any{"Title": t.Title, "Slot": slot.Label})
}
