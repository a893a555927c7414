package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"task-scheduling-assistant/internal/calendar"
	"task-scheduling-assistant/internal/model"
	"task-scheduling-assistant/internal/scheduling"
	"task-scheduling-assistant/internal/scheduling/repository"
)

// RequestCompletion asks whether the task behind an ended event was done.
// A user in the middle of another conversation is left alone; the caller retries later.
func (uc *implUseCase) RequestCompletion(ctx context.Context, sc model.Scope, input scheduling.CompletionInput) (scheduling.CompletionOutput, error) {
	if sc.UserID == "" {
		return scheduling.CompletionOutput{}, scheduling.ErrEmptyUser
	}

	ctx, done := uc.begin(ctx, sc.UserID)
	defer done()

	s, err := uc.load(ctx, sc.UserID)
	if err != nil {
		return scheduling.CompletionOutput{}, err
	}

	ev, t, err := uc.eventAndTask(ctx, sc.UserID, input.EventID)
	if err != nil {
		return scheduling.CompletionOutput{}, err
	}

	if t.Completed {
		now := uc.clock()
		t.SchedulingStatus = model.StatusDone
		if t.ExternalEventID == "" {
			t.ExternalEventID = ev.ExternalEventID
		}
		ev.UserResponse = model.ResponseDone
		ev.PostCheckSentAt = &now
		if err := uc.repo.CommitTaskEvent(ctx, repository.CommitTaskEventOptions{Task: t, Event: ev}); err != nil {
			return scheduling.CompletionOutput{}, err
		}
		uc.l.Infof(ctx, "RequestCompletion: task %s already completed, event %s closed", t.ID, ev.ID)
		return scheduling.CompletionOutput{}, nil
	}

	if s.state != nil {
		if p, ok := s.state.Payload.(model.TaskCompletionPayload); !ok || p.EventID != ev.ID {
			uc.l.Infof(ctx, "RequestCompletion: user busy in %s, skipping event %s", s.state.State(), ev.ID)
			return scheduling.CompletionOutput{}, nil
		}
	}

	payload := model.TaskCompletionPayload{EventID: ev.ID, TaskID: t.ID, TaskTitle: t.Title}
	if err := uc.advance(ctx, &s, payload); err != nil {
		return scheduling.CompletionOutput{}, err
	}
	if err := uc.repo.MarkPostCheckSent(ctx, ev.ID, uc.clock()); err != nil {
		uc.l.Warnf(ctx, "RequestCompletion: mark post-check for %s: %v", ev.ID, err)
	}

	return scheduling.CompletionOutput{
		Requested: true,
		Reply:     uc.t(&s, "completionPrompt", map[string]any{"Title": t.Title}),
	}, nil
}

// RespondToEvent applies a structured answer. It only ends the live conversation
// when that conversation is the completion prompt for the same event.
// Events already answered done or not done are rejected with ErrEventClosed.
func (uc *implUseCase) RespondToEvent(ctx context.Context, sc model.Scope, input scheduling.RespondInput) (scheduling.MessageOutput, error) {
	if sc.UserID == "" {
		return scheduling.MessageOutput{}, scheduling.ErrEmptyUser
	}
	m, err := matchResponse(input)
	if err != nil {
		return scheduling.MessageOutput{}, err
	}

	ctx, done := uc.begin(ctx, sc.UserID)
	defer done()

	s, err := uc.load(ctx, sc.UserID)
	if err != nil {
		return scheduling.MessageOutput{}, err
	}

	ev, t, err := uc.eventAndTask(ctx, sc.UserID, input.EventID)
	if err != nil {
		return scheduling.MessageOutput{}, err
	}
	if ev.Closed() {
		return scheduling.MessageOutput{}, fmt.Errorf("%w: %s is %s", scheduling.ErrEventClosed, ev.ID, ev.UserResponse)
	}

	s.detached = true
	if s.state != nil {
		if p, ok := s.state.Payload.(model.TaskCompletionPayload); ok && p.EventID == ev.ID {
			s.detached = false
		}
	}

	return uc.settle(ctx, &s, t, ev, m), nil
}

func matchResponse(input scheduling.RespondInput) (scheduling.Match, error) {
	switch input.Response {
	case model.ResponseDone:
		return scheduling.Match{Intent: scheduling.IntentDone}, nil
	case model.ResponseNotDone:
		return scheduling.Match{Intent: scheduling.IntentNotDone}, nil
	case model.ResponseSnoozed:
		minutes := input.SnoozeMinutes
		if minutes == 0 {
			minutes = scheduling.DefaultSnoozeMinutes
		}
		if minutes < 1 || minutes > scheduling.MaxSnoozeMinutes {
			return scheduling.Match{}, fmt.Errorf("%w: snooze %d minutes", scheduling.ErrInvalidResponse, minutes)
		}
		return scheduling.Match{Intent: scheduling.IntentSnooze, Number: minutes}, nil
	default:
		return scheduling.Match{}, fmt.Errorf("%w: %q", scheduling.ErrInvalidResponse, input.Response)
	}
}

func (uc *implUseCase) onCompletion(ctx context.Context, s *session, p model.TaskCompletionPayload, m scheduling.Match) scheduling.MessageOutput {
	if m.Intent != scheduling.IntentDone && m.Intent != scheduling.IntentNotDone && m.Intent != scheduling.IntentSnooze {
		return uc.stay(s, uc.t(s, "completionPrompt", map[string]any{"Title": p.TaskTitle}))
	}

	ev, t, err := uc.eventAndTask(ctx, s.userID, p.EventID)
	if err != nil {
		return uc.abort(ctx, s, err)
	}
	return uc.settle(ctx, s, t, ev, m)
}

// settle records done, not done or snooze for an event.
func (uc *implUseCase) settle(ctx context.Context, s *session, t model.Task, ev model.ScheduledEvent, m scheduling.Match) scheduling.MessageOutput {
	if t.ExternalEventID == "" {
		t.ExternalEventID = ev.ExternalEventID
	}

	switch m.Intent {
	case scheduling.IntentDone:
		return uc.markDone(ctx, s, t, ev)
	case scheduling.IntentNotDone:
		return uc.markNotDone(ctx, s, t, ev)
	default:
		return uc.snooze(ctx, s, t, ev, m.Number)
	}
}

func (uc *implUseCase) markDone(ctx context.Context, s *session, t model.Task, ev model.ScheduledEvent) scheduling.MessageOutput {
	now := uc.clock()
	t.Completed = true
	t.SchedulingStatus = model.StatusDone
	ev.UserResponse = model.ResponseDone
	ev.PostCheckSentAt = &now

	if err := uc.repo.CommitTaskEvent(ctx, repository.CommitTaskEventOptions{Task: t, Event: ev}); err != nil {
		return uc.abort(ctx, s, err)
	}
	uc.l.Infof(ctx, "markDone: task=%s event=%s", t.ID, ev.ID)
	return uc.end(ctx, s, "completionDone", map[string]any{"Title": t.Title})
}

// markNotDone records the miss and proposes a new slot when one exists.
// A live conversation about something else is kept; the task then waits for a later proposal.
func (uc *implUseCase) markNotDone(ctx context.Context, s *session, t model.Task, ev model.ScheduledEvent) scheduling.MessageOutput {
	now := uc.clock()
	t.SchedulingStatus = model.StatusNotDone
	ev.UserResponse = model.ResponseNotDone
	ev.PostCheckSentAt = &now

	if err := uc.repo.CommitTaskEvent(ctx, repository.CommitTaskEventOptions{Task: t, Event: ev}); err != nil {
		return uc.abort(ctx, s, err)
	}

	data := map[string]any{"Title": t.Title}
	if s.detached && s.state != nil {
		uc.l.Infof(ctx, "markNotDone: user busy in %s, no re-proposal for task %s", s.state.State(), t.ID)
		return uc.end(ctx, s, "notDoneNoSlot", data)
	}

	slots, err := uc.findSlots(ctx, s, t)
	if err != nil {
		uc.l.Infof(ctx, "markNotDone: no re-proposal for task %s: %v", t.ID, err)
		return uc.end(ctx, s, "notDoneNoSlot", data)
	}

	if err := uc.offer(ctx, s, t, slots); err != nil {
		uc.l.Warnf(ctx, "markNotDone: save proposal for task %s: %v", t.ID, err)
		return scheduling.MessageOutput{Handled: true, Reply: uc.t(s, messageFor(err), nil), State: current(s)}
	}
	data["Slot"] = slots[0].Label
	return scheduling.MessageOutput{
		Handled: true,
		Reply:   uc.t(s, "reproposal", data),
		State:   model.StateAwaitingScheduleConfirmation,
	}
}

// snooze moves the event to now+minutes, keeping its duration.
func (uc *implUseCase) snooze(ctx context.Context, s *session, t model.Task, ev model.ScheduledEvent, minutes int) scheduling.MessageOutput {
	if minutes <= 0 {
		minutes = scheduling.DefaultSnoozeMinutes
	}
	length := ev.Duration()
	if length <= 0 {
		length = t.Duration()
	}
	start := uc.clock().Add(time.Duration(minutes) * time.Minute).UTC()
	end := start.Add(length)

	out, err := uc.calendar.UpdateEvent(ctx, calendar.UpdateEventInput{
		UserID:   s.userID,
		EventID:  ev.ExternalEventID,
		Start:    start,
		End:      end,
		Timezone: s.prefs.Timezone,
	})
	switch {
	case errors.Is(err, calendar.ErrEventNotFound):
		return uc.abort(ctx, s, fmt.Errorf("%w: %w", scheduling.ErrEventNotFound, err))
	case err != nil:
		return uc.abort(ctx, s, fmt.Errorf("%w: %w", scheduling.ErrExternalService, err))
	case !out.Success:
		return uc.abort(ctx, s, scheduling.ErrExternalService)
	}

	ev.StartTime, ev.EndTime = start, end
	ev.UserResponse = model.ResponseSnoozed
	ev.RescheduledCount++
	ev.ReminderSentAt, ev.PostCheckSentAt = nil, nil
	t.SchedulingStatus = model.StatusSnoozed
	t.ScheduledFor = &start

	if err := uc.repo.CommitTaskEvent(ctx, repository.CommitTaskEventOptions{Task: t, Event: ev}); err != nil {
		return uc.abort(ctx, s, err)
	}
	uc.l.Infof(ctx, "snooze: task=%s event=%s minutes=%d", t.ID, ev.ID, minutes)
	return uc.end(ctx, s, "snoozed", map[string]any{"Minutes": minutes, "Title": t.Title})
}
