package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"task-scheduling-assistant/internal/calendar"
	"task-scheduling-assistant/internal/model"
	"task-scheduling-assistant/internal/scheduling"
	"task-scheduling-assistant/internal/scheduling/repository"
	"task-scheduling-assistant/internal/slotfinder"
	pkgLog "task-scheduling-assistant/pkg/log"
)

const maxOptions = 3

// session is what one transition reads before acting.
type session struct {
	userID string
	prefs  model.UserPreferences
	state  *model.ConversationState
	// detached transitions must not end a conversation they did not start from.
	detached bool
}

func (s *session) version() int64 {
	if s.state == nil {
		return 0
	}
	return s.state.Version
}

// begin detaches the transition from the caller's cancellation and takes the user's lock.
func (uc *implUseCase) begin(ctx context.Context, userID string) (context.Context, func()) {
	ctx = pkgLog.WithUserID(context.WithoutCancel(ctx), userID)
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	unlock := uc.locks.Lock(userID)
	return ctx, func() {
		unlock()
		cancel()
	}
}

// load reads preferences and the live conversation. Preferences always hold usable values.
func (uc *implUseCase) load(ctx context.Context, userID string) (session, error) {
	s := session{userID: userID, prefs: model.DefaultPreferences(userID)}

	prefs, err := uc.repo.GetPreferences(ctx, userID)
	if err != nil {
		uc.l.Warnf(ctx, "load: preferences for %s: %v", userID, err)
	} else {
		s.prefs = prefs
	}

	st, found, err := uc.repo.GetState(ctx, userID)
	if err != nil {
		return s, fmt.Errorf("load state: %w", err)
	}
	if found {
		s.state = &st
	}
	return s, nil
}

func (uc *implUseCase) t(s *session, id string, data map[string]any) string {
	return uc.tr.T(s.prefs.Language, id, data)
}

// finish deletes the conversation row this transition started from.
func (uc *implUseCase) finish(ctx context.Context, s *session) error {
	if s.state == nil || s.detached {
		return nil
	}
	err := uc.repo.DeleteState(ctx, repository.DeleteStateOptions{UserID: s.userID, ExpectedVersion: s.state.Version})
	if errors.Is(err, repository.ErrVersionConflict) {
		return scheduling.ErrStateConflict
	}
	return err
}

// advance replaces the conversation row with p.
func (uc *implUseCase) advance(ctx context.Context, s *session, p model.Payload) error {
	st, err := uc.repo.SaveState(ctx, repository.SaveStateOptions{
		UserID:          s.userID,
		Payload:         p,
		ExpectedVersion: s.version(),
	})
	if errors.Is(err, repository.ErrVersionConflict) {
		return scheduling.ErrStateConflict
	}
	if err != nil {
		return err
	}
	s.state = &st
	s.detached = false
	return nil
}

func (uc *implUseCase) remaining(s *session) model.StateTag {
	if s.detached {
		return current(s)
	}
	return ""
}

func current(s *session) model.StateTag {
	if s.state == nil {
		return ""
	}
	return s.state.State()
}

// end closes the conversation with a terminal reply.
func (uc *implUseCase) end(ctx context.Context, s *session, id string, data map[string]any) scheduling.MessageOutput {
	if err := uc.finish(ctx, s); err != nil {
		uc.l.Warnf(ctx, "end: %v", err)
		return scheduling.MessageOutput{Handled: true, Reply: uc.t(s, messageFor(err), nil)}
	}
	return scheduling.MessageOutput{Handled: true, Reply: uc.t(s, id, data), State: uc.remaining(s)}
}

// next moves the conversation to p.
func (uc *implUseCase) next(ctx context.Context, s *session, p model.Payload, id string, data map[string]any) scheduling.MessageOutput {
	if err := uc.advance(ctx, s, p); err != nil {
		uc.l.Warnf(ctx, "next: %v", err)
		return scheduling.MessageOutput{Handled: true, Reply: uc.t(s, messageFor(err), nil), State: current(s)}
	}
	return scheduling.MessageOutput{Handled: true, Reply: uc.t(s, id, data), State: p.Tag()}
}

// stay re-prompts without touching the conversation.
func (uc *implUseCase) stay(s *session, text string) scheduling.MessageOutput {
	return scheduling.MessageOutput{Handled: true, Reply: text, State: current(s)}
}

// abort clears the conversation and renders cause as an apology.
func (uc *implUseCase) abort(ctx context.Context, s *session, cause error) scheduling.MessageOutput {
	uc.l.Warnf(ctx, "abort: %v", cause)
	if err := uc.finish(ctx, s); err != nil {
		uc.l.Warnf(ctx, "abort: clear state: %v", err)
	}
	return scheduling.MessageOutput{Handled: true, Reply: uc.t(s, messageFor(cause), nil), State: uc.remaining(s)}
}

func messageFor(err error) string {
	switch {
	case errors.Is(err, scheduling.ErrStateConflict):
		return "stateConflict"
	case errors.Is(err, scheduling.ErrTaskNotFound):
		return "taskNotFound"
	case errors.Is(err, scheduling.ErrEventNotFound):
		return "eventNotFound"
	case errors.Is(err, scheduling.ErrExternalService):
		return "calendarError"
	default:
		return "internalError"
	}
}

// findSlots checks the calendar connection and ranks free slots for t.
func (uc *implUseCase) findSlots(ctx context.Context, s *session, t model.Task) ([]model.Slot, error) {
	connected, err := uc.calendar.IsConnected(ctx, s.userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", scheduling.ErrExternalService, err)
	}
	if !connected {
		return nil, scheduling.ErrCalendarNotConnected
	}

	out, err := uc.finder.FindBestSlots(ctx, slotfinder.FindInput{
		UserID:          s.userID,
		DurationMinutes: t.DurationMinutes(),
		Priority:        t.Priority,
		EnergyLevel:     t.EnergyLevel,
		Deadline:        t.Deadline,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", scheduling.ErrExternalService, err)
	}
	if len(out.Slots) == 0 {
		return nil, scheduling.ErrNoCapacity
	}
	return out.Slots, nil
}

// offer records slots[0] as the task's proposal and asks the user to confirm it.
func (uc *implUseCase) offer(ctx context.Context, s *session, t model.Task, slots []model.Slot) error {
	start, end := slots[0].Start, slots[0].End
	t.ProposedStart, t.ProposedEnd = &start, &end
	if err := uc.repo.UpdateTask(ctx, t); err != nil {
		uc.l.Warnf(ctx, "offer: record proposal for task %s: %v", t.ID, err)
	}
	return uc.advance(ctx, s, model.ScheduleConfirmationPayload{TaskID: t.ID, Slots: slots})
}

// eventAndTask loads an event owned by the user, by internal or external id, and its task.
func (uc *implUseCase) eventAndTask(ctx context.Context, userID, eventID string) (model.ScheduledEvent, model.Task, error) {
	if eventID == "" {
		return model.ScheduledEvent{}, model.Task{}, scheduling.ErrEventNotFound
	}

	ev, err := uc.repo.GetEvent(ctx, repository.GetEventOptions{ID: eventID, UserID: userID})
	if err != nil {
		return model.ScheduledEvent{}, model.Task{}, err
	}
	if ev.ID == "" {
		ev, err = uc.repo.GetEvent(ctx, repository.GetEventOptions{ExternalEventID: eventID, UserID: userID})
		if err != nil {
			return model.ScheduledEvent{}, model.Task{}, err
		}
	}
	if ev.ID == "" {
		return model.ScheduledEvent{}, model.Task{}, scheduling.ErrEventNotFound
	}

	t, err := uc.repo.GetTask(ctx, ev.TaskID)
	if err != nil {
		return model.ScheduledEvent{}, model.Task{}, err
	}
	if t.ID == "" || t.UserID != userID {
		return model.ScheduledEvent{}, model.Task{}, scheduling.ErrTaskNotFound
	}
	return ev, t, nil
}

// placeEvent puts slot on the calendar. The task's existing event is moved when it still
// exists; otherwise a new event is created and insert is true.
func (uc *implUseCase) placeEvent(ctx context.Context, s *session, t model.Task, slot model.Slot) (model.ScheduledEvent, bool, error) {
	if t.ExternalEventID != "" {
		out, err := uc.calendar.UpdateEvent(ctx, calendar.UpdateEventInput{
			UserID:   s.userID,
			EventID:  t.ExternalEventID,
			Start:    slot.Start,
			End:      slot.End,
			Timezone: s.prefs.Timezone,
		})
		switch {
		case errors.Is(err, calendar.ErrEventNotFound):
			uc.l.Infof(ctx, "placeEvent: event %s is gone, creating a new one", t.ExternalEventID)
		case err != nil:
			return model.ScheduledEvent{}, false, fmt.Errorf("%w: %w", scheduling.ErrExternalService, err)
		case !out.Success:
			return model.ScheduledEvent{}, false, scheduling.ErrExternalService
		default:
			return uc.movedEvent(ctx, s, t, slot)
		}
	}

	out, err := uc.calendar.CreateEvent(ctx, calendar.CreateEventInput{
		UserID:      s.userID,
		TaskID:      t.ID,
		Title:       t.Title,
		Description: t.Description,
		Start:       slot.Start,
		End:         slot.End,
		Timezone:    s.prefs.Timezone,
	})
	if err != nil {
		return model.ScheduledEvent{}, false, fmt.Errorf("%w: %w", scheduling.ErrExternalService, err)
	}
	if !out.Success || out.EventID == "" {
		return model.ScheduledEvent{}, false, scheduling.ErrExternalService
	}
	return newEvent(t, out.EventID, slot), true, nil
}

func (uc *implUseCase) movedEvent(ctx context.Context, s *session, t model.Task, slot model.Slot) (model.ScheduledEvent, bool, error) {
	ev, err := uc.repo.GetEvent(ctx, repository.GetEventOptions{ExternalEventID: t.ExternalEventID, UserID: s.userID})
	if err != nil {
		return ev, false, err
	}
	if ev.ID == "" {
		return newEvent(t, t.ExternalEventID, slot), true, nil
	}
	ev.StartTime, ev.EndTime = slot.Start, slot.End
	ev.UserResponse = model.ResponsePending
	ev.RescheduledCount++
	ev.ReminderSentAt, ev.PostCheckSentAt = nil, nil
	return ev, false, nil
}

func newEvent(t model.Task, externalID string, slot model.Slot) model.ScheduledEvent {
	return model.ScheduledEvent{
		TaskID:          t.ID,
		UserID:          t.UserID,
		ExternalEventID: externalID,
		StartTime:       slot.Start,
		EndTime:         slot.End,
		UserResponse:    model.ResponsePending,
	}
}

// formatOptions renders a numbered list of slot labels.
func formatOptions(options []model.Slot) string {
	var b strings.Builder
	for i, o := range options {
		fmt.Fprintf(&b, "%d. %s\n", i+1, o.Label)
	}
	return strings.TrimRight(b.String(), "\n")
}
