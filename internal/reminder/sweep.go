package reminder

import (
	"context"
	"errors"

	"task-scheduling-assistant/internal/model"
	"task-scheduling-assistant/internal/scheduling"
	"task-scheduling-assistant/internal/scheduling/repository"
	"task-scheduling-assistant/pkg/datemath"
	"task-scheduling-assistant/pkg/log"
)

// Run does one pass. A failure on one event is logged and the pass continues;
// the event stays unmarked and is retried on the next tick while still in its window.
func (s *implSweeper) Run(ctx context.Context) (Result, error) {
	now := s.opt.Clock().UTC()
	var res Result

	due, err := s.repo.ListDueReminders(ctx, repository.ListDueEventsOptions{
		From:  now,
		To:    now.Add(s.opt.LeadTime),
		Limit: defaultBatch,
	})
	if err != nil {
		return res, err
	}
	for _, ev := range due {
		if s.remind(ctx, ev) {
			res.Reminders++
		} else {
			res.Skipped++
		}
	}

	ended, err := s.repo.ListDuePostChecks(ctx, repository.ListDueEventsOptions{
		From:  now.Add(-s.opt.PostCheckTo),
		To:    now.Add(-s.opt.PostCheckFrom),
		Limit: defaultBatch,
	})
	if err != nil {
		return res, err
	}
	for _, ev := range ended {
		if s.postCheck(ctx, ev) {
			res.PostChecks++
		} else {
			res.Skipped++
		}
	}

	if res.Reminders+res.PostChecks > 0 {
		s.l.Infof(ctx, "reminder.Run: reminders=%d post_checks=%d skipped=%d", res.Reminders, res.PostChecks, res.Skipped)
	}
	return res, nil
}

func (s *implSweeper) remind(ctx context.Context, ev model.ScheduledEvent) bool {
	ctx = log.WithUserID(ctx, ev.UserID)

	prefs, ok := s.preferences(ctx, ev.UserID)
	if !ok {
		return false
	}

	t, err := s.repo.GetTask(ctx, ev.TaskID)
	if err != nil {
		s.l.Errorf(ctx, "reminder.remind: get task %s: %v", ev.TaskID, err)
		return false
	}
	if t.ID == "" || t.Completed {
		s.mark(ctx, ev.ID)
		return false
	}

	text := s.tr.T(prefs.Language, "startReminder", map[string]any{
		"Title":    t.Title,
		"Duration": datemath.FormatDuration(int(ev.Duration().Minutes())),
	})
	if err := s.sender.Send(ctx, ev.UserID, text); err != nil {
		s.l.Warnf(ctx, "reminder.remind: send for event %s: %v", ev.ID, err)
		return false
	}
	s.mark(ctx, ev.ID)
	return true
}

func (s *implSweeper) mark(ctx context.Context, eventID string) {
	if err := s.repo.MarkReminderSent(ctx, eventID, s.opt.Clock().UTC()); err != nil {
		s.l.Warnf(ctx, "reminder.mark: %s: %v", eventID, err)
	}
}

func (s *implSweeper) postCheck(ctx context.Context, ev model.ScheduledEvent) bool {
	ctx = log.WithUserID(ctx, ev.UserID)

	if _, ok := s.preferences(ctx, ev.UserID); !ok {
		return false
	}

	out, err := s.uc.RequestCompletion(ctx, model.Scope{UserID: ev.UserID}, scheduling.CompletionInput{EventID: ev.ID})
	if err != nil {
		if !errors.Is(err, scheduling.ErrTaskNotFound) && !errors.Is(err, scheduling.ErrEventNotFound) {
			s.l.Errorf(ctx, "reminder.postCheck: event %s: %v", ev.ID, err)
		}
		return false
	}
	if !out.Requested {
		return false
	}

	if err := s.sendPrompt(ctx, ev.UserID, out.Reply); err != nil {
		s.l.Warnf(ctx, "reminder.postCheck: send for event %s: %v", ev.ID, err)
		return false
	}
	return true
}

// sendPrompt attaches the completion quick replies when the channel supports them.
func (s *implSweeper) sendPrompt(ctx context.Context, userID, text string) error {
	if ss, ok := s.sender.(scheduling.StateSender); ok {
		return ss.SendForState(ctx, userID, text, model.StateAwaitingTaskCompletion)
	}
	return s.sender.Send(ctx, userID, text)
}

// preferences reports false for users who turned notifications off.
func (s *implSweeper) preferences(ctx context.Context, userID string) (model.UserPreferences, bool) {
	prefs, err := s.repo.GetPreferences(ctx, userID)
	if err != nil {
		s.l.Errorf(ctx, "reminder.preferences: %v", err)
		return prefs, false
	}
	return prefs, prefs.NotificationsEnabled
}
