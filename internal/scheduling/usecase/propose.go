package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"task-scheduling-assistant/internal/model"
	"task-scheduling-assistant/internal/scheduling"
	"task-scheduling-assistant/internal/scheduling/repository"
	"task-scheduling-assistant/pkg/datemath"
)

// CreateTask stores the task, then proposes a slot for it.
func (uc *implUseCase) CreateTask(ctx context.Context, sc model.Scope, input scheduling.CreateTaskInput) (scheduling.CreateTaskOutput, error) {
	if sc.UserID == "" {
		return scheduling.CreateTaskOutput{}, scheduling.ErrEmptyUser
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return scheduling.CreateTaskOutput{}, scheduling.ErrEmptyTitle
	}

	prefs, err := uc.repo.GetPreferences(ctx, sc.UserID)
	if err != nil {
		return scheduling.CreateTaskOutput{}, err
	}
	deadline, err := uc.parseDeadline(input.Deadline, prefs.Timezone)
	if err != nil {
		return scheduling.CreateTaskOutput{}, err
	}

	t, err := uc.repo.CreateTask(ctx, repository.CreateTaskOptions{
		UserID:           sc.UserID,
		Title:            title,
		Description:      strings.TrimSpace(input.Description),
		EstimatedMinutes: input.EstimatedMinutes,
		Priority:         clamp(input.Priority, 0, 4),
		EnergyLevel:      clamp(input.EnergyLevel, 0, 3),
		Deadline:         deadline,
	})
	if err != nil {
		return scheduling.CreateTaskOutput{}, err
	}
	uc.l.Infof(ctx, "CreateTask: user=%s task=%s", sc.UserID, t.ID)

	proposal, err := uc.ProposeForTask(ctx, sc, scheduling.ProposeInput{TaskID: t.ID})
	if err != nil {
		return scheduling.CreateTaskOutput{Task: t}, err
	}
	return scheduling.CreateTaskOutput{Task: t, Proposal: proposal}, nil
}

func (uc *implUseCase) parseDeadline(value, timezone string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parser, err := datemath.NewParser(timezone)
	if err != nil {
		return nil, errors.Join(scheduling.ErrInvalidDeadline, err)
	}
	d, err := parser.Parse(value, uc.clock())
	if err != nil {
		return nil, errors.Join(scheduling.ErrInvalidDeadline, err)
	}
	d = d.UTC()
	return &d, nil
}

// ProposeForTask offers the best slot for the task, replacing any live conversation.
func (uc *implUseCase) ProposeForTask(ctx context.Context, sc model.Scope, input scheduling.ProposeInput) (scheduling.ProposeOutput, error) {
	if sc.UserID == "" {
		return scheduling.ProposeOutput{}, scheduling.ErrEmptyUser
	}
	if input.TaskID == "" {
		return scheduling.ProposeOutput{}, scheduling.ErrTaskNotFound
	}

	ctx, done := uc.begin(ctx, sc.UserID)
	defer done()

	s, err := uc.load(ctx, sc.UserID)
	if err != nil {
		return scheduling.ProposeOutput{}, err
	}

	t, err := uc.repo.GetTask(ctx, input.TaskID)
	if err != nil {
		return scheduling.ProposeOutput{}, err
	}
	if t.ID == "" || t.UserID != sc.UserID {
		return scheduling.ProposeOutput{}, scheduling.ErrTaskNotFound
	}

	data := map[string]any{"Title": t.Title}

	slots, err := uc.findSlots(ctx, &s, t)
	switch {
	case errors.Is(err, scheduling.ErrCalendarNotConnected):
		return scheduling.ProposeOutput{Reply: uc.t(&s, "calendarNotConnected", data)}, nil
	case errors.Is(err, scheduling.ErrNoCapacity):
		uc.l.Infof(ctx, "ProposeForTask: no slot for task %s", t.ID)
		return scheduling.ProposeOutput{Reply: uc.t(&s, "noSlotAvailable", data)}, nil
	case err != nil:
		uc.l.Errorf(ctx, "ProposeForTask: find slots for task %s: %v", t.ID, err)
		return scheduling.ProposeOutput{Reply: uc.t(&s, messageFor(err), nil)}, nil
	}

	if err := uc.offer(ctx, &s, t, slots); err != nil {
		uc.l.Warnf(ctx, "ProposeForTask: save proposal for task %s: %v", t.ID, err)
		return scheduling.ProposeOutput{Reply: uc.t(&s, messageFor(err), nil)}, nil
	}

	data["Slot"] = slots[0].Label
	data["Duration"] = datemath.FormatDuration(t.DurationMinutes())
	uc.l.Infof(ctx, "ProposeForTask: task=%s slots=%d first=%s", t.ID, len(slots), slots[0].Start.Format(time.RFC3339))

	return scheduling.ProposeOutput{
		Proposed: true,
		Reply:    uc.t(&s, "proposal", data),
		Slots:    slots,
	}, nil
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
