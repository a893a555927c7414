package postgre

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"task-scheduling-assistant/internal/model"
	repo "task-scheduling-assistant/internal/scheduling/repository"
	"task-scheduling-assistant/internal/storage"
)

const taskColumns = `id, user_id, title, description, estimated_minutes, priority, energy_level, deadline,
	completed, scheduling_status, scheduled_for, proposed_slot_start, proposed_slot_end,
	external_event_id, created_at, updated_at`

type taskRow struct {
	ID                string         `db:"id"`
	UserID            string         `db:"user_id"`
	Title             string         `db:"title"`
	Description       string         `db:"description"`
	EstimatedMinutes  int            `db:"estimated_minutes"`
	Priority          int            `db:"priority"`
	EnergyLevel       int            `db:"energy_level"`
	Deadline          sql.NullTime   `db:"deadline"`
	Completed         bool           `db:"completed"`
	SchedulingStatus  string         `db:"scheduling_status"`
	ScheduledFor      sql.NullTime   `db:"scheduled_for"`
	ProposedSlotStart sql.NullTime   `db:"proposed_slot_start"`
	ProposedSlotEnd   sql.NullTime   `db:"proposed_slot_end"`
	ExternalEventID   sql.NullString `db:"external_event_id"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

func (row taskRow) toModel() model.Task {
	return model.Task{
		ID:               row.ID,
		UserID:           row.UserID,
		Title:            row.Title,
		Description:      row.Description,
		EstimatedMinutes: row.EstimatedMinutes,
		Priority:         row.Priority,
		EnergyLevel:      row.EnergyLevel,
		Deadline:         storage.TimePtr(row.Deadline),
		Completed:        row.Completed,
		SchedulingStatus: model.SchedulingStatus(row.SchedulingStatus),
		ScheduledFor:     storage.TimePtr(row.ScheduledFor),
		ProposedStart:    storage.TimePtr(row.ProposedSlotStart),
		ProposedEnd:      storage.TimePtr(row.ProposedSlotEnd),
		ExternalEventID:  row.ExternalEventID.String,
		CreatedAt:        row.CreatedAt.UTC(),
		UpdatedAt:        row.UpdatedAt.UTC(),
	}
}

// CreateTask inserts an unscheduled task.
func (r *implRepository) CreateTask(ctx context.Context, opt repo.CreateTaskOptions) (model.Task, error) {
	now := storage.UTC(r.clock())
	t := model.Task{
		ID:               r.newID(),
		UserID:           opt.UserID,
		Title:            opt.Title,
		Description:      opt.Description,
		EstimatedMinutes: opt.EstimatedMinutes,
		Priority:         opt.Priority,
		EnergyLevel:      opt.EnergyLevel,
		Deadline:         opt.Deadline,
		SchedulingStatus: model.StatusUnscheduled,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	query := r.q(`INSERT INTO tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.UserID, t.Title, t.Description, t.EstimatedMinutes, t.Priority, t.EnergyLevel,
		storage.NullTime(t.Deadline), false, string(t.SchedulingStatus), nil, nil, nil, nil, now, now,
	)
	if err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("CreateTask"), err)
		return model.Task{}, repo.ErrFailedToInsert
	}

	if t.Deadline != nil {
		d := storage.UTC(*t.Deadline)
		t.Deadline = &d
	}
	return t, nil
}

// GetTask returns a zero-value Task when not found.
func (r *implRepository) GetTask(ctx context.Context, id string) (model.Task, error) {
	var row taskRow
	err := r.db.GetContext(ctx, &row, r.q(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, nil
	}
	if err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("GetTask"), err)
		return model.Task{}, repo.ErrFailedToGet
	}
	return row.toModel(), nil
}

// ListTasks returns a user's tasks, newest first.
func (r *implRepository) ListTasks(ctx context.Context, opt repo.ListTasksOptions) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ?`
	args := []any{opt.UserID}
	if opt.Status != "" {
		query += ` AND scheduling_status = ?`
		args = append(args, string(opt.Status))
	}
	query += ` ORDER BY created_at DESC`
	if opt.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opt.Limit)
	}

	var rows []taskRow
	if err := r.db.SelectContext(ctx, &rows, r.q(query), args...); err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("ListTasks"), err)
		return nil, repo.ErrFailedToList
	}

	tasks := make([]model.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.toModel())
	}
	return tasks, nil
}

// UpdateTask overwrites the mutable fields of a task.
func (r *implRepository) UpdateTask(ctx context.Context, t model.Task) error {
	return r.updateTask(ctx, r.db, t)
}

func (r *implRepository) updateTask(ctx context.Context, ext sqlx.ExtContext, t model.Task) error {
	if !t.Consistent() {
		r.l.Warnf(ctx, "%s: task %s status=%s event=%q", r.dsn("UpdateTask"), t.ID, t.SchedulingStatus, t.ExternalEventID)
		return repo.ErrInconsistentTask
	}

	query := r.q(`UPDATE tasks SET
		title = ?, description = ?, estimated_minutes = ?, priority = ?, energy_level = ?, deadline = ?,
		completed = ?, scheduling_status = ?, scheduled_for = ?, proposed_slot_start = ?, proposed_slot_end = ?,
		external_event_id = ?, updated_at = ?
		WHERE id = ?`)
	res, err := ext.ExecContext(ctx, query,
		t.Title, t.Description, t.EstimatedMinutes, t.Priority, t.EnergyLevel, storage.NullTime(t.Deadline),
		t.Completed, string(t.SchedulingStatus), storage.NullTime(t.ScheduledFor),
		storage.NullTime(t.ProposedStart), storage.NullTime(t.ProposedEnd),
		storage.NullString(t.ExternalEventID), storage.UTC(r.clock()), t.ID,
	)
	if err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("UpdateTask"), err)
		return repo.ErrFailedToUpdate
	}
	if n, _ := res.RowsAffected(); n == 0 {
		r.l.Warnf(ctx, "%s: task %s not found", r.dsn("UpdateTask"), t.ID)
		return repo.ErrFailedToUpdate
	}
	return nil
}
