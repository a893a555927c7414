package postgre

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"task-scheduling-assistant/internal/model"
	repo "task-scheduling-assistant/internal/scheduling/repository"
	"task-scheduling-assistant/internal/storage"
)

const eventColumns = `id, task_id, user_id, external_event_id, start_time, end_time, user_response,
	rescheduled_count, reminder_sent_at, post_check_sent_at, created_at, updated_at`

type eventRow struct {
	ID               string       `db:"id"`
	TaskID           string       `db:"task_id"`
	UserID           string       `db:"user_id"`
	ExternalEventID  string       `db:"external_event_id"`
	StartTime        time.Time    `db:"start_time"`
	EndTime          time.Time    `db:"end_time"`
	UserResponse     string       `db:"user_response"`
	RescheduledCount int          `db:"rescheduled_count"`
	ReminderSentAt   sql.NullTime `db:"reminder_sent_at"`
	PostCheckSentAt  sql.NullTime `db:"post_check_sent_at"`
	CreatedAt        time.Time    `db:"created_at"`
	UpdatedAt        time.Time    `db:"updated_at"`
}

func (row eventRow) toModel() model.ScheduledEvent {
	return model.ScheduledEvent{
		ID:               row.ID,
		TaskID:           row.TaskID,
		UserID:           row.UserID,
		ExternalEventID:  row.ExternalEventID,
		StartTime:        row.StartTime.UTC(),
		EndTime:          row.EndTime.UTC(),
		UserResponse:     model.UserResponse(row.UserResponse),
		RescheduledCount: row.RescheduledCount,
		ReminderSentAt:   storage.TimePtr(row.ReminderSentAt),
		PostCheckSentAt:  storage.TimePtr(row.PostCheckSentAt),
		CreatedAt:        row.CreatedAt.UTC(),
		UpdatedAt:        row.UpdatedAt.UTC(),
	}
}

// GetEvent returns a zero-value ScheduledEvent when not found.
func (r *implRepository) GetEvent(ctx context.Context, opt repo.GetEventOptions) (model.ScheduledEvent, error) {
	var conds []string
	var args []any
	if opt.ID != "" {
		conds = append(conds, "id = ?")
		args = append(args, opt.ID)
	}
	if opt.ExternalEventID != "" {
		conds = append(conds, "external_event_id = ?")
		args = append(args, opt.ExternalEventID)
	}
	if opt.UserID != "" {
		conds = append(conds, "user_id = ?")
		args = append(args, opt.UserID)
	}
	if len(conds) == 0 {
		return model.ScheduledEvent{}, nil
	}

	var row eventRow
	query := `SELECT ` + eventColumns + ` FROM scheduled_events WHERE ` + strings.Join(conds, " AND ") + ` LIMIT 1`
	err := r.db.GetContext(ctx, &row, r.q(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ScheduledEvent{}, nil
	}
	if err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("GetEvent"), err)
		return model.ScheduledEvent{}, repo.ErrFailedToGet
	}
	return row.toModel(), nil
}

// ListDueReminders lists pending or snoozed events starting in [From, To] that got no reminder yet.
func (r *implRepository) ListDueReminders(ctx context.Context, opt repo.ListDueEventsOptions) ([]model.ScheduledEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM scheduled_events
		WHERE start_time >= ? AND start_time <= ?
		AND reminder_sent_at IS NULL
		AND user_response IN ('pending', 'snoozed')
		ORDER BY start_time`
	return r.listEvents(ctx, "ListDueReminders", query, opt)
}

// ListDuePostChecks lists pending or snoozed events ending in [From, To] that got no post-check yet.
func (r *implRepository) ListDuePostChecks(ctx context.Context, opt repo.ListDueEventsOptions) ([]model.ScheduledEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM scheduled_events
		WHERE end_time >= ? AND end_time <= ?
		AND post_check_sent_at IS NULL
		AND user_response IN ('pending', 'snoozed')
		ORDER BY end_time`
	return r.listEvents(ctx, "ListDuePostChecks", query, opt)
}

func (r *implRepository) listEvents(ctx context.Context, method, query string, opt repo.ListDueEventsOptions) ([]model.ScheduledEvent, error) {
	args := []any{storage.UTC(opt.From), storage.UTC(opt.To)}
	if opt.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opt.Limit)
	}

	var rows []eventRow
	if err := r.db.SelectContext(ctx, &rows, r.q(query), args...); err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn(method), err)
		return nil, repo.ErrFailedToList
	}

	events := make([]model.ScheduledEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, row.toModel())
	}
	return events, nil
}

func (r *implRepository) MarkReminderSent(ctx context.Context, id string, at time.Time) error {
	return r.markSent(ctx, "MarkReminderSent", "reminder_sent_at", id, at)
}

func (r *implRepository) MarkPostCheckSent(ctx context.Context, id string, at time.Time) error {
	return r.markSent(ctx, "MarkPostCheckSent", "post_check_sent_at", id, at)
}

func (r *implRepository) markSent(ctx context.Context, method, column, id string, at time.Time) error {
	query := r.q(`UPDATE scheduled_events SET ` + column + ` = ?, updated_at = ? WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, storage.UTC(at), storage.UTC(r.clock()), id); err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn(method), err)
		return repo.ErrFailedToUpdate
	}
	return nil
}

// ListExternalEventIDs returns the calendar event ids known for a user.
func (r *implRepository) ListExternalEventIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	var ids []string
	query := r.q(`SELECT external_event_id FROM scheduled_events WHERE user_id = ?`)
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("ListExternalEventIDs"), err)
		return nil, repo.ErrFailedToList
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func (r *implRepository) insertEvent(ctx context.Context, ext sqlx.ExtContext, e model.ScheduledEvent) error {
	now := storage.UTC(r.clock())
	query := r.q(`INSERT INTO scheduled_events (` + eventColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := ext.ExecContext(ctx, query,
		e.ID, e.TaskID, e.UserID, e.ExternalEventID, storage.UTC(e.StartTime), storage.UTC(e.EndTime),
		string(e.UserResponse), e.RescheduledCount, storage.NullTime(e.ReminderSentAt),
		storage.NullTime(e.PostCheckSentAt), now, now,
	)
	if err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("insertEvent"), err)
		return repo.ErrFailedToInsert
	}
	return nil
}

// updateEvent rewrites an event; rescheduled_count never goes down.
func (r *implRepository) updateEvent(ctx context.Context, ext sqlx.ExtContext, e model.ScheduledEvent) error {
	query := r.q(`UPDATE scheduled_events SET
		external_event_id = ?, start_time = ?, end_time = ?, user_response = ?,
		rescheduled_count = CASE WHEN rescheduled_count > ? THEN rescheduled_count ELSE ? END,
		reminder_sent_at = ?, post_check_sent_at = ?, updated_at = ?
		WHERE id = ?`)
	res, err := ext.ExecContext(ctx, query,
		e.ExternalEventID, storage.UTC(e.StartTime), storage.UTC(e.EndTime), string(e.UserResponse),
		e.RescheduledCount, e.RescheduledCount,
		storage.NullTime(e.ReminderSentAt), storage.NullTime(e.PostCheckSentAt), storage.UTC(r.clock()), e.ID,
	)
	if err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("updateEvent"), err)
		return repo.ErrFailedToUpdate
	}
	if n, _ := res.RowsAffected(); n == 0 {
		r.l.Warnf(ctx, "%s: event %s not found", r.dsn("updateEvent"), e.ID)
		return repo.ErrFailedToUpdate
	}
	return nil
}
