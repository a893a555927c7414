package postgre

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"task-scheduling-assistant/internal/model"
	repo "task-scheduling-assistant/internal/notification/repository"
	"task-scheduling-assistant/internal/storage"
	"task-scheduling-assistant/pkg/log"
)

const columns = `id, kind, user_id, payload, status, attempts, next_attempt_at, last_error, created_at, delivered_at`

const maxErrorLen = 500

type row struct {
	ID            string       `db:"id"`
	Kind          string       `db:"kind"`
	UserID        string       `db:"user_id"`
	Payload       string       `db:"payload"`
	Status        string       `db:"status"`
	Attempts      int          `db:"attempts"`
	NextAttemptAt time.Time    `db:"next_attempt_at"`
	LastError     string       `db:"last_error"`
	CreatedAt     time.Time    `db:"created_at"`
	DeliveredAt   sql.NullTime `db:"delivered_at"`
}

func (r row) toModel() model.Notification {
	return model.Notification{
		ID:            r.ID,
		Kind:          r.Kind,
		UserID:        r.UserID,
		Payload:       json.RawMessage(r.Payload),
		Status:        model.NotificationStatus(r.Status),
		Attempts:      r.Attempts,
		NextAttemptAt: r.NextAttemptAt.UTC(),
		LastError:     r.LastError,
		CreatedAt:     r.CreatedAt.UTC(),
		DeliveredAt:   storage.TimePtr(r.DeliveredAt),
	}
}

type implRepository struct {
	db *sqlx.DB
	l  log.Logger
}

// New creates the SQL outbox repository.
func New(db *sqlx.DB, l log.Logger) repo.Repository {
	if db == nil {
		panic("notification/repository/postgre: db is required")
	}
	return &implRepository{db: db, l: l}
}

func (r *implRepository) dsn(method string) string {
	return fmt.Sprintf("notification/repository/postgre.%s", method)
}

func (r *implRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]model.Notification, error) {
	query := `SELECT ` + columns + ` FROM notifications
		WHERE status = ? AND next_attempt_at <= ?
		ORDER BY created_at`
	return r.list(ctx, "ListDue", query, limit, string(model.NotificationPending), storage.UTC(now))
}

func (r *implRepository) ListDead(ctx context.Context, limit int) ([]model.Notification, error) {
	query := `SELECT ` + columns + ` FROM notifications
		WHERE status = ?
		ORDER BY created_at DESC`
	return r.list(ctx, "ListDead", query, limit, string(model.NotificationDead))
}

func (r *implRepository) list(ctx context.Context, method, query string, limit int, args ...any) ([]model.Notification, error) {
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var rows []row
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn(method), err)
		return nil, repo.ErrFailedToList
	}

	out := make([]model.Notification, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

func (r *implRepository) MarkDelivered(ctx context.Context, id string, at time.Time) error {
	query := r.db.Rebind(`UPDATE notifications SET status = ?, delivered_at = ?, last_error = '' WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, string(model.NotificationDelivered), storage.UTC(at), id); err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("MarkDelivered"), err)
		return repo.ErrFailedToUpdate
	}
	return nil
}

func (r *implRepository) MarkRetry(ctx context.Context, opt repo.MarkRetryOptions) error {
	return r.fail(ctx, "MarkRetry", model.NotificationPending, opt)
}

func (r *implRepository) MarkDead(ctx context.Context, opt repo.MarkRetryOptions) error {
	return r.fail(ctx, "MarkDead", model.NotificationDead, opt)
}

func (r *implRepository) fail(ctx context.Context, method string, status model.NotificationStatus, opt repo.MarkRetryOptions) error {
	lastErr := opt.LastError
	if len(lastErr) > maxErrorLen {
		lastErr = lastErr[:maxErrorLen]
	}
	query := r.db.Rebind(`UPDATE notifications
		SET status = ?, attempts = ?, next_attempt_at = ?, last_error = ?
		WHERE id = ?`)
	_, err := r.db.ExecContext(ctx, query, string(status), opt.Attempts, storage.UTC(opt.NextAttemptAt), lastErr, opt.ID)
	if err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn(method), err)
		return repo.ErrFailedToUpdate
	}
	return nil
}
