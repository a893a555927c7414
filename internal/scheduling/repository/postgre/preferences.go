package postgre

import (
	"context"
	"database/sql"
	"errors"

	"task-scheduling-assistant/internal/model"
	repo "task-scheduling-assistant/internal/scheduling/repository"
	"task-scheduling-assistant/internal/storage"
)

type preferencesRow struct {
	UserID               string `db:"user_id"`
	Timezone             string `db:"timezone"`
	Language             string `db:"language"`
	StartHour            int    `db:"start_hour"`
	EndHour              int    `db:"end_hour"`
	AllowedDays          string `db:"allowed_days"`
	NotificationsEnabled bool   `db:"notifications_enabled"`
}

// GetPreferences returns the stored preferences or the defaults.
func (r *implRepository) GetPreferences(ctx context.Context, userID string) (model.UserPreferences, error) {
	var row preferencesRow
	query := r.q(`SELECT user_id, timezone, language, start_hour, end_hour, allowed_days, notifications_enabled
		FROM user_preferences WHERE user_id = ?`)
	err := r.db.GetContext(ctx, &row, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DefaultPreferences(userID), nil
	}
	if err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("GetPreferences"), err)
		return model.UserPreferences{}, repo.ErrFailedToGet
	}

	return model.UserPreferences{
		UserID:               row.UserID,
		Timezone:             row.Timezone,
		Language:             row.Language,
		StartHour:            row.StartHour,
		EndHour:              row.EndHour,
		AllowedDays:          splitDays(row.AllowedDays),
		NotificationsEnabled: row.NotificationsEnabled,
	}, nil
}

// UpsertPreferences stores preferences and the optional outbox row atomically.
func (r *implRepository) UpsertPreferences(ctx context.Context, opt repo.UpsertPreferencesOptions) error {
	p := opt.Preferences
	now := storage.UTC(r.clock())

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.l.Errorf(ctx, "%s begin: %v", r.dsn("UpsertPreferences"), err)
		return repo.ErrFailedToUpdate
	}
	defer tx.Rollback()

	query := r.q(`INSERT INTO user_preferences
		(user_id, timezone, language, start_hour, end_hour, allowed_days, notifications_enabled, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			timezone = excluded.timezone,
			language = excluded.language,
			start_hour = excluded.start_hour,
			end_hour = excluded.end_hour,
			allowed_days = excluded.allowed_days,
			notifications_enabled = excluded.notifications_enabled,
			updated_at = excluded.updated_at`)
	_, err = tx.ExecContext(ctx, query,
		p.UserID, p.Timezone, p.Language, p.StartHour, p.EndHour, joinDays(p.AllowedDays), p.NotificationsEnabled, now)
	if err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("UpsertPreferences"), err)
		return repo.ErrFailedToUpdate
	}

	if n := opt.Outbox; n != nil {
		if n.ID == "" {
			n.ID = r.newID()
		}
		query := r.q(`INSERT INTO notifications
			(id, kind, user_id, payload, status, attempts, next_attempt_at, last_error, created_at)
			VALUES (?, ?, ?, ?, ?, 0, ?, '', ?)`)
		_, err = tx.ExecContext(ctx, query, n.ID, n.Kind, n.UserID, string(n.Payload), string(model.NotificationPending), now, now)
		if err != nil {
			r.l.Errorf(ctx, "%s outbox: %v", r.dsn("UpsertPreferences"), err)
			return repo.ErrFailedToInsert
		}
	}

	if err := tx.Commit(); err != nil {
		r.l.Errorf(ctx, "%s commit: %v", r.dsn("UpsertPreferences"), err)
		return repo.ErrFailedToUpdate
	}
	return nil
}
