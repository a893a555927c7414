package postgre

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"task-scheduling-assistant/internal/model"
	repo "task-scheduling-assistant/internal/scheduling/repository"
	"task-scheduling-assistant/internal/storage"
)

type stateRow struct {
	UserID      string    `db:"user_id"`
	State       string    `db:"state"`
	Payload     string    `db:"payload"`
	Version     int64     `db:"version"`
	LastUpdated time.Time `db:"last_updated"`
}

// GetState returns the user's live conversation, if any.
func (r *implRepository) GetState(ctx context.Context, userID string) (model.ConversationState, bool, error) {
	var row stateRow
	query := r.q(`SELECT user_id, state, payload, version, last_updated FROM conversation_states WHERE user_id = ?`)
	err := r.db.GetContext(ctx, &row, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ConversationState{}, false, nil
	}
	if err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("GetState"), err)
		return model.ConversationState{}, false, repo.ErrFailedToGet
	}

	payload, err := model.DecodePayload(model.StateTag(row.State), []byte(row.Payload))
	if err != nil {
		r.l.Errorf(ctx, "%s decode: %v", r.dsn("GetState"), err)
		return model.ConversationState{}, false, repo.ErrFailedToGet
	}

	return model.ConversationState{
		UserID:      row.UserID,
		Payload:     payload,
		Version:     row.Version,
		LastUpdated: row.LastUpdated.UTC(),
	}, true, nil
}

// SaveState overwrites the user's conversation if its version is still ExpectedVersion.
func (r *implRepository) SaveState(ctx context.Context, opt repo.SaveStateOptions) (model.ConversationState, error) {
	raw, err := model.EncodePayload(opt.Payload)
	if err != nil {
		r.l.Errorf(ctx, "%s encode: %v", r.dsn("SaveState"), err)
		return model.ConversationState{}, repo.ErrFailedToUpdate
	}

	now := storage.UTC(r.clock())
	var res sql.Result
	if opt.ExpectedVersion <= 0 {
		query := r.q(`INSERT INTO conversation_states (user_id, state, payload, version, last_updated)
			VALUES (?, ?, ?, 1, ?)
			ON CONFLICT (user_id) DO NOTHING`)
		res, err = r.db.ExecContext(ctx, query, opt.UserID, string(opt.Payload.Tag()), string(raw), now)
	} else {
		query := r.q(`UPDATE conversation_states
			SET state = ?, payload = ?, version = version + 1, last_updated = ?
			WHERE user_id = ? AND version = ?`)
		res, err = r.db.ExecContext(ctx, query, string(opt.Payload.Tag()), string(raw), now, opt.UserID, opt.ExpectedVersion)
	}
	if err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("SaveState"), err)
		return model.ConversationState{}, repo.ErrFailedToUpdate
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ConversationState{}, repo.ErrVersionConflict
	}

	version := opt.ExpectedVersion + 1
	if opt.ExpectedVersion <= 0 {
		version = 1
	}
	return model.ConversationState{
		UserID:      opt.UserID,
		Payload:     opt.Payload,
		Version:     version,
		LastUpdated: now,
	}, nil
}

// DeleteState clears the user's conversation. A version mismatch is a conflict; a missing row is not.
func (r *implRepository) DeleteState(ctx context.Context, opt repo.DeleteStateOptions) error {
	var (
		res sql.Result
		err error
	)
	if opt.ExpectedVersion <= 0 {
		res, err = r.db.ExecContext(ctx, r.q(`DELETE FROM conversation_states WHERE user_id = ?`), opt.UserID)
	} else {
		res, err = r.db.ExecContext(ctx, r.q(`DELETE FROM conversation_states WHERE user_id = ? AND version = ?`), opt.UserID, opt.ExpectedVersion)
	}
	if err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("DeleteState"), err)
		return repo.ErrFailedToDelete
	}

	if opt.ExpectedVersion > 0 {
		if n, _ := res.RowsAffected(); n == 0 {
			var exists int
			err := r.db.GetContext(ctx, &exists, r.q(`SELECT COUNT(*) FROM conversation_states WHERE user_id = ?`), opt.UserID)
			if err == nil && exists > 0 {
				return repo.ErrVersionConflict
			}
		}
	}
	return nil
}
