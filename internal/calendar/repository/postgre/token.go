package postgre

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"task-scheduling-assistant/internal/model"
	"task-scheduling-assistant/internal/storage"
	"task-scheduling-assistant/pkg/log"
)

var (
	ErrFailedToGet   = errors.New("failed to get calendar token")
	ErrFailedToSave  = errors.New("failed to save calendar token")
	ErrFailedToList  = errors.New("failed to list calendar tokens")
	ErrMissingUserID = errors.New("calendar token without user id")
	ErrMissingAccess = errors.New("calendar token without access token")
)

type tokenRow struct {
	UserID       string       `db:"user_id"`
	AccessToken  string       `db:"access_token"`
	RefreshToken string       `db:"refresh_token"`
	TokenType    string       `db:"token_type"`
	Expiry       sql.NullTime `db:"expiry"`
	UpdatedAt    time.Time    `db:"updated_at"`
}

type implTokenStore struct {
	db *sqlx.DB
	l  log.Logger
}

// New creates the SQL token store.
func New(db *sqlx.DB, l log.Logger) *implTokenStore {
	if db == nil {
		panic("calendar/repository/postgre: db is required")
	}
	return &implTokenStore{db: db, l: l}
}

func (s *implTokenStore) dsn(method string) string {
	return fmt.Sprintf("calendar/repository/postgre.%s", method)
}

func (s *implTokenStore) GetToken(ctx context.Context, userID string) (model.CalendarToken, bool, error) {
	var row tokenRow
	query := s.db.Rebind(`SELECT user_id, access_token, refresh_token, token_type, expiry, updated_at
		FROM calendar_tokens WHERE user_id = ?`)
	err := s.db.GetContext(ctx, &row, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.CalendarToken{}, false, nil
	}
	if err != nil {
		s.l.Errorf(ctx, "%s: %v", s.dsn("GetToken"), err)
		return model.CalendarToken{}, false, ErrFailedToGet
	}

	tok := model.CalendarToken{
		UserID:       row.UserID,
		AccessToken:  row.AccessToken,
		RefreshToken: row.RefreshToken,
		TokenType:    row.TokenType,
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
	if exp := storage.TimePtr(row.Expiry); exp != nil {
		tok.Expiry = *exp
	}
	return tok, true, nil
}

// SaveToken upserts the token. An empty refresh token keeps the stored one.
func (s *implTokenStore) SaveToken(ctx context.Context, tok model.CalendarToken) error {
	if tok.UserID == "" {
		return ErrMissingUserID
	}
	if tok.AccessToken == "" {
		return ErrMissingAccess
	}

	var expiry *time.Time
	if !tok.Expiry.IsZero() {
		expiry = &tok.Expiry
	}

	query := s.db.Rebind(`INSERT INTO calendar_tokens (user_id, access_token, refresh_token, token_type, expiry, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = CASE WHEN excluded.refresh_token = '' THEN calendar_tokens.refresh_token ELSE excluded.refresh_token END,
			token_type = excluded.token_type,
			expiry = excluded.expiry,
			updated_at = excluded.updated_at`)
	_, err := s.db.ExecContext(ctx, query,
		tok.UserID, tok.AccessToken, tok.RefreshToken, tok.TokenType, storage.NullTime(expiry), storage.UTC(time.Now()))
	if err != nil {
		s.l.Errorf(ctx, "%s: %v", s.dsn("SaveToken"), err)
		return ErrFailedToSave
	}
	return nil
}

func (s *implTokenStore) ListConnectedUsers(ctx context.Context) ([]string, error) {
	var users []string
	if err := s.db.SelectContext(ctx, &users, `SELECT user_id FROM calendar_tokens ORDER BY user_id`); err != nil {
		s.l.Errorf(ctx, "%s: %v", s.dsn("ListConnectedUsers"), err)
		return nil, ErrFailedToList
	}
	return users, nil
}
