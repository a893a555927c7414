package storage

import (
	"database/sql"
	"time"
)

// UTC normalizes t for storage: UTC, microsecond precision.
func UTC(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// NullTime converts an optional time for storage.
func NullTime(t *time.Time) sql.NullTime {
	if t == nil || t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: UTC(*t), Valid: true}
}

// TimePtr converts a scanned optional time back.
func TimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

// NullString maps "" to NULL.
func NullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
