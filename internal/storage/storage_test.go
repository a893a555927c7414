package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-scheduling-assistant/internal/storage"
)

func TestOpenAndEnsureSchema(t *testing.T) {
	ctx := context.Background()
	db, err := storage.Open(ctx, storage.Config{Driver: storage.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, storage.EnsureSchema(ctx, db))
	// Idempotent.
	require.NoError(t, storage.EnsureSchema(ctx, db))

	var tables []string
	require.NoError(t, db.SelectContext(ctx, &tables, `SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`))
	assert.Equal(t, []string{"calendar_tokens", "conversation_states", "notifications", "scheduled_events", "tasks", "user_preferences"}, tables)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := storage.Open(context.Background(), storage.Config{Driver: "nope", DSN: "x"})
	assert.Error(t, err)
}

func TestTimeHelpers(t *testing.T) {
	paris, _ := time.LoadLocation("Europe/Paris")
	local := time.Date(2026, 10, 19, 9, 0, 0, 123456789, paris)

	got := storage.UTC(local)
	assert.Equal(t, time.UTC, got.Location())
	assert.True(t, got.Equal(local.Truncate(time.Microsecond)))

	assert.False(t, storage.NullTime(nil).Valid)
	nt := storage.NullTime(&local)
	require.True(t, nt.Valid)
	assert.True(t, storage.TimePtr(nt).Equal(got))
	assert.Nil(t, storage.TimePtr(storage.NullTime(nil)))

	assert.False(t, storage.NullString("").Valid)
	assert.True(t, storage.NullString("x").Valid)
}
