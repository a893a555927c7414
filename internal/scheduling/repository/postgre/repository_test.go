package postgre_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-scheduling-assistant/internal/model"
	repo "task-scheduling-assistant/internal/scheduling/repository"
	"task-scheduling-assistant/internal/scheduling/repository/postgre"
	"task-scheduling-assistant/internal/storage"
	"task-scheduling-assistant/pkg/log"
)

func newTestRepo(t *testing.T) (repo.Repository, *sqlx.DB) {
	t.Helper()
	ctx := context.Background()
	db, err := storage.Open(ctx, storage.Config{Driver: storage.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.EnsureSchema(ctx, db))
	return postgre.New(db, log.NewNop()), db
}

func createTask(t *testing.T, r repo.Repository, userID string) model.Task {
	t.Helper()
	deadline := time.Date(2026, 10, 23, 18, 0, 0, 0, time.UTC)
	task, err := r.CreateTask(context.Background(), repo.CreateTaskOptions{
		UserID:           userID,
		Title:            "Write report",
		Description:      "Q3 numbers",
		EstimatedMinutes: 60,
		Priority:         3,
		EnergyLevel:      2,
		Deadline:         &deadline,
	})
	require.NoError(t, err)
	return task
}

func TestTaskCRUD(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	task := createTask(t, r, "u1")
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, model.StatusUnscheduled, task.SchedulingStatus)

	got, err := r.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Write report", got.Title)
	require.NotNil(t, got.Deadline)
	assert.True(t, got.Deadline.Equal(*task.Deadline))
	assert.Empty(t, got.ExternalEventID)

	missing, err := r.GetTask(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, missing.ID)

	list, err := r.ListTasks(ctx, repo.ListTasksOptions{UserID: "u1", Status: model.StatusUnscheduled})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUpdateTaskRejectsInconsistentWrites(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()
	task := createTask(t, r, "u1")

	task.SchedulingStatus = model.StatusScheduled
	assert.ErrorIs(t, r.UpdateTask(ctx, task), repo.ErrInconsistentTask)

	task.SchedulingStatus = model.StatusUnscheduled
	task.ExternalEventID = "ev-1"
	assert.ErrorIs(t, r.UpdateTask(ctx, task), repo.ErrInconsistentTask)
}

func TestCommitTaskEvent(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()
	task := createTask(t, r, "u1")

	start := time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC)
	task.SchedulingStatus = model.StatusScheduled
	task.ExternalEventID = "ev-1"
	task.ScheduledFor = &start

	err := r.CommitTaskEvent(ctx, repo.CommitTaskEventOptions{
		Task: task,
		Event: model.ScheduledEvent{
			TaskID:          task.ID,
			UserID:          "u1",
			ExternalEventID: "ev-1",
			StartTime:       start,
			EndTime:         start.Add(time.Hour),
		},
		InsertEvent: true,
	})
	require.NoError(t, err)

	ev, err := r.GetEvent(ctx, repo.GetEventOptions{ExternalEventID: "ev-1"})
	require.NoError(t, err)
	require.NotEmpty(t, ev.ID)
	assert.Equal(t, model.ResponsePending, ev.UserResponse)
	assert.True(t, ev.StartTime.Equal(start))

	stored, _ := r.GetTask(ctx, task.ID)
	assert.Equal(t, model.StatusScheduled, stored.SchedulingStatus)
	assert.Equal(t, "ev-1", stored.ExternalEventID)

	// rescheduled_count never decreases.
	ev.RescheduledCount = 2
	task.SchedulingStatus = model.StatusSnoozed
	require.NoError(t, r.CommitTaskEvent(ctx, repo.CommitTaskEventOptions{Task: task, Event: ev}))
	ev.RescheduledCount = 1
	require.NoError(t, r.CommitTaskEvent(ctx, repo.CommitTaskEventOptions{Task: task, Event: ev}))
	again, _ := r.GetEvent(ctx, repo.GetEventOptions{ID: ev.ID})
	assert.Equal(t, 2, again.RescheduledCount)
}

func TestCommitTaskEventRollsBack(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()
	task := createTask(t, r, "u1")
	other := createTask(t, r, "u1")
	start := time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC)

	task.SchedulingStatus = model.StatusScheduled
	task.ExternalEventID = "ev-1"
	require.NoError(t, r.CommitTaskEvent(ctx, repo.CommitTaskEventOptions{
		Task:        task,
		Event:       model.ScheduledEvent{TaskID: task.ID, UserID: "u1", ExternalEventID: "ev-1", StartTime: start, EndTime: start.Add(time.Hour)},
		InsertEvent: true,
	}))

	// Duplicate external id: the task update must not survive.
	other.SchedulingStatus = model.StatusScheduled
	other.ExternalEventID = "ev-1"
	err := r.CommitTaskEvent(ctx, repo.CommitTaskEventOptions{
		Task:        other,
		Event:       model.ScheduledEvent{TaskID: other.ID, UserID: "u1", ExternalEventID: "ev-1", StartTime: start, EndTime: start.Add(time.Hour)},
		InsertEvent: true,
	})
	require.ErrorIs(t, err, repo.ErrFailedToInsert)

	stored, _ := r.GetTask(ctx, other.ID)
	assert.Equal(t, model.StatusUnscheduled, stored.SchedulingStatus)
	assert.Empty(t, stored.ExternalEventID)
}

func TestDueEventQueries(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()
	task := createTask(t, r, "u1")
	start := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	task.SchedulingStatus = model.StatusScheduled
	task.ExternalEventID = "ev-1"
	require.NoError(t, r.CommitTaskEvent(ctx, repo.CommitTaskEventOptions{
		Task:        task,
		Event:       model.ScheduledEvent{TaskID: task.ID, UserID: "u1", ExternalEventID: "ev-1", StartTime: start, EndTime: start.Add(time.Hour)},
		InsertEvent: true,
	}))

	due, err := r.ListDueReminders(ctx, repo.ListDueEventsOptions{From: start.Add(-5 * time.Minute), To: start.Add(5 * time.Minute)})
	require.NoError(t, err)
	require.Len(t, due, 1)

	require.NoError(t, r.MarkReminderSent(ctx, due[0].ID, start.Add(-4*time.Minute)))
	due, _ = r.ListDueReminders(ctx, repo.ListDueEventsOptions{From: start.Add(-5 * time.Minute), To: start.Add(5 * time.Minute)})
	assert.Empty(t, due)

	end := start.Add(time.Hour)
	checks, err := r.ListDuePostChecks(ctx, repo.ListDueEventsOptions{From: end.Add(-time.Minute), To: end.Add(time.Minute)})
	require.NoError(t, err)
	require.Len(t, checks, 1)
	require.NoError(t, r.MarkPostCheckSent(ctx, checks[0].ID, end))
	checks, _ = r.ListDuePostChecks(ctx, repo.ListDueEventsOptions{From: end.Add(-time.Minute), To: end.Add(time.Minute)})
	assert.Empty(t, checks)

	ids, err := r.ListExternalEventIDs(ctx, "u1")
	require.NoError(t, err)
	assert.Contains(t, ids, "ev-1")
}

func TestConversationStateVersioning(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	_, found, err := r.GetState(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, found)

	payload := model.ScheduleConfirmationPayload{TaskID: "t1", Slots: []model.Slot{{
		Start: time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC),
		Label: "lundi 19 oct. 09:00–10:00",
	}}}
	saved, err := r.SaveState(ctx, repo.SaveStateOptions{UserID: "u1", Payload: payload})
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.Version)

	// A second creator loses.
	_, err = r.SaveState(ctx, repo.SaveStateOptions{UserID: "u1", Payload: payload})
	assert.ErrorIs(t, err, repo.ErrVersionConflict)

	got, found, err := r.GetState(ctx, "u1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, model.StateAwaitingScheduleConfirmation, got.State())
	assert.Equal(t, payload, got.Payload)

	choice := model.SlotChoicePayload{TaskID: "t1", Options: payload.Slots}
	next, err := r.SaveState(ctx, repo.SaveStateOptions{UserID: "u1", Payload: choice, ExpectedVersion: got.Version})
	require.NoError(t, err)
	assert.Equal(t, int64(2), next.Version)

	_, err = r.SaveState(ctx, repo.SaveStateOptions{UserID: "u1", Payload: choice, ExpectedVersion: got.Version})
	assert.ErrorIs(t, err, repo.ErrVersionConflict)

	assert.ErrorIs(t, r.DeleteState(ctx, repo.DeleteStateOptions{UserID: "u1", ExpectedVersion: 1}), repo.ErrVersionConflict)
	require.NoError(t, r.DeleteState(ctx, repo.DeleteStateOptions{UserID: "u1", ExpectedVersion: 2}))
	// Already gone: not a conflict.
	require.NoError(t, r.DeleteState(ctx, repo.DeleteStateOptions{UserID: "u1", ExpectedVersion: 2}))

	_, found, _ = r.GetState(ctx, "u1")
	assert.False(t, found)
}

func TestConversationStateConcurrentWriters(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()
	base, err := r.SaveState(ctx, repo.SaveStateOptions{UserID: "u1", Payload: model.TaskCompletionPayload{EventID: "e", TaskID: "t"}})
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.SaveState(ctx, repo.SaveStateOptions{
				UserID:          "u1",
				Payload:         model.TaskCompletionPayload{EventID: "e2", TaskID: "t"},
				ExpectedVersion: base.Version,
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
			} else if assert.ErrorIs(t, err, repo.ErrVersionConflict) {
				conflicts++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
	assert.Equal(t, 4, conflicts)
}

func TestPreferencesWithOutbox(t *testing.T) {
	r, db := newTestRepo(t)
	ctx := context.Background()

	defaults, err := r.GetPreferences(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultPreferences("u1"), defaults)

	prefs := defaults
	prefs.Timezone = "America/New_York"
	prefs.Language = "en"
	prefs.AllowedDays = []int{1, 3, 5}
	prefs.NotificationsEnabled = false

	payload, _ := json.Marshal(map[string]string{"timezone": prefs.Timezone})
	require.NoError(t, r.UpsertPreferences(ctx, repo.UpsertPreferencesOptions{
		Preferences: prefs,
		Outbox:      &model.Notification{Kind: model.KindPreferencesChanged, UserID: "u1", Payload: payload},
	}))

	got, err := r.GetPreferences(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, prefs, got)

	var count int
	require.NoError(t, db.GetContext(ctx, &count, `SELECT COUNT(*) FROM notifications WHERE kind = 'preferences_changed' AND status = 'pending'`))
	assert.Equal(t, 1, count)
}
