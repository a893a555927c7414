package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"task-scheduling-assistant/internal/calendar"
	"task-scheduling-assistant/internal/model"
	"task-scheduling-assistant/internal/scheduling/repository"
	"task-scheduling-assistant/internal/scheduling/repository/postgre"
	"task-scheduling-assistant/internal/slotfinder"
	"task-scheduling-assistant/internal/storage"
	"task-scheduling-assistant/pkg/translator"
)

// Mock logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, arg ...any)                    {}
func (m *mockLogger) Debugf(ctx context.Context, template string, arg ...any)  {}
func (m *mockLogger) Info(ctx context.Context, arg ...any)                     {}
func (m *mockLogger) Infof(ctx context.Context, template string, arg ...any)   {}
func (m *mockLogger) Warn(ctx context.Context, arg ...any)                     {}
func (m *mockLogger) Warnf(ctx context.Context, template string, arg ...any)   {}
func (m *mockLogger) Error(ctx context.Context, arg ...any)                    {}
func (m *mockLogger) Errorf(ctx context.Context, template string, arg ...any)  {}
func (m *mockLogger) Fatal(ctx context.Context, arg ...any)                    {}
func (m *mockLogger) Fatalf(ctx context.Context, template string, arg ...any)  {}
func (m *mockLogger) DPanic(ctx context.Context, arg ...any)                   {}
func (m *mockLogger) DPanicf(ctx context.Context, template string, arg ...any) {}
func (m *mockLogger) Panic(ctx context.Context, arg ...any)                    {}
func (m *mockLogger) Panicf(ctx context.Context, template string, arg ...any)  {}

// Mock calendar gateway for testing
type mockCalendar struct {
	mu           sync.Mutex
	disconnected bool
	createErr    error
	updateErr    error
	created      []calendar.CreateEventInput
	updated      []calendar.UpdateEventInput
}

func (m *mockCalendar) IsConnected(ctx context.Context, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.disconnected, nil
}

func (m *mockCalendar) CreateEvent(ctx context.Context, input calendar.CreateEventInput) (calendar.CreateEventOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return calendar.CreateEventOutput{}, m.createErr
	}
	m.created = append(m.created, input)
	return calendar.CreateEventOutput{Success: true, EventID: fmt.Sprintf("gcal-%d", len(m.created))}, nil
}

func (m *mockCalendar) UpdateEvent(ctx context.Context, input calendar.UpdateEventInput) (calendar.UpdateEventOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return calendar.UpdateEventOutput{}, m.updateErr
	}
	m.updated = append(m.updated, input)
	return calendar.UpdateEventOutput{Success: true}, nil
}

func (m *mockCalendar) DeleteEvent(ctx context.Context, userID, eventID string) error {
	return nil
}

func (m *mockCalendar) BusyPeriods(ctx context.Context, userID string, from, to time.Time) ([]model.BusyPeriod, error) {
	return nil, nil
}

func (m *mockCalendar) ListTaggedEvents(ctx context.Context, userID string, from, to time.Time) ([]calendar.TaggedEvent, error) {
	return nil, nil
}

func (m *mockCalendar) counts() (created, updated int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.created), len(m.updated)
}

// Mock slot finder for testing
type mockFinder struct {
	mu    sync.Mutex
	slots []model.Slot
	err   error
}

func (m *mockFinder) FindBestSlots(ctx context.Context, input slotfinder.FindInput) (slotfinder.FindOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slotfinder.FindOutput{Slots: m.slots}, m.err
}

func (m *mockFinder) set(slots ...model.Slot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots = slots
}

// conflictRepo simulates another process changing the conversation row.
type conflictRepo struct {
	repository.Repository
}

func (r conflictRepo) DeleteState(ctx context.Context, opt repository.DeleteStateOptions) error {
	return repository.ErrVersionConflict
}

var (
	paris, _ = time.LoadLocation("Europe/Paris")
	testNow  = time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)
)

func slotAt(day, hour int) model.Slot {
	start := time.Date(2026, 10, day, hour, 0, 0, 0, paris).UTC()
	end := start.Add(time.Hour)
	return model.Slot{Start: start, End: end, Label: slotfinder.Label(start, end, paris, "fr"), EnergyFit: true}
}

type testEnv struct {
	uc     *implUseCase
	repo   repository.Repository
	db     *sqlx.DB
	cal    *mockCalendar
	finder *mockFinder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	db, err := storage.Open(ctx, storage.Config{Driver: storage.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.EnsureSchema(ctx, db))

	env := &testEnv{
		repo:   postgre.New(db, &mockLogger{}),
		db:     db,
		cal:    &mockCalendar{},
		finder: &mockFinder{},
	}
	env.uc = env.build(env.repo)
	return env
}

func (e *testEnv) build(repo repository.Repository) *implUseCase {
	return New(&mockLogger{}, repo, e.cal, e.finder, translator.MustNew(translator.Config{}), Options{
		Clock: func() time.Time { return testNow },
	})
}

func (e *testEnv) createTask(t *testing.T, userID, title string) model.Task {
	t.Helper()
	task, err := e.repo.CreateTask(context.Background(), repository.CreateTaskOptions{
		UserID:           userID,
		Title:            title,
		EstimatedMinutes: 60,
		Priority:         2,
		EnergyLevel:      2,
	})
	require.NoError(t, err)
	return task
}

func (e *testEnv) task(t *testing.T, id string) model.Task {
	t.Helper()
	task, err := e.repo.GetTask(context.Background(), id)
	require.NoError(t, err)
	require.NotEmpty(t, task.ID)
	return task
}

func (e *testEnv) eventFor(t *testing.T, userID, externalID string) model.ScheduledEvent {
	t.Helper()
	ev, err := e.repo.GetEvent(context.Background(), repository.GetEventOptions{ExternalEventID: externalID, UserID: userID})
	require.NoError(t, err)
	require.NotEmpty(t, ev.ID)
	return ev
}

func (e *testEnv) state(t *testing.T, userID string) (model.ConversationState, bool) {
	t.Helper()
	st, found, err := e.repo.GetState(context.Background(), userID)
	require.NoError(t, err)
	return st, found
}
