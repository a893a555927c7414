package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-scheduling-assistant/internal/model"
	"task-scheduling-assistant/internal/notification/repository"
	"task-scheduling-assistant/pkg/log"
)

var testNow = time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)

// memRepo is an in-memory outbox.
type memRepo struct {
	mu   sync.Mutex
	rows map[string]*model.Notification
}

func newMemRepo(rows ...model.Notification) *memRepo {
	m := &memRepo{rows: map[string]*model.Notification{}}
	for i := range rows {
		r := rows[i]
		if r.Status == "" {
			r.Status = model.NotificationPending
		}
		m.rows[r.ID] = &r
	}
	return m
}

func (m *memRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Notification
	for _, r := range m.rows {
		if r.Status == model.NotificationPending && !r.NextAttemptAt.After(now) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memRepo) MarkDelivered(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[id].Status = model.NotificationDelivered
	m.rows[id].DeliveredAt = &at
	return nil
}

func (m *memRepo) MarkRetry(ctx context.Context, opt repository.MarkRetryOptions) error {
	return m.fail(model.NotificationPending, opt)
}

func (m *memRepo) MarkDead(ctx context.Context, opt repository.MarkRetryOptions) error {
	return m.fail(model.NotificationDead, opt)
}

func (m *memRepo) fail(status model.NotificationStatus, opt repository.MarkRetryOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.rows[opt.ID]
	r.Status = status
	r.Attempts = opt.Attempts
	r.NextAttemptAt = opt.NextAttemptAt
	r.LastError = opt.LastError
	return nil
}

func (m *memRepo) ListDead(ctx context.Context, limit int) ([]model.Notification, error) {
	return nil, nil
}

func (m *memRepo) get(id string) model.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.rows[id]
}

func pending(id string) model.Notification {
	return model.Notification{
		ID:            id,
		Kind:          model.KindPreferencesChanged,
		UserID:        "u1",
		Payload:       json.RawMessage(`{"timezone":"Europe/Paris"}`),
		NextAttemptAt: testNow,
	}
}

type peer struct {
	mu       sync.Mutex
	status   int
	received []message
}

func (p *peer) server(t *testing.T) *httptest.Server {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		defer p.mu.Unlock()
		assert.Equal(t, DefaultPath, r.URL.Path)
		var m message
		json.NewDecoder(r.Body).Decode(&m)
		p.received = append(p.received, m)
		w.WriteHeader(p.status)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newDispatcher(repo repository.Repository, urls ...string) Dispatcher {
	return NewDispatcher(log.NewNop(), repo, Options{
		BaseURLs:    urls,
		MaxAttempts: 3,
		BaseBackoff: time.Minute,
		MaxBackoff:  3 * time.Minute,
		Clock:       func() time.Time { return testNow },
	})
}

func TestDeliverToPrimary(t *testing.T) {
	primary := &peer{status: http.StatusOK}
	ts := primary.server(t)
	repo := newMemRepo(pending("n1"))

	res, err := newDispatcher(repo, ts.URL+"/").Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Delivered: 1}, res)
	assert.Equal(t, model.NotificationDelivered, repo.get("n1").Status)

	require.Len(t, primary.received, 1)
	got := primary.received[0]
	assert.Equal(t, "n1", got.ID)
	assert.Equal(t, model.KindPreferencesChanged, got.Kind)
	assert.Equal(t, "u1", got.UserID)
	assert.JSONEq(t, `{"timezone":"Europe/Paris"}`, string(got.Payload))
}

func TestFallbackURL(t *testing.T) {
	primary := &peer{status: http.StatusServiceUnavailable}
	fallback := &peer{status: http.StatusAccepted}
	repo := newMemRepo(pending("n1"))

	res, err := newDispatcher(repo, primary.server(t).URL, fallback.server(t).URL).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Delivered)
	assert.Len(t, primary.received, 1)
	assert.Len(t, fallback.received, 1)
}

func TestBackoffThenDeadLetter(t *testing.T) {
	down := &peer{status: http.StatusInternalServerError}
	url := down.server(t).URL
	repo := newMemRepo(pending("n1"))
	d := newDispatcher(repo, url)
	ctx := context.Background()

	res, err := d.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Retried: 1}, res)
	row := repo.get("n1")
	assert.Equal(t, 1, row.Attempts)
	assert.Equal(t, testNow.Add(time.Minute), row.NextAttemptAt)
	assert.Contains(t, row.LastError, "500")

	// Not due yet.
	res, _ = d.Run(ctx)
	assert.Equal(t, Result{}, res)

	repo.mu.Lock()
	repo.rows["n1"].NextAttemptAt = testNow
	repo.mu.Unlock()
	d.Run(ctx)
	row = repo.get("n1")
	assert.Equal(t, 2, row.Attempts)
	assert.Equal(t, testNow.Add(2*time.Minute), row.NextAttemptAt)

	repo.mu.Lock()
	repo.rows["n1"].NextAttemptAt = testNow
	repo.mu.Unlock()
	res, _ = d.Run(ctx)
	assert.Equal(t, Result{Dead: 1}, res)
	assert.Equal(t, model.NotificationDead, repo.get("n1").Status)
}

func TestBackoffIsCapped(t *testing.T) {
	d := newDispatcher(newMemRepo(), "http://unused").(*implDispatcher)
	assert.Equal(t, time.Minute, d.backoff(0))
	assert.Equal(t, 2*time.Minute, d.backoff(1))
	assert.Equal(t, 3*time.Minute, d.backoff(2))
	assert.Equal(t, 3*time.Minute, d.backoff(10))
}

func TestNoTarget(t *testing.T) {
	_, err := newDispatcher(newMemRepo(pending("n1"))).Run(context.Background())
	assert.ErrorIs(t, err, ErrNoTarget)
}
