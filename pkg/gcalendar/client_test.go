package gcalendar_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"task-scheduling-assistant/pkg/gcalendar"
)

type rewriteTransport struct {
	Transport http.RoundTripper
	Host      string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	req.URL.Host = t.Host
	return t.Transport.RoundTrip(req)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *gcalendar.Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	tsClient := ts.Client()
	tsClient.Transport = &rewriteTransport{
		Transport: tsClient.Transport,
		Host:      strings.TrimPrefix(ts.URL, "http://"),
	}

	client, err := gcalendar.NewClientFromHTTP(context.Background(), tsClient)
	if err != nil {
		t.Fatalf("unexpected error creating client: %v", err)
	}
	return client
}

func TestOAuthConfig(t *testing.T) {
	creds := `{
		"installed": {
			"client_id": "test-client-id.apps.googleusercontent.com",
			"auth_uri": "https://accounts.google.com/o/oauth2/auth",
			"token_uri": "https://oauth2.googleapis.com/token",
			"client_secret": "test-secret",
			"redirect_uris": ["http://localhost"]
		}
	}`

	cfg, err := gcalendar.OAuthConfigFromJSON([]byte(creds), "http://localhost:8080/callback")
	if err != nil {
		t.Fatalf("expected parsing to succeed: %v", err)
	}
	if cfg.RedirectURL != "http://localhost:8080/callback" {
		t.Errorf("redirect override not applied: %s", cfg.RedirectURL)
	}

	if _, err := gcalendar.OAuthConfigFromJSON([]byte(`{"broken":true}`), ""); err == nil {
		t.Errorf("expected decoding failure")
	}
	if _, err := gcalendar.LoadOAuthConfig("non-existent-file-path-12345.json", ""); err == nil {
		t.Errorf("expected reading file error")
	}
}

func TestCreateEvent(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/calendar/v3/calendars/primary/events" && r.Method == http.MethodPost {
			body, _ := io.ReadAll(r.Body)
			json.Unmarshal(body, &got)
			w.Write([]byte(`{"id": "event-123", "htmlLink": "https://calendar.google.com/event-uri"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	start := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	event, err := client.CreateEvent(context.Background(), gcalendar.CreateEventRequest{
		Summary:   "Write report",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Private:   map[string]string{"scheduler": "true", "taskId": "42"},
	})
	if err != nil {
		t.Fatalf("failed to create event: %v", err)
	}
	if event.ID != "event-123" {
		t.Errorf("unexpected id: %s", event.ID)
	}

	ext, _ := got["extendedProperties"].(map[string]any)
	private, _ := ext["private"].(map[string]any)
	if private["scheduler"] != "true" || private["taskId"] != "42" {
		t.Errorf("private properties not sent: %v", got["extendedProperties"])
	}
	reminders, _ := got["reminders"].(map[string]any)
	if reminders["useDefault"] != false {
		t.Errorf("expected default reminders disabled, got %v", got["reminders"])
	}
}

func TestCreateEventError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	if _, err := client.CreateEvent(context.Background(), gcalendar.CreateEventRequest{}); err == nil {
		t.Fatalf("expected create event error")
	}
}

func TestPatchAndDelete(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/calendar/v3/calendars/primary/events/ev-1" && r.Method == http.MethodPatch:
			w.Write([]byte(`{"id": "ev-1"}`))
		case r.URL.Path == "/calendar/v3/calendars/primary/events/ev-1" && r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		case strings.HasSuffix(r.URL.Path, "/events/gone"):
			w.WriteHeader(http.StatusGone)
			w.Write([]byte(`{"error": {"code": 410, "message": "deleted"}}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
	ctx := context.Background()
	start := time.Now()

	if _, err := client.PatchEvent(ctx, gcalendar.PatchEventRequest{EventID: "ev-1", StartTime: start, EndTime: start.Add(time.Hour)}); err != nil {
		t.Fatalf("patch: %v", err)
	}
	if _, err := client.PatchEvent(ctx, gcalendar.PatchEventRequest{EventID: "gone", StartTime: start, EndTime: start}); !errors.Is(err, gcalendar.ErrNotFound) {
		t.Errorf("expected ErrNotFound on patch, got %v", err)
	}
	if err := client.DeleteEvent(ctx, "", "ev-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := client.DeleteEvent(ctx, "", "gone"); !errors.Is(err, gcalendar.ErrNotFound) {
		t.Errorf("expected ErrNotFound on delete, got %v", err)
	}
	if err := client.DeleteEvent(ctx, "", "other"); err == nil || errors.Is(err, gcalendar.ErrNotFound) {
		t.Errorf("expected generic error, got %v", err)
	}
}

func TestListEvents(t *testing.T) {
	var query string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/calendar/v3/calendars/test-fail/events" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if r.URL.Path == "/calendar/v3/calendars/primary/events" && r.Method == http.MethodGet {
			query = r.URL.RawQuery
			w.Write([]byte(`{
				"items": [
					{
						"id": "event-123",
						"summary": "Existing Event",
						"created": "2026-10-15T08:00:00Z",
						"start": { "dateTime": "2026-10-19T09:00:00+02:00" },
						"end": { "dateTime": "2026-10-19T10:00:00+02:00" },
						"extendedProperties": { "private": { "scheduler": "true", "taskId": "7" } }
					},
					{
						"id": "event-allday",
						"summary": "Holiday",
						"start": { "date": "2026-10-20" },
						"end": { "date": "2026-10-21" }
					}
				]
			}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	events, err := client.ListEvents(context.Background(), gcalendar.ListEventsRequest{
		TimeMin:         time.Now(),
		TimeMax:         time.Now().Add(24 * time.Hour),
		PrivateProperty: []string{"scheduler=true"},
	})
	if err != nil {
		t.Fatalf("failed to list events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Private["taskId"] != "7" || events[0].Created.IsZero() {
		t.Errorf("unexpected first event: %+v", events[0])
	}
	if events[1].StartTime.Day() != 20 {
		t.Errorf("all-day start not parsed: %v", events[1].StartTime)
	}
	if !strings.Contains(query, "privateExtendedProperty=scheduler%3Dtrue") {
		t.Errorf("private filter missing from query: %s", query)
	}

	if _, err := client.ListEvents(context.Background(), gcalendar.ListEventsRequest{CalendarID: "test-fail"}); err == nil {
		t.Fatalf("expected api error on test-fail")
	}
}

func TestFreeBusy(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/calendar/v3/freeBusy" && r.Method == http.MethodPost {
			w.Write([]byte(`{
				"calendars": {
					"primary": {
						"busy": [
							{ "start": "2026-10-19T07:00:00Z", "end": "2026-10-19T08:00:00Z" }
						]
					}
				}
			}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	busy, err := client.FreeBusy(context.Background(), "", time.Now(), time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("free/busy: %v", err)
	}
	if len(busy) != 1 || busy[0].End.Sub(busy[0].Start) != time.Hour {
		t.Errorf("unexpected busy list: %+v", busy)
	}
}
