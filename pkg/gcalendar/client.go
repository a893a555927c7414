package gcalendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const primaryCalendar = "primary"

// Client wraps the Google Calendar API service for one authorized user.
type Client struct {
	service *calendar.Service
}

// LoadOAuthConfig reads an OAuth client credentials file (installed or web app).
func LoadOAuthConfig(credentialsPath, redirectURL string) (*oauth2.Config, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	return OAuthConfigFromJSON(data, redirectURL)
}

// OAuthConfigFromJSON parses OAuth client credentials JSON.
func OAuthConfigFromJSON(credentialsJSON []byte, redirectURL string) (*oauth2.Config, error) {
	cfg, err := google.ConfigFromJSON(credentialsJSON, calendar.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("unsupported credentials format: %w", err)
	}
	if redirectURL != "" {
		cfg.RedirectURL = redirectURL
	}
	return cfg, nil
}

// NewClientFromTokenSource creates a Calendar client authorized by ts.
func NewClientFromTokenSource(ctx context.Context, ts oauth2.TokenSource, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return &Client{service: svc}, nil
}

// NewClientFromHTTP creates a Calendar client from a pre-configured HTTP client.
func NewClientFromHTTP(ctx context.Context, httpClient *http.Client) (*Client, error) {
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return &Client{service: svc}, nil
}

// CreateEvent creates a new event. Reminders are disabled; notifications are sent by us.
func (c *Client) CreateEvent(ctx context.Context, req CreateEventRequest) (*Event, error) {
	event := &calendar.Event{
		Summary:     req.Summary,
		Description: req.Description,
		Start:       eventTime(req.StartTime, req.Timezone),
		End:         eventTime(req.EndTime, req.Timezone),
		Reminders: &calendar.EventReminders{
			UseDefault:      false,
			Overrides:       []*calendar.EventReminder{},
			ForceSendFields: []string{"UseDefault", "Overrides"},
		},
	}
	if len(req.Private) > 0 {
		event.ExtendedProperties = &calendar.EventExtendedProperties{Private: req.Private}
	}

	created, err := c.service.Events.Insert(calendarID(req.CalendarID), event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar event: %w", err)
	}

	out := toEvent(created)
	out.StartTime, out.EndTime = req.StartTime, req.EndTime
	return out, nil
}

// PatchEvent moves an event to new start/end. Only those fields are sent.
func (c *Client) PatchEvent(ctx context.Context, req PatchEventRequest) (*Event, error) {
	patch := &calendar.Event{
		Start: eventTime(req.StartTime, req.Timezone),
		End:   eventTime(req.EndTime, req.Timezone),
	}

	updated, err := c.service.Events.Patch(calendarID(req.CalendarID), req.EventID, patch).Context(ctx).Do()
	if err != nil {
		if isGone(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to patch calendar event: %w", err)
	}

	out := toEvent(updated)
	out.StartTime, out.EndTime = req.StartTime, req.EndTime
	return out, nil
}

// DeleteEvent removes an event. Missing events yield ErrNotFound.
func (c *Client) DeleteEvent(ctx context.Context, calID, eventID string) error {
	if err := c.service.Events.Delete(calendarID(calID), eventID).Context(ctx).Do(); err != nil {
		if isGone(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete calendar event: %w", err)
	}
	return nil
}

// ListEvents returns single (expanded) events in [TimeMin, TimeMax), following pagination.
func (c *Client) ListEvents(ctx context.Context, req ListEventsRequest) ([]Event, error) {
	call := c.service.Events.List(calendarID(req.CalendarID)).
		Context(ctx).
		SingleEvents(true).
		OrderBy("startTime").
		TimeMin(req.TimeMin.Format(time.RFC3339)).
		TimeMax(req.TimeMax.Format(time.RFC3339))
	if req.MaxResults > 0 {
		call = call.MaxResults(req.MaxResults)
	}
	if len(req.PrivateProperty) > 0 {
		call = call.PrivateExtendedProperty(req.PrivateProperty...)
	}

	var events []Event
	err := call.Pages(ctx, func(page *calendar.Events) error {
		for _, item := range page.Items {
			events = append(events, *toEvent(item))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}
	return events, nil
}

// FreeBusy returns the busy intervals of the calendar in [from, to).
func (c *Client) FreeBusy(ctx context.Context, calID string, from, to time.Time) ([]BusyInterval, error) {
	id := calendarID(calID)
	resp, err := c.service.Freebusy.Query(&calendar.FreeBusyRequest{
		TimeMin: from.Format(time.RFC3339),
		TimeMax: to.Format(time.RFC3339),
		Items:   []*calendar.FreeBusyRequestItem{{Id: id}},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to query free/busy: %w", err)
	}

	cal, ok := resp.Calendars[id]
	if !ok {
		return nil, nil
	}
	if len(cal.Errors) > 0 {
		return nil, fmt.Errorf("free/busy error for %s: %s", id, cal.Errors[0].Reason)
	}

	busy := make([]BusyInterval, 0, len(cal.Busy))
	for _, p := range cal.Busy {
		start, err := time.Parse(time.RFC3339, p.Start)
		if err != nil {
			return nil, fmt.Errorf("invalid busy start %q: %w", p.Start, err)
		}
		end, err := time.Parse(time.RFC3339, p.End)
		if err != nil {
			return nil, fmt.Errorf("invalid busy end %q: %w", p.End, err)
		}
		busy = append(busy, BusyInterval{Start: start, End: end})
	}
	return busy, nil
}

func calendarID(id string) string {
	if id == "" {
		return primaryCalendar
	}
	return id
}

func eventTime(t time.Time, tz string) *calendar.EventDateTime {
	return &calendar.EventDateTime{
		DateTime: t.Format(time.RFC3339),
		TimeZone: tz,
	}
}

func isGone(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone
	}
	return false
}

func toEvent(item *calendar.Event) *Event {
	ev := &Event{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		HtmlLink:    item.HtmlLink,
	}
	if item.Start != nil {
		ev.StartTime = parseEventTime(item.Start)
	}
	if item.End != nil {
		ev.EndTime = parseEventTime(item.End)
	}
	if item.Created != "" {
		ev.Created, _ = time.Parse(time.RFC3339, item.Created)
	}
	if item.ExtendedProperties != nil {
		ev.Private = item.ExtendedProperties.Private
	}
	return ev
}

// parseEventTime handles both timed and all-day events.
func parseEventTime(dt *calendar.EventDateTime) time.Time {
	if dt.DateTime != "" {
		t, _ := time.Parse(time.RFC3339, dt.DateTime)
		return t
	}
	t, _ := time.Parse(time.DateOnly, dt.Date)
	return t
}
