package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/oauth2"

	"task-scheduling-assistant/internal/model"
	"task-scheduling-assistant/pkg/gcalendar"
	"task-scheduling-assistant/pkg/log"
)

// ClientFactory builds a calendar client authorized by ts.
type ClientFactory func(ctx context.Context, ts oauth2.TokenSource) (*gcalendar.Client, error)

// GoogleOptions configures the Google Calendar gateway.
type GoogleOptions struct {
	OAuth      *oauth2.Config
	CalendarID string
	Factory    ClientFactory
}

type googleGateway struct {
	l          log.Logger
	tokens     TokenStore
	oauth      *oauth2.Config
	calendarID string
	factory    ClientFactory
	connected  *expirable.LRU[string, bool]
}

// NewGoogle creates a Gateway backed by Google Calendar v3 with per-user OAuth tokens.
func NewGoogle(l log.Logger, tokens TokenStore, opt GoogleOptions) *googleGateway {
	factory := opt.Factory
	if factory == nil {
		factory = func(ctx context.Context, ts oauth2.TokenSource) (*gcalendar.Client, error) {
			return gcalendar.NewClientFromTokenSource(ctx, ts)
		}
	}
	return &googleGateway{
		l:          l,
		tokens:     tokens,
		oauth:      opt.OAuth,
		calendarID: opt.CalendarID,
		factory:    factory,
		connected:  expirable.NewLRU[string, bool](cacheSize, nil, connectedTTL),
	}
}

func (g *googleGateway) IsConnected(ctx context.Context, userID string) (bool, error) {
	if v, ok := g.connected.Get(userID); ok {
		return v, nil
	}

	_, found, err := g.tokens.GetToken(ctx, userID)
	if err != nil {
		g.l.Errorf(ctx, "calendar.IsConnected: %v", err)
		return false, err
	}
	g.connected.Add(userID, found)
	return found, nil
}

// Connect stores the token and refreshes the connected cache.
func (g *googleGateway) Connect(ctx context.Context, token model.CalendarToken) error {
	if token.AccessToken == "" {
		return ErrEmptyToken
	}
	if token.UpdatedAt.IsZero() {
		token.UpdatedAt = time.Now().UTC()
	}
	if err := g.tokens.SaveToken(ctx, token); err != nil {
		return err
	}
	g.connected.Add(token.UserID, true)
	return nil
}

func (g *googleGateway) CreateEvent(ctx context.Context, input CreateEventInput) (CreateEventOutput, error) {
	client, err := g.client(ctx, input.UserID)
	if err != nil {
		return CreateEventOutput{}, err
	}

	ev, err := client.CreateEvent(ctx, gcalendar.CreateEventRequest{
		CalendarID:  g.calendarID,
		Summary:     input.Title,
		Description: input.Description,
		StartTime:   input.Start,
		EndTime:     input.End,
		Timezone:    input.Timezone,
		Private:     map[string]string{TagKey: TagValue, TaskIDKey: input.TaskID},
	})
	if err != nil {
		g.l.Errorf(ctx, "calendar.CreateEvent: user=%s task=%s: %v", input.UserID, input.TaskID, err)
		return CreateEventOutput{}, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}
	return CreateEventOutput{Success: ev.ID != "", EventID: ev.ID}, nil
}

func (g *googleGateway) UpdateEvent(ctx context.Context, input UpdateEventInput) (UpdateEventOutput, error) {
	client, err := g.client(ctx, input.UserID)
	if err != nil {
		return UpdateEventOutput{}, err
	}

	_, err = client.PatchEvent(ctx, gcalendar.PatchEventRequest{
		CalendarID: g.calendarID,
		EventID:    input.EventID,
		StartTime:  input.Start,
		EndTime:    input.End,
		Timezone:   input.Timezone,
	})
	if errors.Is(err, gcalendar.ErrNotFound) {
		return UpdateEventOutput{}, ErrEventNotFound
	}
	if err != nil {
		g.l.Errorf(ctx, "calendar.UpdateEvent: user=%s event=%s: %v", input.UserID, input.EventID, err)
		return UpdateEventOutput{}, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}
	return UpdateEventOutput{Success: true}, nil
}

func (g *googleGateway) DeleteEvent(ctx context.Context, userID, eventID string) error {
	client, err := g.client(ctx, userID)
	if err != nil {
		return err
	}

	err = client.DeleteEvent(ctx, g.calendarID, eventID)
	if err == nil || errors.Is(err, gcalendar.ErrNotFound) {
		return nil
	}
	g.l.Errorf(ctx, "calendar.DeleteEvent: user=%s event=%s: %v", userID, eventID, err)
	return fmt.Errorf("%w: %v", ErrProviderFailed, err)
}

func (g *googleGateway) BusyPeriods(ctx context.Context, userID string, from, to time.Time) ([]model.BusyPeriod, error) {
	client, err := g.client(ctx, userID)
	if err != nil {
		return nil, err
	}

	busy, err := client.FreeBusy(ctx, g.calendarID, from, to)
	if err != nil {
		g.l.Errorf(ctx, "calendar.BusyPeriods: user=%s: %v", userID, err)
		return nil, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}

	out := make([]model.BusyPeriod, 0, len(busy))
	for _, b := range busy {
		out = append(out, model.BusyPeriod{Start: b.Start, End: b.End})
	}
	return out, nil
}

func (g *googleGateway) ListTaggedEvents(ctx context.Context, userID string, from, to time.Time) ([]TaggedEvent, error) {
	client, err := g.client(ctx, userID)
	if err != nil {
		return nil, err
	}

	events, err := client.ListEvents(ctx, gcalendar.ListEventsRequest{
		CalendarID:      g.calendarID,
		TimeMin:         from,
		TimeMax:         to,
		PrivateProperty: []string{TagKey + "=" + TagValue},
	})
	if err != nil {
		g.l.Errorf(ctx, "calendar.ListTaggedEvents: user=%s: %v", userID, err)
		return nil, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}

	out := make([]TaggedEvent, 0, len(events))
	for _, ev := range events {
		out = append(out, TaggedEvent{
			EventID: ev.ID,
			TaskID:  ev.Private[TaskIDKey],
			Start:   ev.StartTime,
			End:     ev.EndTime,
			Created: ev.Created,
		})
	}
	return out, nil
}

func (g *googleGateway) client(ctx context.Context, userID string) (*gcalendar.Client, error) {
	tok, found, err := g.tokens.GetToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		g.connected.Add(userID, false)
		return nil, ErrNotConnected
	}

	client, err := g.factory(ctx, g.tokenSource(ctx, tok))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}
	return client, nil
}
