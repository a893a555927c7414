package calendar

import (
	"context"
	"time"

	"task-scheduling-assistant/internal/model"
)

// Gateway is the narrow view of the user's external calendar.
type Gateway interface {
	IsConnected(ctx context.Context, userID string) (bool, error)
	CreateEvent(ctx context.Context, input CreateEventInput) (CreateEventOutput, error)
	// UpdateEvent moves an event; ErrEventNotFound when it was deleted on the provider side.
	UpdateEvent(ctx context.Context, input UpdateEventInput) (UpdateEventOutput, error)
	// DeleteEvent treats an already missing event as success.
	DeleteEvent(ctx context.Context, userID, eventID string) error
	BusyPeriods(ctx context.Context, userID string, from, to time.Time) ([]model.BusyPeriod, error)
	// ListTaggedEvents lists events this service created.
	ListTaggedEvents(ctx context.Context, userID string, from, to time.Time) ([]TaggedEvent, error)
}

// Connector stores a user's OAuth token, making the calendar "connected".
type Connector interface {
	Connect(ctx context.Context, token model.CalendarToken) error
}

// Authorizer runs the OAuth consent flow for a user.
type Authorizer interface {
	// AuthCodeURL returns the consent page URL; the user id travels as OAuth state.
	AuthCodeURL(userID string) (string, error)
	// Exchange trades an authorization code for a token and connects the user.
	Exchange(ctx context.Context, userID, code string) error
}

// Account is the per-user connection surface exposed over HTTP.
type Account interface {
	Connector
	Authorizer
	IsConnected(ctx context.Context, userID string) (bool, error)
}

// Service is the full calendar surface: provider access plus per-user connection.
type Service interface {
	Gateway
	Account
}

// TokenStore persists per-user OAuth tokens.
type TokenStore interface {
	GetToken(ctx context.Context, userID string) (model.CalendarToken, bool, error)
	SaveToken(ctx context.Context, token model.CalendarToken) error
	ListConnectedUsers(ctx context.Context) ([]string, error)
}
