package calendar

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"task-scheduling-assistant/internal/model"
)

func (g *googleGateway) AuthCodeURL(userID string) (string, error) {
	if g.oauth == nil {
		return "", ErrOAuthDisabled
	}
	// Offline access + forced consent so Google always returns a refresh token.
	return g.oauth.AuthCodeURL(userID, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

func (g *googleGateway) Exchange(ctx context.Context, userID, code string) error {
	if g.oauth == nil {
		return ErrOAuthDisabled
	}

	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		g.l.Errorf(ctx, "calendar.Exchange: user=%s: %v", userID, err)
		return fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}

	return g.Connect(ctx, model.CalendarToken{
		UserID:       userID,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
		UpdatedAt:    time.Now().UTC(),
	})
}
