package calendar

import (
	"context"
	"sync"

	"golang.org/x/oauth2"

	"task-scheduling-assistant/internal/model"
)

// persistingTokenSource writes refreshed tokens back to the store.
type persistingTokenSource struct {
	ctx    context.Context
	userID string
	base   oauth2.TokenSource
	store  TokenStore

	mu   sync.Mutex
	last string
}

func (g *googleGateway) tokenSource(ctx context.Context, tok model.CalendarToken) oauth2.TokenSource {
	initial := &oauth2.Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
	}
	if g.oauth == nil {
		return oauth2.StaticTokenSource(initial)
	}
	return &persistingTokenSource{
		ctx:    ctx,
		userID: tok.UserID,
		base:   oauth2.ReuseTokenSource(initial, g.oauth.TokenSource(ctx, initial)),
		store:  g.tokens,
		last:   tok.AccessToken,
	}
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	t, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if t.AccessToken != s.last {
		s.last = t.AccessToken
		_ = s.store.SaveToken(s.ctx, model.CalendarToken{
			UserID:       s.userID,
			AccessToken:  t.AccessToken,
			RefreshToken: t.RefreshToken,
			TokenType:    t.TokenType,
			Expiry:       t.Expiry,
		})
	}
	return t, nil
}
