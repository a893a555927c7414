package model

import "time"

// CalendarToken is a user's stored OAuth2 token for the calendar provider.
type CalendarToken struct {
	UserID       string
	AccessToken  string
	RefreshToken string
	TokenType    string
	Expiry       time.Time
	UpdatedAt    time.Time
}
