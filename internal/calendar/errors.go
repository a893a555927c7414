package calendar

import "errors"

var (
	ErrNotConnected   = errors.New("calendar not connected")
	ErrEventNotFound  = errors.New("calendar event not found")
	ErrProviderFailed = errors.New("calendar provider request failed")
	ErrOAuthDisabled  = errors.New("calendar oauth client not configured")
	ErrEmptyToken     = errors.New("calendar token has no access token")
)
