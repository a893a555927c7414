package http

import (
	"task-scheduling-assistant/internal/calendar"
	"task-scheduling-assistant/pkg/log"
)

type handler struct {
	l       log.Logger
	account calendar.Account
}

// New creates a new HTTP handler for calendar connections.
func New(l log.Logger, account calendar.Account) *handler {
	return &handler{
		l:       l,
		account: account,
	}
}
