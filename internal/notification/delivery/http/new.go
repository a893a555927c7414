package http

import (
	"task-scheduling-assistant/internal/notification"
	"task-scheduling-assistant/pkg/log"
)

type handler struct {
	l      log.Logger
	reader notification.Reader
}

// New creates the HTTP handler for outbox inspection.
func New(l log.Logger, reader notification.Reader) *handler {
	return &handler{l: l, reader: reader}
}
