package http

import (
	"task-scheduling-assistant/internal/scheduling"
	"task-scheduling-assistant/pkg/log"
)

type handler struct {
	l  log.Logger
	uc scheduling.UseCase
}

// New creates a new HTTP handler for the scheduling domain.
func New(l log.Logger, uc scheduling.UseCase) *handler {
	return &handler{
		l:  l,
		uc: uc,
	}
}
