package notification

import (
	"context"
	"time"

	"task-scheduling-assistant/internal/model"
)

// Dispatcher delivers due outbox rows to peer services.
type Dispatcher interface {
	// Run makes one pass over due rows.
	Run(ctx context.Context) (Result, error)
}

// Reader exposes dead-lettered rows for operators.
type Reader interface {
	ListDead(ctx context.Context, limit int) ([]model.Notification, error)
}

// Result counts what one pass did.
type Result struct {
	Delivered int
	Retried   int
	Dead      int
}

// Options configures delivery. BaseURLs are tried in order; the first 2xx wins.
type Options struct {
	BaseURLs    []string
	Path        string
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	Timeout     time.Duration
	BatchSize   int
	Clock       func() time.Time
}

const (
	DefaultPath        = "/internal/notifications"
	DefaultMaxAttempts = 8
	DefaultBaseBackoff = 30 * time.Second
	DefaultMaxBackoff  = time.Hour
	DefaultTimeout     = 5 * time.Second
	defaultBatchSize   = 50
)

func (o Options) withDefaults() Options {
	if o.Path == "" {
		o.Path = DefaultPath
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.BaseBackoff <= 0 {
		o.BaseBackoff = DefaultBaseBackoff
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = DefaultMaxBackoff
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.BatchSize <= 0 {
		o.BatchSize = defaultBatchSize
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}
