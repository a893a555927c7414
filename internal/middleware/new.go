package middleware

import (
	"task-scheduling-assistant/pkg/log"
)

// Config holds middleware settings.
type Config struct {
	// RateLimitPerMin is the number of inbound messages one user may send per minute.
	RateLimitPerMin int
	// TelegramSecret is the secret_token registered with setWebhook. Empty disables the check.
	TelegramSecret string
}

type Middleware struct {
	l              log.Logger
	limiter        *rateLimiter
	telegramSecret string
}

func New(l log.Logger, cfg Config) Middleware {
	return Middleware{
		l:              l,
		limiter:        newRateLimiter(cfg.RateLimitPerMin),
		telegramSecret: cfg.TelegramSecret,
	}
}
