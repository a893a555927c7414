package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"task-scheduling-assistant/pkg/response"
	"task-scheduling-assistant/pkg/telegram"
)

const (
	defaultRateLimitPerMin = 30
	limiterCacheSize       = 1000
	limiterTTL             = 5 * time.Minute
)

// KeyFunc extracts the rate-limit key of a request.
type KeyFunc func(c *gin.Context) string

// RateLimit rejects requests once the key's bucket is empty.
func (m Middleware) RateLimit(key KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		k := key(c)
		if err := m.limiter.Allow(k); err != nil {
			m.l.Warnf(c.Request.Context(), "middleware.RateLimit: %v", err)
			response.TooManyRequests(c)
			return
		}
		c.Next()
	}
}

// UserKey keys on the :user_id path param, then the JSON body's user_id, then the client IP.
// The body is cached so handlers must bind it with ShouldBindBodyWith.
func UserKey(c *gin.Context) string {
	if id := c.Param("user_id"); id != "" {
		return id
	}
	if c.Request.Method != http.MethodGet && c.ContentType() == binding.MIMEJSON {
		var body struct {
			UserID string `json:"user_id"`
		}
		if err := c.ShouldBindBodyWith(&body, binding.JSON); err == nil && body.UserID != "" {
			return body.UserID
		}
	}
	return c.ClientIP()
}

// TelegramKey keys on the chat of a Telegram update.
func TelegramKey(c *gin.Context) string {
	var update telegram.Update
	if err := c.ShouldBindBodyWith(&update, binding.JSON); err == nil {
		switch {
		case update.Message != nil && update.Message.Chat != nil:
			return fmt.Sprintf("telegram_%d", update.Message.Chat.ID)
		case update.CallbackQuery != nil && update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil:
			return fmt.Sprintf("telegram_%d", update.CallbackQuery.Message.Chat.ID)
		}
	}
	return c.ClientIP()
}

// rateLimiter keeps one token bucket per key with auto-cleanup.
type rateLimiter struct {
	limiters *expirable.LRU[string, *rate.Limiter]
	rate     rate.Limit
	burst    int
}

func newRateLimiter(requestsPerMin int) *rateLimiter {
	if requestsPerMin <= 0 {
		requestsPerMin = defaultRateLimitPerMin
	}
	return &rateLimiter{
		limiters: expirable.NewLRU[string, *rate.Limiter](limiterCacheSize, nil, limiterTTL),
		rate:     rate.Limit(float64(requestsPerMin) / 60.0),
		burst:    max(1, requestsPerMin/10),
	}
}

func (rl *rateLimiter) Allow(key string) error {
	limiter, ok := rl.limiters.Get(key)
	if !ok {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters.Add(key, limiter)
	}

	if !limiter.Allow() {
		return fmt.Errorf("rate limit exceeded for %s", key)
	}
	return nil
}
