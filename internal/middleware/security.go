package middleware

import (
	"crypto/hmac"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	pkgErrors "task-scheduling-assistant/pkg/errors"
	"task-scheduling-assistant/pkg/log"
	"task-scheduling-assistant/pkg/response"
)

const (
	TelegramSecretHeader = "X-Telegram-Bot-Api-Secret-Token"
	RequestIDHeader      = "X-Request-ID"
)

// TelegramSecret verifies the secret token Telegram attaches to webhook calls.
func (m Middleware) TelegramSecret() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.telegramSecret == "" {
			c.Next()
			return
		}
		got := c.GetHeader(TelegramSecretHeader)
		if !hmac.Equal([]byte(got), []byte(m.telegramSecret)) {
			m.l.Warnf(c.Request.Context(), "middleware.TelegramSecret: invalid token from %s", c.ClientIP())
			response.Error(c, pkgErrors.NewHTTPError(http.StatusUnauthorized, "invalid webhook token"), nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequestID tags the request context and response with a request id.
func (m Middleware) RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(log.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}
