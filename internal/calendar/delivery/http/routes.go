package http

import "github.com/gin-gonic/gin"

// RegisterRoutes maps the calendar connection endpoints under rg (usually /api/v1).
func RegisterRoutes(rg *gin.RouterGroup, h *handler) {
	users := rg.Group("/users/:user_id/calendar")
	{
		users.GET("", h.Status)
		users.PUT("/token", h.PutToken)
	}
	rg.GET("/calendar/oauth/callback", h.OAuthCallback)
}
