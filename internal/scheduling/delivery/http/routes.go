package http

import (
	"github.com/gin-gonic/gin"

	"task-scheduling-assistant/internal/middleware"
)

// RegisterRoutes maps the scheduling endpoints under rg (usually /api/v1).
// Endpoints that drive a conversation are rate limited per user.
func RegisterRoutes(rg *gin.RouterGroup, h *handler, mw middleware.Middleware) {
	limited := mw.RateLimit(middleware.UserKey)

	rg.POST("/messages", limited, h.HandleMessage)

	tasks := rg.Group("/tasks")
	{
		tasks.POST("", limited, h.CreateTask)
		tasks.POST("/:id/propose", limited, h.ProposeForTask)
	}

	rg.POST("/events/:id/respond", limited, h.RespondToEvent)

	users := rg.Group("/users/:user_id")
	{
		users.GET("/conversation", h.Conversation)
		users.PUT("/preferences", limited, h.UpdatePreferences)
	}
}
