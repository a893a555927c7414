package http

import "github.com/gin-gonic/gin"

// RegisterRoutes maps the outbox endpoints under rg (usually /api/v1).
func RegisterRoutes(rg *gin.RouterGroup, h *handler) {
	rg.GET("/notifications/dead", h.ListDead)
}
