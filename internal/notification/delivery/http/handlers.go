package http

import (
	"github.com/gin-gonic/gin"

	"task-scheduling-assistant/pkg/response"
)

// ListDead godoc
// @Summary     List dead-lettered notifications
// @Description Outbox rows that exhausted their delivery attempts, newest first.
// @Tags        Notifications
// @Produce     json
// @Param       limit query int false "Max rows (default 50)"
// @Success     200 {object} listDeadResp
// @Failure     400 {object} response.Resp "Bad Request"
// @Failure     500 {object} response.Resp "Internal Server Error"
// @Router      /api/v1/notifications/dead [GET]
func (h *handler) ListDead(c *gin.Context) {
	ctx := c.Request.Context()

	var req listDeadReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, err, nil)
		return
	}
	limit := req.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)

	rows, err := h.reader.ListDead(ctx, limit)
	if err != nil {
		h.l.Errorf(ctx, "notification.http.ListDead: %v", err)
		response.InternalError(c, err)
		return
	}
	response.OK(c, newListDeadResp(rows))
}
