package httpserver

import (
	"context"

	"github.com/gin-gonic/gin"

	calendarHTTP "task-scheduling-assistant/internal/calendar/delivery/http"
	"task-scheduling-assistant/internal/middleware"
	notificationHTTP "task-scheduling-assistant/internal/notification/delivery/http"
	schedulingHTTP "task-scheduling-assistant/internal/scheduling/delivery/http"
	tgDelivery "task-scheduling-assistant/internal/scheduling/delivery/telegram"
)

// setupSchedulingDomain registers /api/v1/messages, /tasks, /events and /users/:user_id/{conversation,preferences}.
func (srv HTTPServer) setupSchedulingDomain(ctx context.Context, api *gin.RouterGroup, mw middleware.Middleware) {
	h := schedulingHTTP.New(srv.l, srv.scheduling)
	schedulingHTTP.RegisterRoutes(api, h, mw)
	srv.l.Infof(ctx, "Scheduling domain registered")
}

func (srv HTTPServer) setupCalendarDomain(ctx context.Context, api *gin.RouterGroup) {
	if srv.calendar == nil {
		srv.l.Infof(ctx, "Calendar account not configured, skipping calendar routes")
		return
	}
	calendarHTTP.RegisterRoutes(api, calendarHTTP.New(srv.l, srv.calendar))
	srv.l.Infof(ctx, "Calendar domain registered")
}

func (srv HTTPServer) setupNotificationDomain(ctx context.Context, api *gin.RouterGroup) {
	if srv.outbox == nil {
		srv.l.Infof(ctx, "Outbox not configured, skipping notification routes")
		return
	}
	notificationHTTP.RegisterRoutes(api, notificationHTTP.New(srv.l, srv.outbox))
	srv.l.Infof(ctx, "Notification domain registered")
}

func (srv HTTPServer) setupTelegramWebhook(ctx context.Context, mw middleware.Middleware) {
	if srv.bot == nil {
		srv.l.Infof(ctx, "Telegram bot not configured, skipping webhook route")
		return
	}
	h := tgDelivery.New(srv.l, srv.scheduling, srv.bot, srv.translator, srv.preferences)
	srv.gin.POST("/webhook/telegram", mw.TelegramSecret(), mw.RateLimit(middleware.TelegramKey), h.HandleWebhook)
	srv.l.Infof(ctx, "Telegram webhook route registered at POST /webhook/telegram")
}
