package httpserver

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"task-scheduling-assistant/internal/calendar"
	"task-scheduling-assistant/internal/middleware"
	"task-scheduling-assistant/internal/notification"
	"task-scheduling-assistant/internal/scheduling"
	tgDelivery "task-scheduling-assistant/internal/scheduling/delivery/telegram"
	"task-scheduling-assistant/pkg/log"
	"task-scheduling-assistant/pkg/telegram"
	"task-scheduling-assistant/pkg/translator"
)

// HTTPServer holds all dependencies for the HTTP server.
type HTTPServer struct {
	// Server
	gin         *gin.Engine
	l           log.Logger
	port        int
	mode        string
	environment string
	db          *sqlx.DB
	mwConfig    middleware.Config

	// Domains
	scheduling  scheduling.UseCase
	calendar    calendar.Account
	outbox      notification.Reader
	bot         *telegram.Bot
	translator  *translator.Translator
	preferences tgDelivery.PreferencesSource
}

// Config is the dependency bag passed to New().
type Config struct {
	Logger      log.Logger
	Port        int
	Mode        string
	Environment string
	// DB is pinged by the readiness probe.
	DB         *sqlx.DB
	Middleware middleware.Config

	Scheduling scheduling.UseCase
	Calendar   calendar.Account
	Outbox     notification.Reader

	// Telegram webhook; the route is skipped when Bot is nil.
	Bot         *telegram.Bot
	Translator  *translator.Translator
	Preferences tgDelivery.PreferencesSource
}

// New creates a new HTTPServer instance.
func New(logger log.Logger, cfg Config) (*HTTPServer, error) {
	gin.SetMode(cfg.Mode)

	srv := &HTTPServer{
		l:           logger,
		gin:         gin.New(),
		port:        cfg.Port,
		mode:        cfg.Mode,
		environment: cfg.Environment,
		db:          cfg.DB,
		mwConfig:    cfg.Middleware,
		scheduling:  cfg.Scheduling,
		calendar:    cfg.Calendar,
		outbox:      cfg.Outbox,
		bot:         cfg.Bot,
		translator:  cfg.Translator,
		preferences: cfg.Preferences,
	}

	if err := srv.validate(); err != nil {
		return nil, err
	}

	if err := srv.mapHandlers(); err != nil {
		return nil, err
	}

	return srv, nil
}

func (srv HTTPServer) validate() error {
	if srv.l == nil {
		return errors.New("logger is required")
	}
	if srv.mode == "" {
		return errors.New("mode is required")
	}
	if srv.port == 0 {
		return errors.New("port is required")
	}
	if srv.scheduling == nil {
		return errors.New("scheduling use case is required")
	}
	if srv.bot != nil && (srv.translator == nil || srv.preferences == nil) {
		return errors.New("telegram webhook needs a translator and a preferences source")
	}
	return nil
}

// Handler exposes the router, mainly for tests.
func (srv HTTPServer) Handler() *gin.Engine {
	return srv.gin
}
