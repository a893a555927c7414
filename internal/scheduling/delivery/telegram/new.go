package telegram

import (
	"context"

	"github.com/gin-gonic/gin"

	"task-scheduling-assistant/internal/model"
	"task-scheduling-assistant/internal/scheduling"
	pkgLog "task-scheduling-assistant/pkg/log"
	pkgTelegram "task-scheduling-assistant/pkg/telegram"
	"task-scheduling-assistant/pkg/translator"
)

// Handler is the interface for the Telegram delivery handler.
type Handler interface {
	HandleWebhook(c *gin.Context)
}

// PreferencesSource resolves the reply language of a user.
type PreferencesSource interface {
	GetPreferences(ctx context.Context, userID string) (model.UserPreferences, error)
}

type handler struct {
	l     pkgLog.Logger
	uc    scheduling.UseCase
	bot   *pkgTelegram.Bot
	tr    *translator.Translator
	prefs PreferencesSource
}

// New creates a new Telegram delivery handler.
func New(l pkgLog.Logger, uc scheduling.UseCase, bot *pkgTelegram.Bot, tr *translator.Translator, prefs PreferencesSource) Handler {
	return &handler{
		l:     l,
		uc:    uc,
		bot:   bot,
		tr:    tr,
		prefs: prefs,
	}
}
