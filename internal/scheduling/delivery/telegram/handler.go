package telegram

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"task-scheduling-assistant/internal/model"
	"task-scheduling-assistant/internal/scheduling"
	pkgLog "task-scheduling-assistant/pkg/log"
	pkgResponse "task-scheduling-assistant/pkg/response"
	pkgTelegram "task-scheduling-assistant/pkg/telegram"
)

// inbound is the part of an update the handler acts on.
type inbound struct {
	chatID     int64
	text       string
	callbackID string
}

// HandleWebhook is the Gin handler for incoming Telegram webhook updates.
// It acknowledges immediately and processes the update in the background,
// since Telegram expects an answer within a few seconds.
func (h *handler) HandleWebhook(c *gin.Context) {
	ctx := c.Request.Context()

	var update pkgTelegram.Update
	if err := c.ShouldBindBodyWith(&update, binding.JSON); err != nil {
		h.l.Errorf(ctx, "telegram handler: failed to parse update: %v", err)
		pkgResponse.Error(c, err, nil)
		return
	}

	in, ok := parseUpdate(update)
	if !ok {
		pkgResponse.OK(c, map[string]string{"status": "ignored"})
		return
	}

	bgCtx := context.WithoutCancel(ctx)
	go func() {
		if err := h.process(bgCtx, in); err != nil {
			h.l.Errorf(bgCtx, "telegram handler: process chat %d: %v", in.chatID, err)
		}
	}()

	pkgResponse.OK(c, map[string]string{"status": "accepted"})
}

func parseUpdate(u pkgTelegram.Update) (inbound, bool) {
	switch {
	case u.Message != nil && u.Message.Chat != nil && u.Message.Text != "":
		return inbound{chatID: u.Message.Chat.ID, text: u.Message.Text}, true
	case u.CallbackQuery != nil && u.CallbackQuery.Message != nil && u.CallbackQuery.Message.Chat != nil:
		return inbound{
			chatID:     u.CallbackQuery.Message.Chat.ID,
			text:       u.CallbackQuery.Data,
			callbackID: u.CallbackQuery.ID,
		}, true
	}
	return inbound{}, false
}

// process handles one message or button press.
func (h *handler) process(ctx context.Context, in inbound) error {
	userID := UserID(in.chatID)
	ctx = pkgLog.WithUserID(ctx, userID)

	if in.callbackID != "" {
		if err := h.bot.AnswerCallbackQuery(ctx, in.callbackID); err != nil {
			h.l.Warnf(ctx, "telegram handler: answer callback: %v", err)
		}
	}

	switch strings.TrimSpace(in.text) {
	case "/start", "/help":
		return h.bot.SendMessage(ctx, in.chatID, h.tr.T(h.language(ctx, userID), "welcome", nil))
	}

	out, err := h.uc.HandleMessage(ctx, model.Scope{UserID: userID}, scheduling.MessageInput{Text: in.text})
	if err != nil {
		return err
	}
	if !out.Handled {
		return h.bot.SendMessage(ctx, in.chatID, h.tr.T(h.language(ctx, userID), "idle", nil))
	}
	return h.bot.SendMessageWithKeyboard(ctx, in.chatID, out.Reply, keyboard(out.State))
}

func (h *handler) language(ctx context.Context, userID string) string {
	p, err := h.prefs.GetPreferences(ctx, userID)
	if err != nil || p.Language == "" {
		return model.DefaultLanguage
	}
	return p.Language
}

// keyboard offers one-tap answers for the step the user is now in.
// Callback data uses the same words a user would type.
func keyboard(state model.StateTag) []pkgTelegram.InlineKeyboardButton {
	switch state {
	case model.StateAwaitingScheduleConfirmation:
		return []pkgTelegram.InlineKeyboardButton{
			{Text: "✅ oui", CallbackData: "oui"},
			{Text: "🔄 autre", CallbackData: "autre"},
			{Text: "❌ non", CallbackData: "non"},
		}
	case model.StateAwaitingTaskCompletion:
		return []pkgTelegram.InlineKeyboardButton{
			{Text: "✅ fait", CallbackData: "fait"},
			{Text: "❌ pas fait", CallbackData: "pas fait"},
			{Text: "⏳ +15", CallbackData: "+15"},
			{Text: "⏳ +30", CallbackData: "+30"},
		}
	}
	return nil
}
