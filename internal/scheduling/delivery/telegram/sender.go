package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"task-scheduling-assistant/internal/model"
	"task-scheduling-assistant/internal/scheduling"
	pkgTelegram "task-scheduling-assistant/pkg/telegram"
)

const userPrefix = "telegram_"

// ErrNotTelegramUser is returned for user ids that were not minted from a Telegram chat.
var ErrNotTelegramUser = errors.New("not a telegram user id")

// UserID derives the conversation owner from a Telegram chat.
func UserID(chatID int64) string {
	return userPrefix + strconv.FormatInt(chatID, 10)
}

// ChatID is the inverse of UserID.
func ChatID(userID string) (int64, error) {
	raw, ok := strings.CutPrefix(userID, userPrefix)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrNotTelegramUser, userID)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotTelegramUser, userID)
	}
	return id, nil
}

type sender struct {
	bot *pkgTelegram.Bot
}

// NewSender delivers replies to the Telegram chat behind a user id.
func NewSender(bot *pkgTelegram.Bot) scheduling.Sender {
	return sender{bot: bot}
}

func (s sender) Send(ctx context.Context, userID, text string) error {
	chatID, err := ChatID(userID)
	if err != nil {
		return err
	}
	return s.bot.SendMessage(ctx, chatID, text)
}

// SendForState sends text with the inline keyboard of state.
func (s sender) SendForState(ctx context.Context, userID, text string, state model.StateTag) error {
	chatID, err := ChatID(userID)
	if err != nil {
		return err
	}
	return s.bot.SendMessageWithKeyboard(ctx, chatID, text, keyboard(state))
}
