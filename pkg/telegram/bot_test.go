package telegram_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"task-scheduling-assistant/pkg/telegram"
)

func TestBot(t *testing.T) {
	var lastKeyboard *telegram.InlineKeyboardMarkup

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		switch {
		case strings.HasSuffix(path, "/setWebhook"):
			var req map[string]string
			json.NewDecoder(r.Body).Decode(&req)
			if req["url"] == "cause_error" {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"ok": false, "description": "invalid url"}`))
				return
			}
			w.Write([]byte(`{"ok": true}`))

		case strings.HasSuffix(path, "/sendMessage"):
			var req telegram.SendMessageRequest
			json.NewDecoder(r.Body).Decode(&req)
			lastKeyboard = req.ReplyMarkup
			if req.Text == "cause_error" {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"ok": false, "description": "invalid text"}`))
				return
			}
			if req.Text == "cause_500" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Write([]byte(`{"ok": true}`))

		case strings.HasSuffix(path, "/answerCallbackQuery"):
			w.Write([]byte(`{"ok": true}`))

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	ctx := context.Background()
	bot := telegram.NewBot("test-token")
	bot.SetAPIURL(ts.URL)

	t.Run("SetWebhook Success", func(t *testing.T) {
		if err := bot.SetWebhook(ctx, "https://example.com/webhook", "s3cret"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("SetWebhook API Failed", func(t *testing.T) {
		err := bot.SetWebhook(ctx, "cause_error", "")
		if err == nil || !strings.Contains(err.Error(), "invalid url") {
			t.Fatalf("expected api failure error, got: %v", err)
		}
	})

	t.Run("SendMessage Success", func(t *testing.T) {
		if err := bot.SendMessage(ctx, 12345, "Hello"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if lastKeyboard != nil {
			t.Errorf("plain message should not carry a keyboard")
		}
	})

	t.Run("SendMessageWithKeyboard", func(t *testing.T) {
		buttons := []telegram.InlineKeyboardButton{
			{Text: "1", CallbackData: "1"},
			{Text: "2", CallbackData: "2"},
		}
		if err := bot.SendMessageWithKeyboard(ctx, 12345, "Pick one", buttons); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if lastKeyboard == nil || len(lastKeyboard.InlineKeyboard) != 2 {
			t.Fatalf("expected two keyboard rows, got %+v", lastKeyboard)
		}
	})

	t.Run("SendMessage API Failed", func(t *testing.T) {
		err := bot.SendMessage(ctx, 12345, "cause_error")
		if err == nil || !strings.Contains(err.Error(), "invalid text") {
			t.Fatalf("expected api failure error, got: %v", err)
		}
	})

	t.Run("SendMessage HTTP Failed", func(t *testing.T) {
		if err := bot.SendMessage(ctx, 12345, "cause_500"); err == nil {
			t.Fatalf("expected error on 500")
		}
	})

	t.Run("AnswerCallbackQuery", func(t *testing.T) {
		if err := bot.AnswerCallbackQuery(ctx, "cb-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("Invalid API URL", func(t *testing.T) {
		badBot := telegram.NewBot("test")
		badBot.SetAPIURL("http://invalid-url.local:1234")
		if err := badBot.SendMessage(ctx, 12345, "fail"); err == nil {
			t.Errorf("expected network failure on invalid domain")
		}
	})
}
