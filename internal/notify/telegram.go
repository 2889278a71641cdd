// internal/notify/telegram.go

// Package notify pushes needs-attention notices to a configured chat so a
// session waiting on permission does not sit unnoticed.
package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/user/hooksmith/internal/types"
)

// Telegram sends one-line notices through a bot.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram creates a Telegram notifier for the given bot token and chat.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

// NotifyPermission reports that a session is blocked on a permission prompt.
func (t *Telegram) NotifyPermission(sess *types.Session, message string) error {
	msg := tgbotapi.NewMessage(t.chatID, FormatPermissionNotice(sess, message))
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}

// FormatPermissionNotice renders the notice text: short session id, working
// directory, and the host's notification message.
func FormatPermissionNotice(sess *types.Session, message string) string {
	id := sess.SessionID
	if len(id) > 8 {
		id = id[:8]
	}
	if message == "" {
		message = "needs permission"
	}
	return fmt.Sprintf("Session %s in %s: %s", id, sess.Cwd, message)
}
