package notify

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/ghostlabs/ghost-core/internal/model"
)

// TelegramNotifier sends Notifications as plain chat messages via the
// Telegram Bot API to a single fixed destination chat.
type TelegramNotifier struct {
	bot    *telego.Bot
	chatID int64
}

// NewTelegramNotifier constructs a notifier that posts to chatID using the
// bot identified by token.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("notify: create telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (t *TelegramNotifier) Notify(ctx context.Context, n model.Notification) error {
	text := fmt.Sprintf("[%s] %s\n\n%s", n.Kind, n.Subject, n.Body)
	if n.Link != "" {
		text += "\n" + n.Link
	}
	msg := tu.Message(tu.ID(t.chatID), text)
	_, err := t.bot.SendMessage(ctx, msg)
	if err != nil {
		return fmt.Errorf("notify: telegram send: %w", err)
	}
	return nil
}
