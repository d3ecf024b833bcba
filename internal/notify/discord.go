package notify

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/ghostlabs/ghost-core/internal/model"
)

// DiscordNotifier sends Notifications as plain channel messages via the
// Discord Bot API to a single fixed destination channel.
type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
}

// NewDiscordNotifier constructs a notifier that posts to channelID using
// the bot identified by token. The session is opened lazily on first use
// to avoid holding a gateway connection open just to send messages.
func NewDiscordNotifier(token, channelID string) (*DiscordNotifier, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("notify: create discord session: %w", err)
	}
	return &DiscordNotifier{session: session, channelID: channelID}, nil
}

func (d *DiscordNotifier) Notify(_ context.Context, n model.Notification) error {
	text := fmt.Sprintf("**[%s] %s**\n\n%s", n.Kind, n.Subject, n.Body)
	if n.Link != "" {
		text += "\n" + n.Link
	}
	if _, err := d.session.ChannelMessageSend(d.channelID, text); err != nil {
		return fmt.Errorf("notify: discord send: %w", err)
	}
	return nil
}
