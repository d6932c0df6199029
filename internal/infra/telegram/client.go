// internal/infra/telegram/client.go
package telegram

import (
	"fmt"
	"net/http"
	"time"

	domainTelegram "visa_slot_watcher/internal/domain/telegram"

	"gopkg.in/telebot.v3"
)

const defaultRequestTimeout = 30 * time.Second

// TelebotAdapter implements the domain Client interface using the gopkg.in/telebot.v3 library.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// NewOfflineBot builds a send-only bot. Offline skips the getMe handshake so
// construction never touches the network; apiURL empty means the public API.
func NewOfflineBot(token, apiURL string) (*telebot.Bot, error) {
	b, err := telebot.NewBot(telebot.Settings{
		Token:   token,
		URL:     apiURL,
		Offline: true,
		Client:  &http.Client{Timeout: defaultRequestTimeout},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return b, nil
}

// SendText sends a message to the target chat, inside its topic when ThreadID is set.
func (tba *TelebotAdapter) SendText(target domainTelegram.Target, text string) error {
	options := &telebot.SendOptions{
		ThreadID:              target.ThreadID,
		DisableWebPagePreview: true,
	}
	if _, err := tba.bot.Send(telebot.ChatID(target.ChatID), text, options); err != nil {
		return fmt.Errorf("telegram sendMessage to chat %d failed: %w", target.ChatID, err)
	}
	return nil
}
