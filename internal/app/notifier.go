// internal/app/notifier.go
package app

import (
	"context"
	"fmt"
	domainTelegram "visa_slot_watcher/internal/domain/telegram"

	"github.com/sirupsen/logrus"
)

// Notifier delivers a message to the user.
type Notifier interface {
	// Notify sends exactly one message. title only labels the log line;
	// msg is the text the user receives.
	Notify(ctx context.Context, title, msg string) error
}

// TelegramNotifier implements Notifier on top of the domain Telegram client.
type TelegramNotifier struct {
	telegramClient domainTelegram.Client // nil disables sending
	target         domainTelegram.Target
	logger         *logrus.Entry
}

func NewTelegramNotifier(tc domainTelegram.Client, target domainTelegram.Target, logger *logrus.Entry) *TelegramNotifier {
	return &TelegramNotifier{
		telegramClient: tc,
		target:         target,
		logger:         logger,
	}
}

// Notify is best-effort: the error is returned for logging, nothing retries it.
func (n *TelegramNotifier) Notify(ctx context.Context, title, msg string) error {
	logCtx := n.logger.WithField("title", title)
	if n.telegramClient == nil {
		logCtx.Info("Telegram is not configured, notification skipped")
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	logCtx.Info("Sending notification")
	if err := n.telegramClient.SendText(n.target, msg); err != nil {
		logCtx.WithError(err).Error("Failed to send notification")
		return fmt.Errorf("notification %q failed: %w", title, err)
	}
	logCtx.WithField("chat_id", n.target.ChatID).Info("Notification sent")
	return nil
}
