// internal/domain/telegram/client.go
package telegram

// Target addresses a chat and, for forum supergroups, one of its topics.
type Target struct {
	ChatID int64
	// ThreadID selects a forum topic. Zero posts to the main thread.
	ThreadID int
}

// Client sends plain text messages through a Telegram bot.
// Keeps the watcher independent of the bot library.
type Client interface {
	SendText(target Target, text string) error
}
