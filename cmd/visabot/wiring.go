package main

import (
	"context"
	"fmt"
	"io"

	"visa_slot_watcher/internal/app"
	"visa_slot_watcher/internal/domain/session"
	domainTelegram "visa_slot_watcher/internal/domain/telegram"
	"visa_slot_watcher/internal/infra/browser"
	"visa_slot_watcher/internal/infra/config"
	"visa_slot_watcher/internal/infra/logger"
	"visa_slot_watcher/internal/infra/telegram"

	"github.com/sirupsen/logrus"
)

// setup loads the configuration and initializes the global logger.
// The returned closer releases the daily log file.
func setup() (*config.AppConfig, io.Closer, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("could not load configuration: %w", err)
	}
	closer, err := logger.Init(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	logger.Component("main").WithFields(logrus.Fields{
		"config":      configFile,
		"log_level":   cfg.Log.Level,
		"environment": cfg.Log.Environment,
		"mode":        cfg.Poll.Mode,
		"embassy":     cfg.Location(),
	}).Info("Configuration loaded")
	return cfg, closer, nil
}

// newNotifier builds the Telegram notifier; an empty bot token leaves it unconfigured.
func newNotifier(cfg *config.AppConfig) (*app.TelegramNotifier, error) {
	target := domainTelegram.Target{
		ChatID:   cfg.Notification.TelegramChatID,
		ThreadID: cfg.Notification.TelegramMessageThreadID,
	}
	notifierLogger := logger.Component("notifier")

	if cfg.Notification.TelegramBotToken == "" {
		notifierLogger.Warn("notification.telegram_bot_token is empty, messages will only be logged")
		return app.NewTelegramNotifier(nil, target, notifierLogger), nil
	}
	bot, err := telegram.NewOfflineBot(cfg.Notification.TelegramBotToken, cfg.Notification.TelegramAPIURL)
	if err != nil {
		return nil, err
	}
	return app.NewTelegramNotifier(telegram.NewTelebotAdapter(bot), target, notifierLogger), nil
}

// signOutLogged signs out and logs a failure; nothing is left to retry it.
func signOutLogged(ctx context.Context, sess session.Session, log *logrus.Entry) {
	if err := sess.SignOut(ctx); err != nil {
		log.WithError(err).Warn("Sign-out failed")
	}
}

func newSession(cfg *config.AppConfig) (*browser.ChromeSession, error) {
	sess, err := browser.NewChromeSession(browser.OptionsFromConfig(cfg), logger.Component("browser"))
	if err != nil {
		return nil, fmt.Errorf("could not start browser session: %w", err)
	}
	return sess, nil
}
