package app

import (
	"context"
	"errors"
	"testing"

	domainTelegram "visa_slot_watcher/internal/domain/telegram"
)

type fakeTelegramClient struct {
	target domainTelegram.Target
	texts  []string
	err    error
}

func (c *fakeTelegramClient) SendText(target domainTelegram.Target, text string) error {
	c.target = target
	c.texts = append(c.texts, text)
	return c.err
}

func TestTelegramNotifier_Notify(t *testing.T) {
	logger, _ := newTestLogger()
	client := &fakeTelegramClient{}
	target := domainTelegram.Target{ChatID: 42, ThreadID: 7}
	n := NewTelegramNotifier(client, target, logger)

	if err := n.Notify(context.Background(), "SUCCESS", `{"Yerevan":"2024-03-01"}`); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if len(client.texts) != 1 || client.texts[0] != `{"Yerevan":"2024-03-01"}` {
		t.Errorf("texts = %v", client.texts)
	}
	if client.target != target {
		t.Errorf("target = %+v, want %+v", client.target, target)
	}
}

func TestTelegramNotifier_Unconfigured(t *testing.T) {
	logger, hook := newTestLogger()
	n := NewTelegramNotifier(nil, domainTelegram.Target{}, logger)

	if err := n.Notify(context.Background(), "SUCCESS", "msg"); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if hook.LastEntry() == nil || hook.LastEntry().Message != "Telegram is not configured, notification skipped" {
		t.Errorf("last log entry = %+v", hook.LastEntry())
	}
}

func TestTelegramNotifier_SendError(t *testing.T) {
	logger, _ := newTestLogger()
	sendErr := errors.New("Bad Request: chat not found")
	n := NewTelegramNotifier(&fakeTelegramClient{err: sendErr}, domainTelegram.Target{ChatID: 1}, logger)

	err := n.Notify(context.Background(), "SUCCESS", "msg")
	if !errors.Is(err, sendErr) {
		t.Fatalf("Notify() error = %v, want wrapped %v", err, sendErr)
	}
}

func TestTelegramNotifier_CancelledContext(t *testing.T) {
	logger, _ := newTestLogger()
	client := &fakeTelegramClient{}
	n := NewTelegramNotifier(client, domainTelegram.Target{ChatID: 1}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := n.Notify(ctx, "SUCCESS", "msg"); !errors.Is(err, context.Canceled) {
		t.Fatalf("Notify() error = %v, want context.Canceled", err)
	}
	if len(client.texts) != 0 {
		t.Error("nothing must be sent on a cancelled context")
	}
}
