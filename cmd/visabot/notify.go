package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var notifyTestCmd = &cobra.Command{
	Use:   "notify-test",
	Short: "Send one test message to the configured Telegram chat",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logCloser, err := setup()
		if err != nil {
			return err
		}
		defer logCloser.Close()

		notifier, err := newNotifier(cfg)
		if err != nil {
			return err
		}
		msg := fmt.Sprintf("visabot test message for %s at %s", cfg.Location(), time.Now().Format(time.RFC3339))
		return notifier.Notify(cmd.Context(), "TEST", msg)
	},
}

func init() {
	rootCmd.AddCommand(notifyTestCmd)
}
