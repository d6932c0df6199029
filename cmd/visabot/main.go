// Package main is the entry point of the visabot CLI.
//
// Usage:
//
//	visabot                      # same as "visabot run"
//	visabot run --config config.ini
//	visabot check                # sign in, poll once, print the snapshot
//	visabot notify-test          # send one Telegram test message
//	visabot embassies            # list the built-in embassy table
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "visabot",
	Short: "Watch the US visa appointment site and notify Telegram on changes",
	Long: `visabot signs in to the US visa appointment site with a browser session,
polls the payment page (or the available days of the facility) and sends a
Telegram message when the appointment availability changes.

Configuration is read from an INI, YAML or JSON file; secrets may come from
the environment or a .env file (VISA_USERNAME, VISA_PASSWORD,
TELEGRAM_BOT_TOKEN, TELEGRAM_CHAT_ID).`,
	SilenceUsage: true,
	RunE:         runWatch,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.ini", "path to config file (INI, YAML or JSON)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}
