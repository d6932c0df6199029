package main

import (
	"context"
	"fmt"
	"strings"

	"visa_slot_watcher/internal/domain/appointment"
	"visa_slot_watcher/internal/infra/config"
	"visa_slot_watcher/internal/infra/logger"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Sign in, poll once and print the snapshot",
	Long: `Run the login sequence with the first configured account, read the
availability once in the configured poll mode, print the snapshot as JSON
and sign out. Useful to verify credentials, embassy and selectors.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, logCloser, err := setup()
	if err != nil {
		return err
	}
	defer logCloser.Close()

	sess, err := newSession(cfg)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := cmd.Context()
	if err := sess.SignIn(ctx, cfg.Accounts[0]); err != nil {
		return err
	}
	defer signOutLogged(context.WithoutCancel(ctx), sess, logger.Component("main"))

	var res appointment.PollResult
	if cfg.Poll.Mode == config.PollModeDates {
		dates, err := sess.AvailableDates(ctx)
		if err != nil {
			return err
		}
		res = appointment.DatesResult(cfg.Location(), cfg.Poll.UnavailableStatus, cfg.Period, cfg.CurrentAppointment, dates)
	} else {
		if res, err = sess.PaymentSnapshot(ctx); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, res.Snapshot.String())
	if !res.Complete {
		fmt.Fprintln(out, "warning: the payment table was incomplete")
	}
	if cfg.Poll.Mode == config.PollModeDates {
		if date, ok := cfg.Period.FirstAvailable(res.Dates, cfg.CurrentAppointment); ok {
			fmt.Fprintf(out, "first date in range: %s\n", date)
			if times, err := sess.AvailableTimes(ctx, date); err == nil {
				fmt.Fprintf(out, "times: %s\n", strings.Join(times, ", "))
			}
		} else {
			fmt.Fprintf(out, "no date in range %s\n", cfg.Period.Narrow(cfg.CurrentAppointment))
		}
	}
	return nil
}
