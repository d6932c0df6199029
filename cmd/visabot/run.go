package main

import (
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"visa_slot_watcher/internal/app"
	"visa_slot_watcher/internal/infra/logger"
	"visa_slot_watcher/internal/infra/scheduler"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the watcher loop (default)",
	Long: `Sign in, poll the appointment page until interrupted and notify on changes.

The loop rests after time.work_limit_time hours of work and backs off for
time.ban_cooldown_time hours when every location reports no appointments
on all configured accounts. SIGINT or SIGTERM stops it cleanly.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, logCloser, err := setup()
	if err != nil {
		return err
	}
	defer logCloser.Close()
	mainLogger := logger.Component("main")

	notifier, err := newNotifier(cfg)
	if err != nil {
		return err
	}

	heartbeat, err := scheduler.NewHeartbeatSchedule(cfg.Notification.HeartbeatCron, time.Now())
	if err != nil {
		return err
	}
	mainLogger.WithField("heartbeat", heartbeat.String()).Info("Heartbeat schedule armed")

	sess, err := newSession(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			mainLogger.WithError(err).Warn("Browser did not shut down cleanly")
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	watcher := app.NewWatcher(
		app.SettingsFromConfig(cfg),
		sess,
		notifier,
		app.SystemClock{},
		rng,
		heartbeat,
		logger.Component("watcher"),
	)

	if err := watcher.Run(ctx); err != nil {
		mainLogger.WithError(err).Error("Watcher stopped on a fatal error")
		return err
	}
	mainLogger.Info("Shut down gracefully")
	return nil
}
