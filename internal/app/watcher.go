// internal/app/watcher.go
package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime/debug"
	"strings"
	"time"

	"visa_slot_watcher/internal/domain/appointment"
	"visa_slot_watcher/internal/domain/session"
	"visa_slot_watcher/internal/infra/config"
	"visa_slot_watcher/internal/infra/scheduler"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// State is a node of the watcher state machine.
type State string

const (
	StateBootstrapping     State = "BOOTSTRAPPING"
	StatePolling           State = "POLLING"
	StateCooldownBanned    State = "COOLDOWN_BANNED"
	StateCooldownWorkLimit State = "COOLDOWN_WORKLIMIT"
	StateStopped           State = "STOPPED"
)

// shutdownTimeout bounds the sign-out attempted when Run returns.
const shutdownTimeout = 30 * time.Second

// ErrStopped is returned by Step once the watcher reached StateStopped.
var ErrStopped = errors.New("watcher is stopped")

// LoopState is the mutable state carried between steps.
type LoopState struct {
	State State
	// BootstrappedAt starts the working-time accumulator.
	BootstrappedAt time.Time
	// Requests counts polls since the last bootstrap.
	Requests int
	// Previous is the last retained snapshot; nil before the first conclusive poll.
	Previous appointment.Snapshot
	// BanCount counts consecutive all-unavailable polls.
	BanCount     int
	AccountIndex int
	// Notifications counts messages sent for snapshot changes.
	Notifications int
}

// Settings is the slice of configuration the watcher works with.
type Settings struct {
	Accounts []session.Account
	// PollDates selects the days JSON endpoint instead of the payment table.
	PollDates bool
	// Location names the office in dates mode snapshots.
	Location            string
	UnavailableStatus   string
	CompareInconclusive bool
	Period              appointment.Period
	CurrentAppointment  time.Time
	NotifyOnException   bool

	RetryLower   time.Duration
	RetryUpper   time.Duration
	WorkLimit    time.Duration // zero disables the work-limit rest
	WorkCooldown time.Duration
	BanCooldown  time.Duration
}

// SettingsFromConfig maps the application config onto watcher settings.
func SettingsFromConfig(cfg *config.AppConfig) Settings {
	return Settings{
		Accounts:            cfg.Accounts,
		PollDates:           cfg.Poll.Mode == config.PollModeDates,
		Location:            cfg.Location(),
		UnavailableStatus:   cfg.Poll.UnavailableStatus,
		CompareInconclusive: cfg.Poll.CompareInconclusive,
		Period:              cfg.Period,
		CurrentAppointment:  cfg.CurrentAppointment,
		NotifyOnException:   cfg.Notification.NotifyOnException,
		RetryLower:          cfg.Time.RetryLower(),
		RetryUpper:          cfg.Time.RetryUpper(),
		WorkLimit:           cfg.Time.WorkLimit(),
		WorkCooldown:        cfg.Time.WorkCooldown(),
		BanCooldown:         cfg.Time.BanCooldown(),
	}
}

// Watcher runs the bootstrap / poll / decide / notify state machine.
// It is single threaded: Step and Run must not be called concurrently.
type Watcher struct {
	settings  Settings
	policy    Policy
	session   session.Session
	notifier  Notifier
	clock     Clock
	rng       *rand.Rand
	heartbeat *scheduler.HeartbeatSchedule
	logger    *logrus.Entry

	state LoopState
	// signedIn is true between a successful SignIn and the next SignOut.
	signedIn bool
}

// NewWatcher wires a watcher in StateBootstrapping. heartbeat may be nil.
func NewWatcher(
	settings Settings,
	sess session.Session,
	notifier Notifier,
	clock Clock,
	rng *rand.Rand,
	heartbeat *scheduler.HeartbeatSchedule,
	logger *logrus.Entry,
) *Watcher {
	policy := Policy{
		UnavailableStatus:   settings.UnavailableStatus,
		CompareInconclusive: settings.CompareInconclusive,
	}
	if settings.PollDates {
		policy.Dates = &DateFilter{Period: settings.Period, Current: settings.CurrentAppointment}
	}
	return &Watcher{
		settings:  settings,
		policy:    policy,
		session:   sess,
		notifier:  notifier,
		clock:     clock,
		rng:       rng,
		heartbeat: heartbeat,
		logger:    logger,
		state:     LoopState{State: StateBootstrapping},
	}
}

// State returns a copy of the current loop state.
func (w *Watcher) State() LoopState {
	s := w.state
	s.Previous = w.state.Previous.Clone()
	return s
}

// Run steps the watcher until ctx is cancelled or a fatal failure occurs.
// Cancellation is a clean stop and returns nil. On the way out it signs out,
// best-effort; closing the session is left to its owner.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.WithField("accounts", len(w.settings.Accounts)).Info("Watcher started")
	defer w.shutdown()

	for {
		if err := w.Step(ctx); err != nil {
			if ctx.Err() != nil {
				w.logger.Info("Watcher stopped")
				return nil
			}
			return err
		}
	}
}

func (w *Watcher) shutdown() {
	w.state.State = StateStopped
	if !w.signedIn {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	w.signedIn = false
	if err := w.session.SignOut(ctx); err != nil {
		w.logger.WithError(err).Warn("Sign-out on shutdown failed")
	}
}

// Step performs one transition of the state machine, sleeping through the
// clock where the transition calls for it. It returns an error only when
// the loop has to end: fatal failure, cancelled ctx, or a stopped watcher.
func (w *Watcher) Step(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = w.fail(ctx, "step", fmt.Errorf("panic: %v", r), debug.Stack())
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}

	switch w.state.State {
	case StateBootstrapping:
		return w.bootstrap(ctx)
	case StatePolling:
		return w.poll(ctx)
	case StateCooldownBanned:
		return w.cooldown(ctx, w.settings.BanCooldown, "ban")
	case StateCooldownWorkLimit:
		return w.cooldown(ctx, w.settings.WorkCooldown, "work limit")
	case StateStopped:
		return ErrStopped
	default:
		return fmt.Errorf("unknown watcher state %q", w.state.State)
	}
}

func (w *Watcher) account() session.Account {
	return w.settings.Accounts[w.state.AccountIndex%len(w.settings.Accounts)]
}

func (w *Watcher) bootstrap(ctx context.Context) error {
	if err := w.session.SignIn(ctx, w.account()); err != nil {
		return w.fail(ctx, "bootstrap", err, nil)
	}
	w.signedIn = true
	w.state.BootstrappedAt = w.clock.Now()
	w.state.Requests = 0
	w.state.State = StatePolling
	return nil
}

func (w *Watcher) poll(ctx context.Context) error {
	now := w.clock.Now()
	worked := now.Sub(w.state.BootstrappedAt)
	if w.settings.WorkLimit > 0 && worked > w.settings.WorkLimit {
		w.logger.WithFields(logrus.Fields{
			"worked":   worked.Round(time.Second).String(),
			"requests": w.state.Requests,
		}).Infof("REST: break-time after %s", w.settings.WorkLimit)
		w.signOut(ctx)
		w.state.State = StateCooldownWorkLimit
		return nil
	}

	if w.heartbeat.Due(now) {
		w.notify(ctx, "HEARTBEAT", fmt.Sprintf("Still watching. Requests since sign-in: %d, last snapshot: %s",
			w.state.Requests, w.state.Previous))
	}

	w.state.Requests++
	logCtx := w.logger.WithField("request", w.state.Requests)
	logCtx.Info("Checking appointments")

	res, err := w.fetch(ctx)
	if err != nil {
		return w.fail(ctx, "poll", err, nil)
	}

	d := Decide(w.state.Previous, res, w.policy)
	if d.Retain {
		w.state.Previous = res.Snapshot.Clone()
	}
	if d.Searched != nil && len(res.Dates) > 0 {
		logCtx.WithField("range", d.Searched.String()).Info("No available date in the searched range")
	}

	switch d.Action {
	case ActionInconclusive:
		logCtx.WithField("partial", res.Snapshot.String()).Warn("Inconclusive poll, not compared")
		return w.sleepRetry(ctx, logCtx)

	case ActionBan:
		return w.banned(ctx, logCtx)

	case ActionNotify:
		w.state.BanCount = 0
		w.state.Notifications++
		msg := res.Snapshot.String()
		if d.Candidate != "" {
			msg = fmt.Sprintf("%s\nFirst date in range: %s", msg, d.Candidate)
			if times := w.times(ctx, logCtx, d.Candidate); len(times) > 0 {
				msg = fmt.Sprintf("%s\nTimes: %s", msg, strings.Join(times, ", "))
			}
		}
		logCtx.WithField("snapshot", res.Snapshot.String()).Info("Appointments changed")
		w.notify(ctx, "SUCCESS", msg)
		return nil

	default:
		w.state.BanCount = 0
		logCtx.WithFields(logrus.Fields{
			"snapshot": res.Snapshot.String(),
			"worked":   worked.Round(time.Second).String(),
		}).Info("No change")
		return w.sleepRetry(ctx, logCtx)
	}
}

// fetch reads the configured availability source once.
func (w *Watcher) fetch(ctx context.Context) (appointment.PollResult, error) {
	if !w.settings.PollDates {
		return w.session.PaymentSnapshot(ctx)
	}
	dates, err := w.session.AvailableDates(ctx)
	if err != nil {
		return appointment.PollResult{}, err
	}
	return appointment.DatesResult(w.settings.Location, w.settings.UnavailableStatus,
		w.settings.Period, w.settings.CurrentAppointment, dates), nil
}

// times lists the slots of date for the notification. It is best-effort:
// the date alone is worth sending.
func (w *Watcher) times(ctx context.Context, logCtx *logrus.Entry, date string) []string {
	times, err := w.session.AvailableTimes(ctx, date)
	if err != nil {
		logCtx.WithError(err).WithField("date", date).Warn("Failed to read time slots")
		return nil
	}
	return times
}

func (w *Watcher) banned(ctx context.Context, logCtx *logrus.Entry) error {
	w.state.BanCount++
	logCtx = logCtx.WithField("ban_count", w.state.BanCount)

	if w.state.BanCount >= len(w.settings.Accounts) {
		logCtx.Warnf("Probably banned, cooldown for %s", w.settings.BanCooldown)
		w.signOut(ctx)
		w.state.State = StateCooldownBanned
		return nil
	}

	w.state.AccountIndex = (w.state.AccountIndex + 1) % len(w.settings.Accounts)
	logCtx.WithField("next_account", w.account().Username).Warn("Probably banned, switching account")
	w.signOut(ctx)
	w.state.State = StateBootstrapping
	return nil
}

func (w *Watcher) cooldown(ctx context.Context, d time.Duration, reason string) error {
	w.logger.WithField("reason", reason).Infof("Cooling down for %s", d)
	if err := w.clock.Sleep(ctx, d); err != nil {
		return err
	}
	if w.state.State == StateCooldownBanned {
		w.state.BanCount = 0
	}
	w.state.State = StateBootstrapping
	return nil
}

// fail logs a failed step, optionally notifies, and applies the recovery its kind calls for.
func (w *Watcher) fail(ctx context.Context, op string, err error, stack []byte) error {
	kind := Classify(err)
	if ctx.Err() != nil {
		kind = FailureFatal
	}
	correlationID := uuid.NewString()

	logCtx := w.logger.WithFields(logrus.Fields{
		"op":             op,
		"kind":           kind.String(),
		"correlation_id": correlationID,
	}).WithError(err)
	if stack != nil {
		logCtx = logCtx.WithField("stack", string(stack))
	}
	logCtx.Error("Step failed")

	if w.settings.NotifyOnException && ctx.Err() == nil {
		w.notify(ctx, "EXCEPTION", fmt.Sprintf("Step %s failed (%s, id %s): %v. I will continue in a few minutes.",
			op, kind, correlationID, err))
	}

	if errors.Is(err, session.ErrSignedOut) || errors.Is(err, session.ErrBrowserGone) {
		w.signedIn = false
	}

	switch kind {
	case FailureFatal:
		w.state.State = StateStopped
		return err
	case FailureRebootstrap:
		w.state.State = StateBootstrapping
	}
	return w.sleepRetry(ctx, logCtx)
}

func (w *Watcher) sleepRetry(ctx context.Context, logCtx *logrus.Entry) error {
	wait := w.retryWait()
	logCtx.Infof("Retry wait time: %s", wait)
	return w.clock.Sleep(ctx, wait)
}

// retryWait draws a whole number of seconds uniformly from [RetryLower, RetryUpper].
func (w *Watcher) retryWait() time.Duration {
	lo := int64(math.Ceil(w.settings.RetryLower.Seconds()))
	hi := int64(math.Floor(w.settings.RetryUpper.Seconds()))
	if hi < lo {
		return w.settings.RetryLower
	}
	return time.Duration(lo+w.rng.Int64N(hi-lo+1)) * time.Second
}

func (w *Watcher) notify(ctx context.Context, title, msg string) {
	if err := w.notifier.Notify(ctx, title, msg); err != nil {
		w.logger.WithError(err).Warn("Notification failed")
	}
}

func (w *Watcher) signOut(ctx context.Context) {
	w.signedIn = false
	if err := w.session.SignOut(ctx); err != nil {
		w.logger.WithError(err).Warn("Sign-out failed")
	}
}
