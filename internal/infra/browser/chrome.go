// internal/infra/browser/chrome.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"visa_slot_watcher/internal/domain/appointment"
	"visa_slot_watcher/internal/domain/session"
	"visa_slot_watcher/internal/infra/config"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
)

// Options configure a ChromeSession.
type Options struct {
	URLs           config.SiteURLs
	ContinueMarker string
	// Local launches Chrome on this host; otherwise HubAddress is a DevTools endpoint.
	Local      bool
	HubAddress string
	Headless   bool
	// StepDelay is slept after each login form interaction.
	StepDelay time.Duration
	// WaitTimeout bounds every wait for a page marker.
	WaitTimeout time.Duration
}

// OptionsFromConfig maps the application config onto browser options.
func OptionsFromConfig(cfg *config.AppConfig) Options {
	return Options{
		URLs:           cfg.URLs(),
		ContinueMarker: cfg.Embassy.ContinueMarker,
		Local:          cfg.ChromeDriver.LocalUse,
		HubAddress:     cfg.ChromeDriver.HubAddress,
		Headless:       cfg.ChromeDriver.Headless,
		StepDelay:      cfg.Time.Step(),
		WaitTimeout:    cfg.Time.Wait(),
	}
}

// ChromeSession drives one Chrome tab through chromedp. It implements session.Session.
type ChromeSession struct {
	opts   Options
	logger *logrus.Entry

	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

var _ session.Session = (*ChromeSession)(nil)

// NewChromeSession starts (or connects to) the browser and opens a tab.
// The browser lives until Close, independently of ctx cancellation of later calls.
func NewChromeSession(opts Options, logger *logrus.Entry) (*ChromeSession, error) {
	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if opts.Local {
		allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", opts.Headless),
			chromedp.Flag("disable-extensions", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.NoSandbox,
		)
		allocCtx, allocCancel = chromedp.NewExecAllocator(context.Background(), allocOpts...)
	} else {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(context.Background(), opts.HubAddress)
	}

	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(logger.Debugf))
	// first Run starts the browser
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("%w: failed to start browser: %v", session.ErrBrowserGone, err)
	}

	logger.WithField("local", opts.Local).Info("Browser session started")
	return &ChromeSession{
		opts:          opts,
		logger:        logger,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// run executes actions bounded by timeout and by the caller's ctx.
func (s *ChromeSession) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	taskCtx, cancel := context.WithTimeout(s.browserCtx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(taskCtx, actions...)
	return s.classify(ctx, err)
}

// classify maps chromedp failures onto the session error taxonomy.
func (s *ChromeSession) classify(ctx context.Context, err error) error {
	switch {
	case err == nil:
		return nil
	case s.browserCtx.Err() != nil:
		return fmt.Errorf("%w: %v", session.ErrBrowserGone, err)
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", session.ErrMarkerTimeout, err)
	default:
		return err
	}
}

// step logs one login interaction the way an operator reads it.
func (s *ChromeSession) step(label string, action chromedp.Action) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := action.Do(ctx); err != nil {
			return fmt.Errorf("login step %q: %w", label, err)
		}
		s.logger.WithField("step", label).Debug("Login step done")
		return chromedp.Sleep(s.opts.StepDelay).Do(ctx)
	})
}

// SignIn runs the fixed login sequence and waits for the post-login marker link.
func (s *ChromeSession) SignIn(ctx context.Context, account session.Account) error {
	logCtx := s.logger.WithField("account", account.Username)
	logCtx.Info("Signing in")

	marker := fmt.Sprintf(`//a[contains(text(), '%s')]`, s.opts.ContinueMarker)
	err := s.run(ctx, s.opts.WaitTimeout,
		chromedp.Navigate(s.opts.URLs.SignIn),
		chromedp.Sleep(s.opts.StepDelay),
		chromedp.WaitReady(`input[name="commit"]`, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("sign-in page did not load: %w", err)
	}

	err = s.run(ctx, s.opts.WaitTimeout,
		s.step("Click bounce", chromedp.Click(`//a[@class="down-arrow bounce"]`, chromedp.BySearch)),
		s.step("Email", chromedp.SendKeys(`#user_email`, account.Username, chromedp.ByQuery)),
		s.step("Password", chromedp.SendKeys(`#user_password`, account.Password, chromedp.ByQuery)),
		s.step("Privacy", chromedp.Click(`.icheckbox`, chromedp.ByQuery)),
		s.step("Enter Panel", chromedp.Click(`input[name="commit"]`, chromedp.ByQuery)),
	)
	if err != nil {
		return fmt.Errorf("sign-in form failed: %w", err)
	}

	if err := s.run(ctx, s.opts.WaitTimeout, chromedp.WaitVisible(marker, chromedp.BySearch)); err != nil {
		return fmt.Errorf("sign-in was not confirmed: %w", err)
	}
	logCtx.Info("Login successful")
	return nil
}

// open navigates to url and fails with ErrSignedOut when the site redirected to the login form.
func (s *ChromeSession) open(ctx context.Context, url string, read chromedp.Action) error {
	var location string
	err := s.run(ctx, s.opts.WaitTimeout,
		chromedp.Navigate(url),
		chromedp.Location(&location),
		read,
	)
	if err != nil {
		return err
	}
	if IsSignInPage(location) {
		return fmt.Errorf("%w: redirected to %s", session.ErrSignedOut, location)
	}
	return nil
}

// PaymentSnapshot reads the location/status table from the payment page.
func (s *ChromeSession) PaymentSnapshot(ctx context.Context) (appointment.PollResult, error) {
	var html string
	if err := s.open(ctx, s.opts.URLs.Payment, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return appointment.PollResult{}, fmt.Errorf("failed to load payment page: %w", err)
	}
	return ParsePaymentTable(html)
}

// AvailableDates reads the days JSON of the configured facility.
func (s *ChromeSession) AvailableDates(ctx context.Context) ([]string, error) {
	var body string
	if err := s.open(ctx, s.opts.URLs.Days, chromedp.Text("body", &body, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("failed to load available days: %w", err)
	}
	return ParseDays(body)
}

// AvailableTimes reads the time slots offered for date.
func (s *ChromeSession) AvailableTimes(ctx context.Context, date string) ([]string, error) {
	var body string
	if err := s.open(ctx, s.opts.URLs.TimesURL(date), chromedp.Text("body", &body, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("failed to load available times for %s: %w", date, err)
	}
	return ParseTimes(body)
}

// SignOut visits the sign-out link.
func (s *ChromeSession) SignOut(ctx context.Context) error {
	if err := s.run(ctx, s.opts.WaitTimeout, chromedp.Navigate(s.opts.URLs.SignOut)); err != nil {
		return fmt.Errorf("sign-out failed: %w", err)
	}
	s.logger.Info("Signed out")
	return nil
}

// Close shuts the tab and the browser down. Safe to call more than once.
func (s *ChromeSession) Close() error {
	if s.browserCancel == nil {
		return nil
	}
	err := chromedp.Cancel(s.browserCtx)
	s.browserCancel()
	s.allocCancel()
	s.browserCancel = nil
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}
