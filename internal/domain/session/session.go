// internal/domain/session/session.go
package session

import (
	"context"
	"errors"

	"visa_slot_watcher/internal/domain/appointment"
)

// Errors returned by Session implementations. Callers classify with errors.Is.
var (
	// ErrMarkerTimeout means an expected page element did not show up within the wait bound.
	ErrMarkerTimeout = errors.New("page marker did not appear in time")
	// ErrSignedOut means the site bounced the session back to the sign-in form.
	ErrSignedOut = errors.New("session is no longer signed in")
	// ErrBrowserGone means the browser process or remote endpoint is gone for good.
	ErrBrowserGone = errors.New("browser session is gone")
	// ErrBadPayload means a page or JSON document could not be decoded.
	ErrBadPayload = errors.New("unexpected page payload")
)

// Account is one set of site credentials.
type Account struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// Session is an exclusively owned authenticated browsing session.
// Only one operation runs at a time.
type Session interface {
	// SignIn runs the fixed login sequence for account.
	SignIn(ctx context.Context, account Account) error
	// PaymentSnapshot reads the two-row location/status table of the payment page.
	PaymentSnapshot(ctx context.Context) (appointment.PollResult, error)
	// AvailableDates reads the offered dates of the configured facility, in site order.
	AvailableDates(ctx context.Context) ([]string, error)
	// AvailableTimes reads the offered time slots of one YYYY-MM-DD date.
	AvailableTimes(ctx context.Context, date string) ([]string, error)
	SignOut(ctx context.Context) error
	Close() error
}
