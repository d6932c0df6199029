// internal/app/failure.go
package app

import (
	"context"
	"errors"

	"visa_slot_watcher/internal/domain/session"
)

// FailureKind tells the loop how to recover from a failed step.
type FailureKind int

const (
	// FailureRetry keeps the session: sleep a retry wait and poll again.
	FailureRetry FailureKind = iota
	// FailureRebootstrap means the session is unusable: sign in again.
	FailureRebootstrap
	// FailureFatal ends the loop.
	FailureFatal
)

func (k FailureKind) String() string {
	switch k {
	case FailureRetry:
		return "retry"
	case FailureRebootstrap:
		return "rebootstrap"
	case FailureFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Classify maps a step error onto a FailureKind.
func Classify(err error) FailureKind {
	switch {
	case errors.Is(err, session.ErrBrowserGone),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return FailureFatal
	case errors.Is(err, session.ErrSignedOut):
		return FailureRebootstrap
	default:
		return FailureRetry
	}
}
