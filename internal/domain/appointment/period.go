// internal/domain/appointment/period.go
package appointment

import (
	"fmt"
	"time"
)

// DateLayout is the date format used by the appointment site and the config file.
const DateLayout = "2006-01-02"

// Period is an open date interval a new appointment has to fall into.
type Period struct {
	Start time.Time
	End   time.Time
}

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// Narrow returns the period with its end pulled in to current when the
// currently booked date is earlier than End. A zero current leaves it as is.
func (p Period) Narrow(current time.Time) Period {
	if !current.IsZero() && (p.End.IsZero() || current.Before(p.End)) {
		p.End = current
	}
	return p
}

// Contains reports Start < d < End. A zero bound is unbounded on that side.
func (p Period) Contains(d time.Time) bool {
	if !p.Start.IsZero() && !d.After(p.Start) {
		return false
	}
	if !p.End.IsZero() && !d.Before(p.End) {
		return false
	}
	return true
}

// String renders the period for log lines.
func (p Period) String() string {
	start, end := "-inf", "+inf"
	if !p.Start.IsZero() {
		start = p.Start.Format(DateLayout)
	}
	if !p.End.IsZero() {
		end = p.End.Format(DateLayout)
	}
	return start + " - " + end
}

// FirstAvailable returns the first date in input order that lies strictly
// inside the period narrowed by the currently booked date. Unparseable
// entries are skipped. ok is false when nothing matches.
func (p Period) FirstAvailable(dates []string, current time.Time) (date string, ok bool) {
	narrowed := p.Narrow(current)
	for _, d := range dates {
		t, err := ParseDate(d)
		if err != nil {
			continue
		}
		if narrowed.Contains(t) {
			return d, true
		}
	}
	return "", false
}
