// internal/app/decision.go
package app

import (
	"time"

	"visa_slot_watcher/internal/domain/appointment"
)

// Action is what the loop does with one poll result.
type Action int

const (
	// ActionWait: nothing new, sleep a retry wait.
	ActionWait Action = iota
	// ActionNotify: the snapshot changed in a way the user cares about.
	ActionNotify
	// ActionBan: every location reports no appointments, probably a soft ban.
	ActionBan
	// ActionInconclusive: the page was missing cells and the result is not compared.
	ActionInconclusive
)

func (a Action) String() string {
	switch a {
	case ActionWait:
		return "wait"
	case ActionNotify:
		return "notify"
	case ActionBan:
		return "ban"
	case ActionInconclusive:
		return "inconclusive"
	default:
		return "unknown"
	}
}

// DateFilter restricts notifications to dates inside Period, narrowed by the
// currently booked date when it is known.
type DateFilter struct {
	Period  appointment.Period
	Current time.Time
}

// Policy holds the decision rules that come from configuration.
type Policy struct {
	UnavailableStatus   string
	CompareInconclusive bool
	// Dates is nil in payment mode.
	Dates *DateFilter
}

// Decision is the outcome of Decide.
type Decision struct {
	Action Action
	// Retain is true when the current snapshot becomes the new "previous".
	Retain bool
	// Candidate is the first in-range date (dates mode only).
	Candidate string
	// Searched is the narrowed period looked at when no candidate was found.
	Searched *appointment.Period
}

// Decide compares the new poll result against the previously retained snapshot.
// prev is nil before the first conclusive poll, which therefore never notifies.
func Decide(prev appointment.Snapshot, res appointment.PollResult, p Policy) Decision {
	if !res.Complete && !p.CompareInconclusive {
		return Decision{Action: ActionInconclusive}
	}

	if res.Snapshot.AllUnavailable(p.UnavailableStatus) {
		return Decision{Action: ActionBan, Retain: true}
	}

	d := Decision{Action: ActionWait, Retain: true}
	changed := prev != nil && !prev.Equal(res.Snapshot)

	if p.Dates != nil {
		candidate, ok := p.Dates.Period.FirstAvailable(res.Dates, p.Dates.Current)
		if !ok {
			searched := p.Dates.Period.Narrow(p.Dates.Current)
			d.Searched = &searched
			return d
		}
		d.Candidate = candidate
	}

	if changed {
		d.Action = ActionNotify
	}
	return d
}
