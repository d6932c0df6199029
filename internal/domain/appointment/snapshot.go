// internal/domain/appointment/snapshot.go
package appointment

import (
	"encoding/json"
	"maps"
	"time"
)

// DefaultUnavailableStatus is what the payment page prints for a location without slots.
const DefaultUnavailableStatus = "No Appointments Available"

// Snapshot maps a location name to the status text shown for it on one poll.
type Snapshot map[string]string

// Equal reports whether both snapshots hold the same locations with the same statuses.
// A nil snapshot only equals another nil snapshot.
func (s Snapshot) Equal(other Snapshot) bool {
	if (s == nil) != (other == nil) {
		return false
	}
	return maps.Equal(s, other)
}

// AllUnavailable is true when the snapshot has at least one location and every
// status equals the given sentinel.
func (s Snapshot) AllUnavailable(sentinel string) bool {
	if len(s) == 0 {
		return false
	}
	for _, status := range s {
		if status != sentinel {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	return maps.Clone(s)
}

// String renders the snapshot as JSON with sorted keys.
func (s Snapshot) String() string {
	b, err := json.Marshal(map[string]string(s)) // encoding/json sorts map keys
	if err != nil {
		return "{}"
	}
	return string(b)
}

// PollResult is the outcome of reading the availability page once.
// Complete is false when an expected cell was missing; Snapshot then holds
// whatever rows could be read.
type PollResult struct {
	Snapshot Snapshot
	Complete bool
	// Dates holds the offered dates in page order when polling the days endpoint.
	Dates []string
}

// NoDateInRange is the dates mode status of an office that offers dates,
// none of them inside the searched period.
const NoDateInRange = "No Date In Range"

// DatesResult wraps the offered dates of one office as a poll result. The
// snapshot holds the first date inside period (narrowed by current), so a
// change of the snapshot is a change of what the user is told about. An empty
// list maps to the unavailable sentinel; dates outside the period map to
// NoDateInRange.
func DatesResult(location, unavailable string, period Period, current time.Time, dates []string) PollResult {
	status := unavailable
	if len(dates) > 0 {
		status = NoDateInRange
		if candidate, ok := period.FirstAvailable(dates, current); ok {
			status = candidate
		}
	}
	return PollResult{
		Snapshot: Snapshot{location: status},
		Complete: true,
		Dates:    dates,
	}
}
