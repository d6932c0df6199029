// internal/infra/scheduler/scheduler.go
package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// HeartbeatSchedule tells the watcher loop when a "still alive" message is due.
// It runs inside the loop instead of on a cron goroutine, so the loop
// stays the only owner of the session and the notifier.
type HeartbeatSchedule struct {
	spec     string
	schedule cron.Schedule
	next     time.Time
}

// NewHeartbeatSchedule parses a standard cron spec ("0 9 * * *", "@daily", "@every 6h")
// and arms it relative to now. An empty spec yields a nil schedule, which is never due.
func NewHeartbeatSchedule(spec string, now time.Time) (*HeartbeatSchedule, error) {
	if spec == "" {
		return nil, nil
	}
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid heartbeat cron spec %q: %w", spec, err)
	}
	return &HeartbeatSchedule{
		spec:     spec,
		schedule: schedule,
		next:     schedule.Next(now),
	}, nil
}

// Due reports whether the next fire time has passed and, if so, re-arms the
// schedule from now. Missed fire times collapse into a single heartbeat.
func (h *HeartbeatSchedule) Due(now time.Time) bool {
	if h == nil || now.Before(h.next) {
		return false
	}
	h.next = h.schedule.Next(now)
	return true
}

// Next returns the upcoming fire time; zero for a nil schedule.
func (h *HeartbeatSchedule) Next() time.Time {
	if h == nil {
		return time.Time{}
	}
	return h.next
}

func (h *HeartbeatSchedule) String() string {
	if h == nil {
		return "disabled"
	}
	return fmt.Sprintf("%s (next %s)", h.spec, h.next.Format("2006-01-02 15:04:05"))
}
