package scheduler

import (
	"testing"
	"time"
)

func TestHeartbeatSchedule_Disabled(t *testing.T) {
	h, err := NewHeartbeatSchedule("", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Due(time.Now().Add(365 * 24 * time.Hour)) {
		t.Error("a disabled schedule must never be due")
	}
	if !h.Next().IsZero() {
		t.Error("a disabled schedule has no next time")
	}
	if h.String() != "disabled" {
		t.Errorf("String() = %q", h.String())
	}
}

func TestHeartbeatSchedule_Daily(t *testing.T) {
	start := time.Date(2024, 5, 1, 8, 0, 0, 0, time.Local)
	h, err := NewHeartbeatSchedule("0 9 * * *", start)
	if err != nil {
		t.Fatalf("NewHeartbeatSchedule() error = %v", err)
	}

	if h.Due(start.Add(59 * time.Minute)) {
		t.Error("must not be due before 09:00")
	}
	if !h.Due(start.Add(time.Hour)) {
		t.Error("must be due at 09:00")
	}
	if h.Due(start.Add(time.Hour + time.Minute)) {
		t.Error("must fire only once per day")
	}
	want := time.Date(2024, 5, 2, 9, 0, 0, 0, time.Local)
	if !h.Next().Equal(want) {
		t.Errorf("Next() = %v, want %v", h.Next(), want)
	}
}

func TestHeartbeatSchedule_MissedFiresCollapse(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	h, err := NewHeartbeatSchedule("@every 1h", start)
	if err != nil {
		t.Fatalf("NewHeartbeatSchedule() error = %v", err)
	}

	later := start.Add(5*time.Hour + 30*time.Minute)
	if !h.Due(later) {
		t.Fatal("expected a heartbeat after a long sleep")
	}
	if h.Due(later) {
		t.Error("missed fire times must collapse into one heartbeat")
	}
}

func TestHeartbeatSchedule_InvalidSpec(t *testing.T) {
	if _, err := NewHeartbeatSchedule("every day at nine", time.Now()); err == nil {
		t.Fatal("expected an error for an invalid spec")
	}
}
