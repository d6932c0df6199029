package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"visa_slot_watcher/internal/domain/appointment"
	"visa_slot_watcher/internal/domain/session"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// fakeClock advances Now by every Sleep instead of blocking.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type pollStep struct {
	res   appointment.PollResult
	dates []string
	err   error
	panic bool
}

// fakeSession replays scripted poll results; once the script runs out it
// repeats the last entry.
type fakeSession struct {
	signInErrs []error
	polls      []pollStep
	times      []string
	timesErr   error
	// onPoll runs before every scripted poll is returned.
	onPoll func()

	signIns    []session.Account
	signOuts   int
	pollIdx    int
	timesAsked []string
	closed     bool
}

func (s *fakeSession) SignIn(_ context.Context, account session.Account) error {
	s.signIns = append(s.signIns, account)
	if len(s.signInErrs) > 0 {
		err := s.signInErrs[0]
		s.signInErrs = s.signInErrs[1:]
		return err
	}
	return nil
}

func (s *fakeSession) next() pollStep {
	if len(s.polls) == 0 {
		return pollStep{err: errors.New("no scripted poll")}
	}
	i := s.pollIdx
	if i >= len(s.polls) {
		i = len(s.polls) - 1
	}
	s.pollIdx++
	if s.onPoll != nil {
		s.onPoll()
	}
	p := s.polls[i]
	if p.panic {
		panic("parser exploded")
	}
	return p
}

func (s *fakeSession) PaymentSnapshot(context.Context) (appointment.PollResult, error) {
	p := s.next()
	return p.res, p.err
}

func (s *fakeSession) AvailableDates(context.Context) ([]string, error) {
	p := s.next()
	return p.dates, p.err
}

func (s *fakeSession) AvailableTimes(_ context.Context, date string) ([]string, error) {
	s.timesAsked = append(s.timesAsked, date)
	return s.times, s.timesErr
}

func (s *fakeSession) SignOut(context.Context) error {
	s.signOuts++
	return nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

type sentMessage struct {
	title string
	msg   string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (n *fakeNotifier) Notify(_ context.Context, title, msg string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{title: title, msg: msg})
	return n.err
}

func (n *fakeNotifier) titles() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.sent))
	for _, m := range n.sent {
		out = append(out, m.title)
	}
	return out
}

func newTestLogger() (*logrus.Entry, *test.Hook) {
	l, hook := test.NewNullLogger()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.DebugLevel)
	return logrus.NewEntry(l), hook
}

func complete(s appointment.Snapshot) pollStep {
	return pollStep{res: appointment.PollResult{Snapshot: s, Complete: true}}
}
