// Package timeutil lets the dimmer loop run against a fake clock in tests.
package timeutil

import (
	"sync"
	"time"
)

// Clock is the time source the controller loop reads from.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker delivers the clock time once per period.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// RealClock is backed by the time package.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) NewTicker(d time.Duration) Ticker {
	return wallTicker{time.NewTicker(d)}
}

type wallTicker struct{ t *time.Ticker }

func (w wallTicker) C() <-chan time.Time { return w.t.C }
func (w wallTicker) Stop()               { w.t.Stop() }

// MockClock only moves when Advance is called. Tickers created from it
// fire at most once per Advance, dropping the tick if the last one is
// still unread, like time.Ticker.
type MockClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*mockTicker
	created int
}

func NewMockClock(start time.Time) *MockClock {
	return &MockClock{now: start}
}

func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward and fires every ticker that came due.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	live := c.tickers[:0]
	for _, t := range c.tickers {
		if t.stopped {
			continue
		}
		if !c.now.Before(t.due) {
			select {
			case t.ch <- c.now:
			default:
			}
			t.due = c.now.Add(t.period)
		}
		live = append(live, t)
	}
	c.tickers = live
}

func (c *MockClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &mockTicker{clock: c, ch: make(chan time.Time, 1), period: d, due: c.now.Add(d)}
	c.tickers = append(c.tickers, t)
	c.created++
	return t
}

// Tickers reports how many tickers have been created, stopped ones included.
func (c *MockClock) Tickers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.created
}

type mockTicker struct {
	clock   *MockClock
	ch      chan time.Time
	period  time.Duration
	due     time.Time
	stopped bool
}

func (t *mockTicker) C() <-chan time.Time { return t.ch }

func (t *mockTicker) Stop() {
	t.clock.mu.Lock()
	t.stopped = true
	t.clock.mu.Unlock()
}
