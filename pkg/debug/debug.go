// Package debug holds the on-screen debug surface: the dimmer label, the
// last measurement line and the global debug print flag.
package debug

import (
	"fmt"
	"sync"
	"time"
)

// Enabled mirrors board updates to stdout (-debug flag)
var Enabled bool

// Log prints a message only if debug mode is enabled
func Log(format string, args ...interface{}) {
	if Enabled {
		fmt.Printf(format, args...)
	}
}

// Snapshot is what the overlay currently shows.
type Snapshot struct {
	Label   string    `json:"label"`
	Text    string    `json:"text"`
	Updated time.Time `json:"updated"`
}

// Board is a thread safe text surface. It satisfies dimmer.StateUpdater.
type Board struct {
	mu        sync.RWMutex
	snap      Snapshot
	listeners []func(Snapshot)
}

// NewBoard creates a board showing label.
func NewBoard(label string) *Board {
	return &Board{snap: Snapshot{Label: label}}
}

// OnChange registers fn to be called after every update. fn runs on the
// updating goroutine and must not block.
func (b *Board) OnChange(fn func(Snapshot)) {
	b.mu.Lock()
	b.listeners = append(b.listeners, fn)
	b.mu.Unlock()
}

// SetDimmerLabel replaces the label line.
func (b *Board) SetDimmerLabel(label string) {
	b.update(func(s *Snapshot) { s.Label = label })
	Log("%s\n", label)
}

// SetDebugText replaces the measurement text.
func (b *Board) SetDebugText(text string) {
	b.update(func(s *Snapshot) { s.Text = text })
	Log("%s", text)
}

// Snapshot returns the current contents.
func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snap
}

func (b *Board) update(fn func(*Snapshot)) {
	b.mu.Lock()
	fn(&b.snap)
	b.snap.Updated = time.Now()
	snap := b.snap
	listeners := b.listeners
	b.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}
