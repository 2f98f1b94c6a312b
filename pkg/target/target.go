// Package target tracks the virtual objects a dimmer can follow and the
// dimming outputs bound to them.
package target

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/teslashibe/go-dimmer/pkg/projection"
)

// Output receives the dimming value for one target, in [0,1].
type Output interface {
	SetDimming(value float64) error
}

// ErrPartialWrite wraps output errors when some, but not all, of a fan-out's
// outputs took the value. The value counts as applied.
var ErrPartialWrite = errors.New("target: dimming value reached only some outputs")

// Target is one dimmable virtual object. Its transform is updated by the
// rendering host while the controller reads it, so access is synchronized.
type Target struct {
	ID     string
	Name   string
	Label  string         // Shown when the target is selected
	Bounds projection.Box // Local space bounding box

	mu        sync.RWMutex
	transform projection.Transform
	output    Output
}

// New creates a target with a fresh ID and identity transform.
func New(name, label string, bounds projection.Box, out Output) *Target {
	return &Target{
		ID:        uuid.NewString(),
		Name:      name,
		Label:     label,
		Bounds:    bounds,
		transform: projection.IdentityTransform(),
		output:    out,
	}
}

// Transform returns the current world placement.
func (t *Target) Transform() projection.Transform {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.transform
}

// SetTransform replaces the world placement.
func (t *Target) SetTransform(tr projection.Transform) {
	t.mu.Lock()
	t.transform = tr
	t.mu.Unlock()
}

// Output returns the dimming output, or nil.
func (t *Target) Output() Output {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.output
}

// SetOutput rebinds the dimming output.
func (t *Target) SetOutput(out Output) {
	t.mu.Lock()
	t.output = out
	t.mu.Unlock()
}

// Info is a JSON snapshot of a target.
type Info struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Label     string               `json:"label"`
	Bounds    projection.Box       `json:"bounds"`
	Transform projection.Transform `json:"transform"`
	Selected  bool                 `json:"selected"`
}

// Info returns a snapshot for the dashboard.
func (t *Target) Info() Info {
	return Info{
		ID:        t.ID,
		Name:      t.Name,
		Label:     t.Label,
		Bounds:    t.Bounds,
		Transform: t.Transform(),
	}
}
