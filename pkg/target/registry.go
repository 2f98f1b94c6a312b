package target

import (
	"errors"
	"fmt"
	"sync"

	"github.com/teslashibe/go-dimmer/pkg/projection"
)

var (
	// ErrNotFound means no target is registered under the name.
	ErrNotFound = errors.New("target: not found")

	// ErrDuplicate means a target with the name already exists.
	ErrDuplicate = errors.New("target: duplicate name")
)

// Registry is the catalog of targets, addressable by name.
type Registry struct {
	targets map[string]*Target
	order   []string // registration order for stable listing
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		targets: make(map[string]*Target),
	}
}

// Add registers a target.
func (r *Registry) Add(t *Target) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.targets[t.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, t.Name)
	}
	r.targets[t.Name] = t
	r.order = append(r.order, t.Name)
	return nil
}

// Get returns the target with the given name.
func (r *Registry) Get(name string) (*Target, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.targets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return t, nil
}

// Remove drops a target from the catalog.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.targets[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	delete(r.targets, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// List returns targets in registration order.
func (r *Registry) List() []*Target {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Target, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.targets[name])
	}
	return out
}

// Len returns the number of targets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.targets)
}

// UpdateTransform moves a target.
func (r *Registry) UpdateTransform(name string, tr projection.Transform) error {
	t, err := r.Get(name)
	if err != nil {
		return err
	}
	t.SetTransform(tr)
	return nil
}
