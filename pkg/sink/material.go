// Package sink provides dimming outputs: places a dimming value ends up.
package sink

import (
	"math"
	"sync"
	"time"
)

// DimmingParam is the shader float the overlay material reads.
const DimmingParam = "_DimmingValue"

// Material is an in-process stand-in for a rendering material: a named set of
// float parameters with read-back. The controller writes DimmingParam.
type Material struct {
	name string

	mu      sync.RWMutex
	floats  map[string]float64
	updated time.Time
	writes  uint64
}

// NewMaterial creates a material with the dimming parameter at zero.
func NewMaterial(name string) *Material {
	return &Material{
		name:   name,
		floats: map[string]float64{DimmingParam: 0},
	}
}

// Name returns the material name.
func (m *Material) Name() string {
	return m.name
}

// SetDimming stores value under DimmingParam.
func (m *Material) SetDimming(value float64) error {
	m.SetFloat(DimmingParam, value)
	return nil
}

// SetFloat sets a named parameter. Non-finite values are ignored.
func (m *Material) SetFloat(param string, value float64) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return
	}
	m.mu.Lock()
	m.floats[param] = value
	m.updated = time.Now()
	m.writes++
	m.mu.Unlock()
}

// GetFloat reads a named parameter.
func (m *Material) GetFloat(param string) (float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.floats[param]
	return v, ok
}

// Dimming returns the current dimming value.
func (m *Material) Dimming() float64 {
	v, _ := m.GetFloat(DimmingParam)
	return v
}

// MaterialState is a JSON snapshot.
type MaterialState struct {
	Name    string    `json:"name"`
	Dimming float64   `json:"dimming"`
	Writes  uint64    `json:"writes"`
	Updated time.Time `json:"updated"`
}

// State returns a snapshot.
func (m *Material) State() MaterialState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return MaterialState{
		Name:    m.name,
		Dimming: m.floats[DimmingParam],
		Writes:  m.writes,
		Updated: m.updated,
	}
}
