// Package perf samples host load so the dashboard can show whether the
// dimming loop is starved.
package perf

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// Errors
var (
	ErrNoCPUSample         = errors.New("perf: no cpu sample")
	ErrTemperatureNotFound = errors.New("perf: temperature sensors not found")
)

// Stress thresholds
const (
	StressLoad        = 1.5
	StressTemperature = 70.0
)

// Snapshot is one set of host metrics.
type Snapshot struct {
	CPUPercent    float64   `json:"cpu_percent"`
	MemoryPercent float64   `json:"memory_percent"`
	LoadAverage   float64   `json:"load_average"`
	Temperature   float64   `json:"temperature"` // Celsius, 0 if unknown
	UnderStress   bool      `json:"under_stress"`
	At            time.Time `json:"at"`
}

// Readers abstracts the gopsutil calls so tests can supply fixed values.
type Readers struct {
	CPU         func(ctx context.Context) (float64, error)
	Memory      func(ctx context.Context) (float64, error)
	Load        func(ctx context.Context) (float64, error)
	Temperature func(ctx context.Context) (float64, error)
}

// SystemReaders reads the real host through gopsutil.
func SystemReaders() Readers {
	return Readers{
		CPU: func(ctx context.Context) (float64, error) {
			pct, err := cpu.PercentWithContext(ctx, 0, false)
			if err != nil {
				return 0, err
			}
			if len(pct) == 0 {
				return 0, ErrNoCPUSample
			}
			return pct[0], nil
		},
		Memory: func(ctx context.Context) (float64, error) {
			vm, err := mem.VirtualMemoryWithContext(ctx)
			if err != nil {
				return 0, err
			}
			return vm.UsedPercent, nil
		},
		Load: func(ctx context.Context) (float64, error) {
			avg, err := load.AvgWithContext(ctx)
			if err != nil {
				return 0, err
			}
			return avg.Load1, nil
		},
		Temperature: func(ctx context.Context) (float64, error) {
			temps, err := host.SensorsTemperaturesWithContext(ctx)
			var total float64
			var count int
			for _, t := range temps {
				if t.Temperature > 0 {
					total += t.Temperature
					count++
				}
			}
			if count == 0 {
				if err != nil {
					return 0, err
				}
				return 0, ErrTemperatureNotFound
			}
			return total / float64(count), nil
		},
	}
}

// Monitor tracks host performance metrics
type Monitor struct {
	readers Readers
	logger  *slog.Logger

	mu   sync.RWMutex
	last Snapshot
}

// NewMonitor creates a monitor over the real host.
func NewMonitor(logger *slog.Logger) *Monitor {
	return NewMonitorWithReaders(SystemReaders(), logger)
}

// NewMonitorWithReaders creates a monitor with custom readers.
func NewMonitorWithReaders(r Readers, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{readers: r, logger: logger}
}

// Update takes one sample. CPU and memory failures are returned; load and
// temperature are best effort.
func (m *Monitor) Update(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{At: time.Now()}
	var errs []error

	if m.readers.CPU != nil {
		v, err := m.readers.CPU(ctx)
		if err != nil {
			errs = append(errs, err)
		}
		snap.CPUPercent = v
	}
	if m.readers.Memory != nil {
		v, err := m.readers.Memory(ctx)
		if err != nil {
			errs = append(errs, err)
		}
		snap.MemoryPercent = v
	}
	if m.readers.Load != nil {
		if v, err := m.readers.Load(ctx); err == nil {
			snap.LoadAverage = v
		}
	}
	if m.readers.Temperature != nil {
		if v, err := m.readers.Temperature(ctx); err == nil {
			snap.Temperature = v
		}
	}
	snap.UnderStress = snap.LoadAverage > StressLoad || snap.Temperature > StressTemperature

	m.mu.Lock()
	prev := m.last
	m.last = snap
	m.mu.Unlock()

	if snap.UnderStress && !prev.UnderStress {
		m.logger.Warn("host under stress", "load", snap.LoadAverage, "temperature", snap.Temperature)
	}
	return snap, errors.Join(errs...)
}

// Snapshot returns the last sample.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

// Run samples every interval until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if _, err := m.Update(ctx); err != nil {
		m.logger.Debug("perf sample failed", "error", err)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.Update(ctx); err != nil {
				m.logger.Debug("perf sample failed", "error", err)
			}
		}
	}
}
