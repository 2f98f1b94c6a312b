package perf

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teslashibe/go-dimmer/internal/log"
)

func fixed(v float64) func(context.Context) (float64, error) {
	return func(context.Context) (float64, error) { return v, nil }
}

func failing(err error) func(context.Context) (float64, error) {
	return func(context.Context) (float64, error) { return 0, err }
}

func TestUpdate_CollectsReaders(t *testing.T) {
	m := NewMonitorWithReaders(Readers{
		CPU:         fixed(12.5),
		Memory:      fixed(40),
		Load:        fixed(0.7),
		Temperature: fixed(45),
	}, log.Discard())

	snap, err := m.Update(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12.5, snap.CPUPercent)
	assert.Equal(t, 40.0, snap.MemoryPercent)
	assert.Equal(t, 0.7, snap.LoadAverage)
	assert.Equal(t, 45.0, snap.Temperature)
	assert.False(t, snap.UnderStress)
	assert.Equal(t, snap, m.Snapshot())
}

func TestUpdate_Stress(t *testing.T) {
	tests := []struct {
		name   string
		load   float64
		temp   float64
		stress bool
	}{
		{"calm", 1.0, 50, false},
		{"high load", 2.0, 50, true},
		{"hot", 0.5, 75, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMonitorWithReaders(Readers{Load: fixed(tt.load), Temperature: fixed(tt.temp)}, log.Discard())
			snap, err := m.Update(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.stress, snap.UnderStress)
		})
	}
}

func TestUpdate_BestEffortSensors(t *testing.T) {
	boom := errors.New("boom")
	m := NewMonitorWithReaders(Readers{
		CPU:         failing(boom),
		Memory:      fixed(10),
		Load:        failing(boom),
		Temperature: failing(ErrTemperatureNotFound),
	}, log.Discard())

	snap, err := m.Update(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 10.0, snap.MemoryPercent)
	assert.Zero(t, snap.Temperature)
}

func TestRun_SamplesUntilCancelled(t *testing.T) {
	m := NewMonitorWithReaders(Readers{CPU: fixed(1)}, log.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return !m.Snapshot().At.IsZero() }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}
