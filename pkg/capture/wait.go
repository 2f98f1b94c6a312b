package capture

import (
	"context"
	"log/slog"
	"time"
)

// WaitForDevice calls open every interval until it succeeds or ctx ends.
// It never spins: a failed attempt always waits a full interval.
func WaitForDevice[T any](ctx context.Context, interval time.Duration, logger *slog.Logger,
	open func() (T, error)) (T, error) {

	if logger == nil {
		logger = slog.Default()
	}

	attempt := 0
	for {
		attempt++
		dev, err := open()
		if err == nil {
			if attempt > 1 {
				logger.Info("camera device available", "attempts", attempt)
			}
			return dev, nil
		}
		if attempt == 1 {
			logger.Info("waiting for camera device", "error", err, "poll", interval)
		} else {
			logger.Debug("camera device still unavailable", "attempt", attempt, "error", err)
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			var zero T
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}
