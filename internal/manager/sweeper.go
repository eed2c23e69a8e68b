package manager

import (
	"context"
	"time"
)

// StartSweeper periodically removes scratch files older than maxAge, which
// only exist when a request died without running its cleanup. It stops
// when ctx is canceled. Non-positive interval or maxAge disables it.
func (m *Manager) StartSweeper(ctx context.Context, interval, maxAge time.Duration) {
	if interval <= 0 || maxAge <= 0 {
		return
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				m.sweepOnce(maxAge)
			}
		}
	}()
}

func (m *Manager) sweepOnce(maxAge time.Duration) int {
	n, err := m.store.Sweep(maxAge)
	if err != nil {
		m.log.Warn().Err(err).Msg("scratch sweep")
	}
	if n > 0 {
		cleanupsTotal.WithLabelValues("swept").Add(float64(n))
		m.publish(Event{Name: EventCleanup, Fields: map[string]any{"reason": "swept", "files": n}})
		m.log.Info().Int("files", n).Dur("max_age", maxAge).Msg("swept stale scratch files")
	}
	return n
}
