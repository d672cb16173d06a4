package cache

import (
	"log/slog"
	"sync"
	"time"
)

// defaultLogInterval is how often a degraded backend is logged. Failures in
// between are counted and reported with the next record to avoid log storms.
const defaultLogInterval = 30 * time.Second

// burstLogger rate-limits backend failure logging to one record per burst.
type burstLogger struct {
	log      *slog.Logger
	interval time.Duration

	mu         sync.Mutex
	lastLogged time.Time
	suppressed int
}

func newBurstLogger(log *slog.Logger, interval time.Duration) *burstLogger {
	if interval <= 0 {
		interval = defaultLogInterval
	}
	return &burstLogger{log: log, interval: interval}
}

func (b *burstLogger) failure(op string, err error) {
	b.mu.Lock()
	now := time.Now()
	if now.Sub(b.lastLogged) < b.interval {
		b.suppressed++
		b.mu.Unlock()
		return
	}
	suppressed := b.suppressed
	b.suppressed = 0
	b.lastLogged = now
	b.mu.Unlock()

	b.log.Warn("cache backend unavailable, degrading to pass-through",
		slog.String("op", op),
		slog.String("error", err.Error()),
		slog.Int("suppressed", suppressed),
	)
}
