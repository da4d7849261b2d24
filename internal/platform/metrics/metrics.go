package metrics

import (
	"sync/atomic"
	"time"
)

// Collector keeps coarse request counters for the admin metrics panel.
// Everything is atomic; there is no flush and no external scrape target.
type Collector struct {
	started     time.Time
	requests    uint64
	clientErrs  uint64
	serverErrs  uint64
	rateLimited uint64
	durationMs  uint64
}

func New() *Collector {
	return &Collector{started: time.Now()}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.requests, 1)
	switch {
	case status >= 500:
		atomic.AddUint64(&c.serverErrs, 1)
	case status >= 400:
		atomic.AddUint64(&c.clientErrs, 1)
		if status == 429 {
			atomic.AddUint64(&c.rateLimited, 1)
		}
	}
	atomic.AddUint64(&c.durationMs, uint64(duration.Milliseconds()))
}

// Snapshot is the payload the admin metrics endpoint returns verbatim.
func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.requests)
	avg := float64(0)
	if total > 0 {
		avg = float64(atomic.LoadUint64(&c.durationMs)) / float64(total)
	}
	return map[string]any{
		"requests":        total,
		"client_errors":   atomic.LoadUint64(&c.clientErrs),
		"server_errors":   atomic.LoadUint64(&c.serverErrs),
		"rate_limited":    atomic.LoadUint64(&c.rateLimited),
		"avg_duration_ms": avg,
		"uptime_seconds":  int64(time.Since(c.started).Seconds()),
	}
}
