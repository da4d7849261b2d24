package metrics

import (
	"testing"
	"time"
)

func TestCollectorSnapshot(t *testing.T) {
	c := New()
	c.Record(200, 10*time.Millisecond)
	c.Record(404, 30*time.Millisecond)
	c.Record(429, 0)
	c.Record(500, 20*time.Millisecond)

	snap := c.Snapshot()
	if got := snap["requests"].(uint64); got != 4 {
		t.Fatalf("requests = %d, want 4", got)
	}
	if got := snap["client_errors"].(uint64); got != 2 {
		t.Fatalf("client_errors = %d, want 2", got)
	}
	if got := snap["server_errors"].(uint64); got != 1 {
		t.Fatalf("server_errors = %d, want 1", got)
	}
	if got := snap["rate_limited"].(uint64); got != 1 {
		t.Fatalf("rate_limited = %d, want 1", got)
	}
	if got := snap["avg_duration_ms"].(float64); got != 15.0 {
		t.Fatalf("avg_duration_ms = %v, want 15", got)
	}
}

func TestCollectorEmptySnapshot(t *testing.T) {
	snap := New().Snapshot()
	if got := snap["requests"].(uint64); got != 0 {
		t.Fatalf("requests = %d, want 0", got)
	}
	if got := snap["avg_duration_ms"].(float64); got != 0 {
		t.Fatalf("avg_duration_ms = %v, want 0", got)
	}
}
