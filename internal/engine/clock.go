package engine

import "sync/atomic"

// Clock is a monotonic logical clock for call record ordering.
//
// Every call record is stamped with a strictly increasing ordinal from the
// inbox's clock. This ensures:
// - Deterministic ordering (no wall-clock race conditions)
// - In-order verification matches the order calls actually resolved
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next ordinal and increments the clock.
// Calls are linearizable - each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current ordinal without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
