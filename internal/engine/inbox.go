package engine

import (
	"sync"

	"github.com/roach88/standin/internal/value"
)

// CallRecord is one observed invocation of a double's operation. Records
// are appended to the creating context's Inbox whenever a dispatch applies
// an action, including spy fallthrough.
type CallRecord struct {
	// DoubleID identifies the double that was called.
	DoubleID string `json:"double_id"`

	// Operation is the invoked operation name.
	Operation string `json:"operation"`

	// Args are the concrete call arguments.
	Args value.Array `json:"args"`

	// Seq is the logical ordinal stamped at post time. Ordering within an
	// inbox uses Seq only, never wall-clock time.
	Seq int64 `json:"seq"`
}

// Inbox accumulates call records for one observing context - the test's
// control flow, not the double itself. A double always posts to the inbox
// of whichever context created it, so assertions made on the original test
// goroutine observe calls made from spawned workers.
//
// Posting is fire-and-forget: it never blocks the caller of the stubbed
// operation, and an unread inbox exerts no back-pressure. The inbox is
// unbounded; its size is bounded in practice by a single test's dispatch
// volume.
//
// Thread-safety: all methods are safe from any goroutine.
type Inbox struct {
	mu      sync.Mutex
	records []CallRecord
	clock   *Clock
	signal  chan struct{} // Signals record availability (buffered, size 1)
}

// NewInbox creates an empty inbox with its own logical clock.
func NewInbox() *Inbox {
	return &Inbox{
		records: make([]CallRecord, 0, 64), // Pre-allocate for typical workloads
		clock:   NewClock(),
		signal:  make(chan struct{}, 1),
	}
}

// Post appends a record for an invocation, stamping it with the next
// ordinal. The argument slice is copied so call sites reusing a buffer
// cannot corrupt history. Returns the stamped record.
func (b *Inbox) Post(doubleID, operation string, args value.Array) CallRecord {
	argsCopy := make(value.Array, len(args))
	copy(argsCopy, args)

	rec := CallRecord{
		DoubleID:  doubleID,
		Operation: operation,
		Args:      argsCopy,
		Seq:       b.clock.Next(),
	}

	b.mu.Lock()
	b.records = append(b.records, rec)
	b.mu.Unlock()

	// Signal availability (non-blocking - buffer of 1 coalesces signals)
	select {
	case b.signal <- struct{}{}:
	default:
	}

	return rec
}

// Records returns a snapshot of the accumulated history in post order.
// The snapshot is a copy; later posts do not mutate it.
func (b *Inbox) Records() []CallRecord {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]CallRecord, len(b.records))
	copy(out, b.records)
	return out
}

// Len returns the number of accumulated records.
func (b *Inbox) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.records)
}

// Wait returns a channel that signals when records may have arrived.
// Use with select to wait for calls made from other goroutines:
//
//	for inbox.Len() < want {
//	    select {
//	    case <-ctx.Done():
//	        return ctx.Err()
//	    case <-inbox.Wait():
//	    }
//	}
func (b *Inbox) Wait() <-chan struct{} {
	return b.signal
}
