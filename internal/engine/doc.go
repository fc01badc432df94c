// Package engine implements the standin double engine.
//
// The engine is the heart of standin - it owns each double's configured
// stubs, matches incoming call arguments against configured patterns,
// applies the matched action, records every call, and verifies declared
// expectations in order.
//
// ARCHITECTURE:
//
// Actor Per Double:
// Every double's mutable state (stub table + expectation list) is owned by
// exactly one goroutine with a mailbox. All configure/dispatch/clear/expect/
// verify requests for a double serialize through that goroutine, so
// concurrent callers never interleave inside the state. Distinct doubles
// are fully independent and dispatch concurrently without contention.
//
// Dispatch Flow:
// 1. A call site looks up its double in the Registry
// 2. The actor resolves the call against the stub table via the matcher
// 3. Exact-pattern entries outrank wildcard-arity entries; ties keep
//    insertion order; queued entries for one pattern drain FIFO with the
//    last entry retained permanently
// 4. The resolved action (return or raise) is handed back to the caller
// 5. A CallRecord is posted to the inbox of the context that CREATED the
//    double, stamped with a monotonic ordinal - never a wall-clock time
//
// Spy doubles fall through to a bound real implementation when no stub
// matches, still posting the CallRecord. Explicit stubs always win over
// delegation.
//
// CRITICAL PATTERNS:
//
// Logical Ordinals:
// Call records are ordered by a per-inbox monotonic counter. Wall-clock
// timestamps are never used for ordering.
//
// Insert-Only Registry:
// The process-wide registry maps double IDs to handles. Entries are written
// once at creation and only read afterwards, so lookups take a shared lock.
//
// Fire-And-Forget Notification:
// Posting a call record never blocks the caller of the stubbed operation
// and an unread inbox exerts no back-pressure; records accumulate until a
// verification or assertion reads them.
package engine
