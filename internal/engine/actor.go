package engine

import (
	"sync"

	"github.com/roach88/standin/internal/value"
)

// requestKind routes mailbox requests to their handler.
type requestKind int

const (
	reqConfigure requestKind = iota + 1
	reqDispatch
	reqClear
	reqClearAll
	reqExpect
	reqExpectations
)

// request is one message to a double's actor. Every request carries a
// buffered reply channel; the actor always replies exactly once.
type request struct {
	kind      requestKind
	operation string
	pattern   Pattern
	action    Action
	args      value.Array
	reply     chan response
}

// response is the actor's answer to a request.
type response struct {
	action       Action
	applied      bool // an action (stub or spy fallthrough) was applied
	expectations []Expectation
	err          error
}

// actor is the single-threaded owner of one double's stub table and
// expectation list.
//
// All mutations happen in the run goroutine. External callers use send(),
// which is safe from any goroutine; requests execute one at a time in the
// order received, so configure and dispatch for one double never
// interleave no matter how many goroutines call in.
//
// The actor also performs spy fallthrough: delegation to the real
// implementation runs inside the run goroutine, so a spy's real calls are
// serialized along with its stub resolution.
type actor struct {
	doubleID string
	table    *stubTable
	expects  []Expectation
	spy      bool
	real     RealTarget // nil unless spy

	requests chan request
	quit     chan struct{}
	stop     sync.Once
}

// newActor creates an actor and starts its run goroutine.
func newActor(doubleID string, spy bool, real RealTarget) *actor {
	a := &actor{
		doubleID: doubleID,
		table:    newStubTable(),
		spy:      spy,
		real:     real,
		requests: make(chan request),
		quit:     make(chan struct{}),
	}
	go a.run()
	return a
}

// run is the mailbox loop. Must be the only goroutine touching the table
// and expectation list.
func (a *actor) run() {
	for {
		select {
		case req := <-a.requests:
			req.reply <- a.handle(req)
		case <-a.quit:
			return
		}
	}
}

// send submits a request and waits for the reply.
// Safe from any goroutine. Fails fast once the actor is closed.
func (a *actor) send(req request) response {
	req.reply = make(chan response, 1)

	select {
	case a.requests <- req:
	case <-a.quit:
		return response{err: &DispatchError{
			Code:     ErrCodeDoubleClosed,
			Message:  "double has been closed",
			DoubleID: a.doubleID,
		}}
	}

	// The run loop replies before selecting the next request, so this
	// receive cannot hang once the send was accepted.
	return <-req.reply
}

// close stops the run goroutine. Idempotent.
func (a *actor) close() {
	a.stop.Do(func() {
		close(a.quit)
	})
}

func (a *actor) handle(req request) response {
	switch req.kind {
	case reqConfigure:
		a.table.register(req.operation, req.pattern, req.action)
		return response{}

	case reqDispatch:
		return a.handleDispatch(req.operation, req.args)

	case reqClear:
		a.table.clear(req.operation)
		return response{}

	case reqClearAll:
		a.table.clearAll()
		return response{}

	case reqExpect:
		a.expects = append(a.expects, Expectation{
			Operation: req.operation,
			Pattern:   req.pattern,
		})
		// A default stub so the expected call succeeds with a null result
		// unless separately stubbed.
		a.table.register(req.operation, req.pattern, Return(value.Null{}))
		return response{}

	case reqExpectations:
		out := make([]Expectation, len(a.expects))
		copy(out, a.expects)
		return response{expectations: out}

	default:
		return response{err: &DispatchError{
			Code:     ErrCodeDoubleClosed,
			Message:  "unknown actor request",
			DoubleID: a.doubleID,
		}}
	}
}

// handleDispatch resolves a call against the stub table, falling through
// to the real implementation for spy doubles.
func (a *actor) handleDispatch(operation string, args value.Array) response {
	action, err := a.table.resolve(a.doubleID, operation, args)
	if err == nil {
		return response{action: action, applied: true}
	}

	if !a.spy || a.real == nil {
		return response{err: err}
	}

	// Spy fallback: delegation requires the real surface to declare the
	// operation at this arity. An arity the real surface also lacks stays
	// fatal, as does an operation it never declared.
	if !a.real.Declares(operation, len(args)) {
		return response{err: err}
	}

	result, realErr := a.real.Invoke(operation, args)
	if realErr != nil {
		// The real call happened, so the record is still posted; the real
		// error propagates to the caller as-is.
		return response{applied: true, err: realErr}
	}
	return response{action: Return(result), applied: true}
}
