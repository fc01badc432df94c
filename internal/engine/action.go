package engine

import (
	"fmt"

	"github.com/roach88/standin/internal/value"
)

// DefaultErrorKind is the error kind a Raise action carries when the
// configuring test does not name one.
const DefaultErrorKind = "RuntimeError"

// ActionKind distinguishes the two configured behaviors.
type ActionKind int

const (
	// ActionReturn yields a configured value to the caller.
	ActionReturn ActionKind = iota + 1
	// ActionRaise injects a configured error into the caller.
	ActionRaise
)

// Action is the behavior a stub entry applies once matched: return a value
// or raise an error. Raise actions are data until applied - the error is
// not constructed until Apply.
type Action struct {
	kind    ActionKind
	result  value.Value
	errKind string
	message string
}

// Return builds an action that yields v to the caller.
func Return(v value.Value) Action {
	if v == nil {
		v = value.Null{}
	}
	return Action{kind: ActionReturn, result: v}
}

// Raise builds an action that injects an error with the given kind and
// message. An empty kind defaults to DefaultErrorKind.
func Raise(kind, message string) Action {
	if kind == "" {
		kind = DefaultErrorKind
	}
	return Action{kind: ActionRaise, errKind: kind, message: message}
}

// Kind returns the action's behavior tag.
func (a Action) Kind() ActionKind {
	return a.kind
}

// Result returns the configured return value. Null for Raise actions.
func (a Action) Result() value.Value {
	if a.result == nil {
		return value.Null{}
	}
	return a.result
}

// Apply executes the configured behavior: the configured value for Return,
// an *InjectedError (kind + message, never wrapped) for Raise.
func (a Action) Apply() (value.Value, error) {
	switch a.kind {
	case ActionReturn:
		return a.Result(), nil
	case ActionRaise:
		return value.Null{}, &InjectedError{Kind: a.errKind, Message: a.message}
	default:
		return value.Null{}, fmt.Errorf("unknown action kind: %d", a.kind)
	}
}

// String renders the action for diagnostics.
func (a Action) String() string {
	switch a.kind {
	case ActionReturn:
		b, err := value.Marshal(a.Result())
		if err != nil {
			return fmt.Sprintf("return <%v>", err)
		}
		return fmt.Sprintf("return %s", b)
	case ActionRaise:
		return fmt.Sprintf("raise %s: %s", a.errKind, a.message)
	default:
		return fmt.Sprintf("action(%d)", a.kind)
	}
}
