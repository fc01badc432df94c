package engine

import (
	"fmt"
	"strings"

	"github.com/roach88/standin/internal/value"
)

// Pattern describes the argument shapes a stub entry or expectation applies
// to. A pattern is either exact (a concrete ordered argument list, matched
// by structural equality) or wildcard (matches any arguments of a fixed
// count, without checking values).
type Pattern struct {
	args     value.Array
	wildcard bool
	arity    int
}

// Exactly builds an exact pattern from a concrete argument list.
// Dispatch arguments must be structurally equal, element by element.
func Exactly(args ...value.Value) Pattern {
	return ExactArgs(value.Array(args))
}

// ExactArgs builds an exact pattern from an argument Array.
// The slice is copied so later mutation by the caller cannot change the
// configured pattern.
func ExactArgs(args value.Array) Pattern {
	cp := make(value.Array, len(args))
	copy(cp, args)
	return Pattern{args: cp, arity: len(cp)}
}

// AnyArgs builds a wildcard pattern matching any arguments of the given
// count.
func AnyArgs(arity int) Pattern {
	return Pattern{wildcard: true, arity: arity}
}

// Wildcard reports whether the pattern matches on arity alone.
func (p Pattern) Wildcard() bool {
	return p.wildcard
}

// Arity returns the argument count the pattern applies to.
func (p Pattern) Arity() int {
	return p.arity
}

// Args returns the exact argument list, or nil for a wildcard pattern.
func (p Pattern) Args() value.Array {
	return p.args
}

// Matches reports whether the pattern applies to a concrete argument list.
// Exact patterns require structural equality; wildcard patterns require
// only a matching count.
func (p Pattern) Matches(args value.Array) bool {
	if len(args) != p.arity {
		return false
	}
	if p.wildcard {
		return true
	}
	return value.EqualArrays(p.args, args)
}

// Same reports pattern identity: two exact patterns with equal argument
// lists, or two wildcards of equal arity. Used to group queued entries
// for FIFO drain (an exact pattern and a wildcard of the same arity are
// NOT the same queue).
func (p Pattern) Same(q Pattern) bool {
	if p.wildcard != q.wildcard || p.arity != q.arity {
		return false
	}
	if p.wildcard {
		return true
	}
	return value.EqualArrays(p.args, q.args)
}

// String renders the pattern for diagnostics.
func (p Pattern) String() string {
	if p.wildcard {
		return fmt.Sprintf("any(%d)", p.arity)
	}

	parts := make([]string, len(p.args))
	for i, arg := range p.args {
		b, err := value.Marshal(arg)
		if err != nil {
			parts[i] = fmt.Sprintf("<%v>", err)
			continue
		}
		parts[i] = string(b)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
