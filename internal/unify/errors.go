package unify

import (
	"fmt"

	"typecore/internal/types"
)

// ErrorKind classifies a unification failure.
type ErrorKind uint8

const (
	// Mismatch: two concrete types of different shape or identity.
	Mismatch ErrorKind = iota + 1
	// OccursCheck: binding Var to Type would build an infinite type.
	OccursCheck
	// ArityMismatch: tuples, functions or applications of different length.
	ArityMismatch
)

func (k ErrorKind) String() string {
	switch k {
	case Mismatch:
		return "mismatch"
	case OccursCheck:
		return "occurs check"
	case ArityMismatch:
		return "arity mismatch"
	default:
		return "unknown"
	}
}

// Error is the data a failed Unify returns. Left and Right are the
// innermost conflicting pair; OuterLeft and OuterRight are the operands of
// the top-level call when the conflict was found below them.
type Error struct {
	Kind ErrorKind

	Left  types.Idx
	Right types.Idx

	// OccursCheck
	Var  types.Idx
	Type types.Idx

	// ArityMismatch
	Expected int
	Found    int

	OuterLeft  types.Idx
	OuterRight types.Idx

	pool *types.Pool
}

// Nested reports whether the conflict sits below the top-level operands.
func (e *Error) Nested() bool {
	return e.OuterLeft != types.None
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case Mismatch:
		msg = fmt.Sprintf("cannot unify %s with %s", e.label(e.Left), e.label(e.Right))
	case OccursCheck:
		msg = fmt.Sprintf("%s occurs in %s", e.label(e.Var), e.label(e.Type))
	case ArityMismatch:
		msg = fmt.Sprintf("expected %d elements, found %d (%s vs %s)",
			e.Expected, e.Found, e.label(e.Left), e.label(e.Right))
	default:
		msg = "unification failed"
	}
	if e.Nested() {
		msg += fmt.Sprintf(" in %s vs %s", e.label(e.OuterLeft), e.label(e.OuterRight))
	}
	return msg
}

func (e *Error) label(id types.Idx) string {
	return types.Label(e.pool, id)
}

func (u *Unifier) mismatch(l, r types.Idx) *Error {
	return &Error{Kind: Mismatch, Left: l, Right: r, pool: u.pool}
}

func (u *Unifier) arity(l, r types.Idx, expected, found int) *Error {
	return &Error{Kind: ArityMismatch, Left: l, Right: r, Expected: expected, Found: found, pool: u.pool}
}

func (u *Unifier) occurs(v, ty types.Idx) *Error {
	return &Error{Kind: OccursCheck, Left: v, Right: ty, Var: v, Type: ty, pool: u.pool}
}
