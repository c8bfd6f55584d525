package unify

import (
	"fmt"
	"maps"
	"slices"

	"typecore/internal/trace"
	"typecore/internal/types"
)

// Binding is one recorded var := type entry.
type Binding struct {
	Var  uint32
	Type types.Idx
}

// Option configures a Unifier.
type Option func(*Unifier)

// WithTracer emits a debug point for every binding under parent span.
func WithTracer(t trace.Tracer, parent uint64) Option {
	return func(u *Unifier) {
		if t != nil {
			u.tracer = t
			u.span = parent
		}
	}
}

// Unifier unifies pairs of handles over a pool and keeps the substitution.
type Unifier struct {
	pool  *types.Pool
	subst map[uint32]types.Idx
	order []uint32

	tracer trace.Tracer
	span   uint64
}

// New returns a unifier with an empty substitution. The pool must be
// writable: unification rebuilds composite types from unified children.
func New(pool *types.Pool, opts ...Option) *Unifier {
	u := &Unifier{
		pool:   pool,
		subst:  make(map[uint32]types.Idx),
		tracer: trace.Nop,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Pool returns the pool the unifier works on.
func (u *Unifier) Pool() *types.Pool {
	return u.pool
}

// Fork returns a unifier over the same pool with a copy of the
// substitution. Bindings made on the fork never reach u.
func (u *Unifier) Fork() *Unifier {
	return &Unifier{
		pool:   u.pool,
		subst:  maps.Clone(u.subst),
		order:  slices.Clone(u.order),
		tracer: u.tracer,
		span:   u.span,
	}
}

// Len is the number of bound variables.
func (u *Unifier) Len() int {
	return len(u.order)
}

// Bindings lists the substitution in the order bindings were recorded.
func (u *Unifier) Bindings() []Binding {
	out := make([]Binding, len(u.order))
	for i, v := range u.order {
		out[i] = Binding{Var: v, Type: u.subst[v]}
	}
	return out
}

// Lookup returns the direct binding of variable id.
func (u *Unifier) Lookup(id uint32) (types.Idx, bool) {
	t, ok := u.subst[id]
	return t, ok
}

// Resolve follows the substitution and the pool's Named resolutions until
// the handle maps to nothing further. It does not look inside composites.
func (u *Unifier) Resolve(id types.Idx) types.Idx {
	for range u.pool.Len() + len(u.order) + 1 {
		switch u.pool.Tag(id) {
		case types.TagVar:
			next, ok := u.subst[u.pool.VarID(id)]
			if !ok {
				return id
			}
			id = next
		case types.TagNamed:
			next, ok := u.pool.Resolve(id)
			if !ok {
				return id
			}
			id = next
		default:
			return id
		}
	}
	panic("unify: substitution does not terminate")
}

// Unify makes left and right equal, returning the unified type. On failure
// the returned error is a *Error and the substitution is left exactly as it
// was before the call.
func (u *Unifier) Unify(left, right types.Idx) (types.Idx, error) {
	mark := len(u.order)
	res, err := u.unify(left, right)
	if err != nil {
		u.rollback(mark)
		if err.Left != left || err.Right != right {
			err.OuterLeft, err.OuterRight = left, right
		}
		return types.Error, err
	}
	return res, nil
}

func (u *Unifier) rollback(mark int) {
	for _, v := range u.order[mark:] {
		delete(u.subst, v)
	}
	u.order = u.order[:mark]
}


func (u *Unifier) unify(left, right types.Idx) (types.Idx, *Error) {
	l, r := u.Resolve(left), u.Resolve(right)
	if l == r {
		return l, nil
	}
	// Error поглощает всё, включая Never; затем Never поглощает остальное
	if l == types.Error {
		return r, nil
	}
	if r == types.Error {
		return l, nil
	}
	if l == types.Never {
		return r, nil
	}
	if r == types.Never {
		return l, nil
	}

	lt, rt := u.pool.Tag(l), u.pool.Tag(r)
	switch {
	case lt == types.TagVar && rt == types.TagVar:
		if u.pool.VarID(l) > u.pool.VarID(r) {
			return r, u.bind(l, r)
		}
		return l, u.bind(r, l)
	case lt == types.TagVar:
		return r, u.bind(l, r)
	case rt == types.TagVar:
		return l, u.bind(r, l)
	}
	if lt != rt {
		return types.Error, u.mismatch(l, r)
	}

	p := u.pool
	switch lt {
	case types.TagList, types.TagOption, types.TagSet, types.TagRange:
		inner, err := u.unify(types.Idx(p.Data(l)), types.Idx(p.Data(r)))
		if err != nil {
			return types.Error, err
		}
		return rewrap(p, lt, inner), nil
	case types.TagResult:
		lo, le := p.ResultParts(l)
		ro, re := p.ResultParts(r)
		ok, err := u.unify(lo, ro)
		if err != nil {
			return types.Error, err
		}
		e, err := u.unify(le, re)
		if err != nil {
			return types.Error, err
		}
		return p.Result(ok, e), nil
	case types.TagMap:
		lk, lv := p.MapParts(l)
		rk, rv := p.MapParts(r)
		k, err := u.unify(lk, rk)
		if err != nil {
			return types.Error, err
		}
		v, err := u.unify(lv, rv)
		if err != nil {
			return types.Error, err
		}
		return p.Map(k, v), nil
	case types.TagTuple:
		elems, err := u.pairwise(l, r, p.TupleElems(l), p.TupleElems(r))
		if err != nil {
			return types.Error, err
		}
		return p.Tuple(elems), nil
	case types.TagFunction:
		params, err := u.pairwise(l, r, p.FunctionParams(l), p.FunctionParams(r))
		if err != nil {
			return types.Error, err
		}
		res, err := u.unify(p.FunctionResult(l), p.FunctionResult(r))
		if err != nil {
			return types.Error, err
		}
		return p.Function(params, res), nil
	case types.TagApplied:
		if p.AppliedName(l) != p.AppliedName(r) {
			return types.Error, u.mismatch(l, r)
		}
		args, err := u.pairwise(l, r, p.AppliedArgs(l), p.AppliedArgs(r))
		if err != nil {
			return types.Error, err
		}
		return p.Applied(p.AppliedName(l), args), nil
	case types.TagBorrowed:
		li, lifetime := p.BorrowedParts(l)
		ri, _ := p.BorrowedParts(r)
		inner, err := u.unify(li, ri)
		if err != nil {
			return types.Error, err
		}
		return p.Borrowed(inner, lifetime), nil
	case types.TagStruct, types.TagEnum, types.TagNamed, types.TagScheme:
		// nominal identity or uninstantiated scheme: handles already differ
		return types.Error, u.mismatch(l, r)
	case types.TagInt, types.TagFloat, types.TagBool, types.TagChar, types.TagByte,
		types.TagStr, types.TagUnit, types.TagDuration, types.TagSize, types.TagOrdering:
		return types.Error, u.mismatch(l, r)
	case types.TagNone, types.TagNever, types.TagError, types.TagVar:
		panic(fmt.Sprintf("unify: unexpected %s after resolution", lt))
	default:
		panic(fmt.Sprintf("unify: unhandled tag %s", lt))
	}
}

func (u *Unifier) pairwise(l, r types.Idx, ls, rs []types.Idx) ([]types.Idx, *Error) {
	if len(ls) != len(rs) {
		return nil, u.arity(l, r, len(ls), len(rs))
	}
	out := make([]types.Idx, len(ls))
	for i := range ls {
		t, err := u.unify(ls[i], rs[i])
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

func (u *Unifier) bind(v, ty types.Idx) *Error {
	if u.occursIn(u.pool.VarID(v), ty) {
		return u.occurs(v, ty)
	}
	id := u.pool.VarID(v)
	u.subst[id] = ty
	u.order = append(u.order, id)
	if u.tracer.Level().ShouldEmit(trace.ScopeNode) {
		trace.Point(u.tracer, trace.ScopeNode, "unify.bind",
			fmt.Sprintf("?%d := %s", id, types.Label(u.pool, ty)), u.span)
	}
	return nil
}

// occursIn scans ty through the substitution for variable id. Nominal
// definitions are opaque here: their fields are never unified into.
func (u *Unifier) occursIn(id uint32, ty types.Idx) bool {
	seen := make(map[types.Idx]struct{})
	var walk func(t types.Idx) bool
	walk = func(t types.Idx) bool {
		t = u.Resolve(t)
		if _, ok := seen[t]; ok {
			return false
		}
		seen[t] = struct{}{}
		if u.pool.Tag(t) == types.TagVar {
			return u.pool.VarID(t) == id
		}
		if !u.pool.Flags(t).Has(types.HasVar) {
			return false
		}
		for _, c := range u.pool.Children(t) {
			if walk(c) {
				return true
			}
		}
		return false
	}
	return walk(ty)
}
