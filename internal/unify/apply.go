package unify

import (
	"slices"

	"typecore/internal/types"
)

// Apply substitutes every bound variable inside ty, recursively. Unbound
// variables pass through unchanged.
func (u *Unifier) Apply(ty types.Idx) types.Idx {
	return rewrite(u.pool, ty, func(id uint32) (types.Idx, bool) {
		t, ok := u.subst[id]
		return t, ok
	}, make(map[types.Idx]types.Idx))
}

// Instantiate replaces the quantified variables of a scheme with fresh
// variables from the pool. Other types come back unchanged.
func (u *Unifier) Instantiate(ty types.Idx) types.Idx {
	if u.pool.Tag(ty) != types.TagScheme {
		return ty
	}
	fresh := make(map[uint32]types.Idx)
	for _, v := range u.pool.SchemeVars(ty) {
		fresh[v] = u.pool.FreshVar()
	}
	return rewrite(u.pool, u.pool.SchemeBody(ty), func(id uint32) (types.Idx, bool) {
		t, ok := fresh[id]
		return t, ok
	}, make(map[types.Idx]types.Idx))
}

// rewrite rebuilds ty with lookup applied to every variable. Targets of
// lookup are rewritten again, so chains collapse.
func rewrite(p *types.Pool, ty types.Idx, lookup func(uint32) (types.Idx, bool), memo map[types.Idx]types.Idx) types.Idx {
	if !p.Flags(ty).Has(types.HasVar) {
		return ty
	}
	if done, ok := memo[ty]; ok {
		return done
	}
	tag := p.Tag(ty)
	var out types.Idx
	switch tag {
	case types.TagVar:
		target, ok := lookup(p.VarID(ty))
		if !ok {
			out = ty
			break
		}
		out = rewrite(p, target, lookup, memo)
	case types.TagScheme:
		vars := p.SchemeVars(ty)
		body := rewrite(p, p.SchemeBody(ty), func(id uint32) (types.Idx, bool) {
			if slices.Contains(vars, id) {
				return types.None, false
			}
			return lookup(id)
		}, make(map[types.Idx]types.Idx))
		out = p.Scheme(vars, body)
	default:
		children := p.Children(ty)
		changed := false
		for i, c := range children {
			nc := rewrite(p, c, lookup, memo)
			if nc != c {
				children[i] = nc
				changed = true
			}
		}
		out = ty
		if changed {
			out = rebuild(p, ty, children)
		}
	}
	memo[ty] = out
	return out
}

// rebuild constructs a node of ty's shape over new children, in the order
// Pool.Children lists them.
func rebuild(p *types.Pool, ty types.Idx, children []types.Idx) types.Idx {
	switch tag := p.Tag(ty); tag {
	case types.TagList, types.TagOption, types.TagSet, types.TagRange:
		return rewrap(p, tag, children[0])
	case types.TagResult:
		return p.Result(children[0], children[1])
	case types.TagMap:
		return p.Map(children[0], children[1])
	case types.TagTuple:
		return p.Tuple(children)
	case types.TagFunction:
		n := len(children) - 1
		return p.Function(children[:n], children[n])
	case types.TagApplied:
		return p.Applied(p.AppliedName(ty), children)
	case types.TagBorrowed:
		_, lifetime := p.BorrowedParts(ty)
		return p.Borrowed(children[0], lifetime)
	default:
		return ty
	}
}

func rewrap(p *types.Pool, tag types.Tag, inner types.Idx) types.Idx {
	switch tag {
	case types.TagList:
		return p.List(inner)
	case types.TagOption:
		return p.Option(inner)
	case types.TagSet:
		return p.Set(inner)
	case types.TagRange:
		return p.Range(inner)
	default:
		panic("unify: rewrap on " + tag.String())
	}
}
