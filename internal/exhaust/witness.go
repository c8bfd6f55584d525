package exhaust

import (
	"math"
	"slices"

	"typecore/internal/ast"
	"typecore/internal/decision"
	"typecore/internal/pattern"
	"typecore/internal/types"
)

// build reconstructs the pattern at path from the constraints collected on
// the way down. Unconstrained positions are wildcards.
func (c *checker) build(path decision.Path, ty types.Idx) pattern.Flat {
	k, ok := c.known[path.String()]
	if !ok {
		return pattern.Wild(ty)
	}
	switch k.test {
	case decision.TestIntEq, decision.TestBoolEq, decision.TestCharEq, decision.TestStrEq:
		if k.fixed {
			return pattern.Flat{Kind: pattern.Literal, Lit: k.value.Lit, Type: ty}
		}
		limit := int64(math.MaxInt64)
		if c.pool.Tag(c.pool.Underlying(ty)) == types.TagByte {
			limit = types.ByteMax + 1
		}
		if lit, ok := missingLit(k.test, k.excluded, limit); ok {
			return pattern.Flat{Kind: pattern.Literal, Lit: lit, Type: ty}
		}
		return pattern.Wild(ty)
	case decision.TestVariantTag:
		return c.buildVariant(path, ty, k)
	case decision.TestDestructure:
		return c.buildDestructure(path, ty)
	case decision.TestListShape:
		return c.buildList(path, ty, k)
	}
	return pattern.Wild(ty)
}

func (c *checker) buildVariant(path decision.Path, ty types.Idx, k constraint) pattern.Flat {
	variants, ok := c.pool.VariantsOf(ty)
	if !ok {
		return pattern.Wild(ty)
	}
	index := -1
	if k.fixed {
		index = k.value.Variant
	} else {
		for i := range variants {
			if !slices.ContainsFunc(k.excluded, func(o decision.Outcome) bool { return o.Variant == i }) {
				index = i
				break
			}
		}
	}
	if index < 0 || index >= len(variants) {
		return pattern.Wild(ty)
	}
	v := variants[index]
	subs := make([]pattern.Flat, len(v.Fields))
	for i, ft := range v.Fields {
		subs[i] = c.build(path.Child(decision.Step{Kind: decision.StepPayload, Index: i}), ft)
	}
	return pattern.Flat{Kind: pattern.Variant, Name: v.Name, Index: index, Subs: subs, Type: ty}
}

func (c *checker) buildDestructure(path decision.Path, ty types.Idx) pattern.Flat {
	under := c.pool.Underlying(ty)
	switch c.pool.Tag(under) {
	case types.TagStruct:
		fields := c.pool.StructFields(under)
		subs := make([]pattern.Flat, len(fields))
		for i, f := range fields {
			subs[i] = c.build(path.Child(decision.Step{Kind: decision.StepField, Index: i}), f.Type)
		}
		return pattern.Flat{Kind: pattern.Struct, Name: c.pool.StructName(under), Subs: subs, Type: ty}
	case types.TagTuple:
		elems := c.pool.TupleElems(under)
		subs := make([]pattern.Flat, len(elems))
		for i, e := range elems {
			subs[i] = c.build(path.Child(decision.Step{Kind: decision.StepElem, Index: i}), e)
		}
		return pattern.Flat{Kind: pattern.Tuple, Subs: subs, Type: ty}
	case types.TagUnit:
		return pattern.Flat{Kind: pattern.Tuple, Type: ty}
	}
	return pattern.Wild(ty)
}

func (c *checker) buildList(path decision.Path, ty types.Idx, k constraint) pattern.Flat {
	shape := decision.ShapeNonEmpty
	switch {
	case k.fixed:
		shape = k.value.Variant
	case slices.Contains(k.excluded, decision.Outcome{Variant: decision.ShapeNonEmpty}):
		shape = decision.ShapeEmpty
	}
	if shape == decision.ShapeEmpty {
		return pattern.Flat{Kind: pattern.List, Type: ty}
	}
	elem := types.Error
	if under := c.pool.Underlying(ty); c.pool.Tag(under) == types.TagList {
		elem = c.pool.ListElem(under)
	}
	head := c.build(path.Child(decision.Step{Kind: decision.StepHead}), elem)
	tail := c.build(path.Child(decision.Step{Kind: decision.StepTail}), ty)
	if tail.Kind == pattern.List {
		return pattern.Flat{Kind: pattern.List, Subs: append([]pattern.Flat{head}, tail.Subs...), Rest: tail.Rest, Type: ty}
	}
	rest := pattern.Wild(ty)
	return pattern.Flat{Kind: pattern.List, Subs: []pattern.Flat{head}, Rest: &rest, Type: ty}
}

// missingLit picks a literal outside excluded: the other boolean, the
// smallest non-negative integer below limit, the first letter. Strings have
// no useful pick and yield false.
func missingLit(test decision.TestKind, excluded []decision.Outcome, limit int64) (ast.Lit, bool) {
	has := func(l ast.Lit) bool {
		return slices.Contains(excluded, decision.Outcome{Lit: l})
	}
	switch test {
	case decision.TestBoolEq:
		for _, b := range []bool{false, true} {
			if !has(ast.BoolLit(b)) {
				return ast.BoolLit(b), true
			}
		}
	case decision.TestIntEq:
		for i := int64(0); i < limit; i++ {
			if !has(ast.IntLit(i)) {
				return ast.IntLit(i), true
			}
		}
	case decision.TestCharEq:
		for r := 'a'; r <= 'z'; r++ {
			if !has(ast.CharLit(r)) {
				return ast.CharLit(r), true
			}
		}
	}
	return ast.Lit{}, false
}
