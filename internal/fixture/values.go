package fixture

import (
	"fmt"

	"typecore/internal/ast"
	"typecore/internal/decision"
	"typecore/internal/source"
	"typecore/internal/types"
)

// ValueError points at the part of a value that does not fit its type.
type ValueError struct {
	Span source.Span
	Msg  string
}

func (e *ValueError) Error() string {
	return e.Msg
}

// Value converts a value written in pattern syntax into an evaluator value
// of type ty. Values must be concrete: no wildcards, no bindings other than
// unit variants, no `..`.
func Value(pool *types.Pool, pats *ast.Patterns, id ast.PatID, ty types.Idx) (decision.Value, error) {
	c := valueConv{pool: pool, pats: pats}
	return c.convert(id, ty)
}

type valueConv struct {
	pool *types.Pool
	pats *ast.Patterns
}

func (c *valueConv) fail(pat *ast.Pattern, format string, args ...any) error {
	return &ValueError{Span: pat.Span, Msg: fmt.Sprintf(format, args...)}
}

func (c *valueConv) convert(id ast.PatID, ty types.Idx) (decision.Value, error) {
	pat := c.pats.Get(id)
	if pat == nil {
		return decision.Value{}, &ValueError{Msg: "missing value"}
	}
	under := c.pool.Underlying(ty)
	label := types.Label(c.pool, ty)

	switch pat.Kind {
	case ast.PatWildcard:
		return decision.Value{}, c.fail(pat, "a value cannot be a wildcard")

	case ast.PatLiteral:
		return c.literal(pat, under, label)

	case ast.PatBinding:
		idx, v, ok := c.pool.VariantIndex(under, pat.Name)
		if !ok || len(v.Fields) != 0 {
			return decision.Value{}, c.fail(pat, "%q is not a unit variant of %s", c.pool.Name(pat.Name), label)
		}
		return decision.VariantVal(idx), nil

	case ast.PatVariant:
		idx, v, ok := c.pool.VariantIndex(under, pat.Name)
		if !ok {
			return decision.Value{}, c.fail(pat, "%s has no variant %q", label, c.pool.Name(pat.Name))
		}
		if len(v.Fields) != len(pat.Elems) {
			return decision.Value{}, c.fail(pat, "%s takes %d values, got %d", c.pool.Name(pat.Name), len(v.Fields), len(pat.Elems))
		}
		payload, err := c.all(pat.Elems, v.Fields)
		if err != nil {
			return decision.Value{}, err
		}
		return decision.VariantVal(idx, payload...), nil

	case ast.PatTuple:
		var elems []types.Idx
		switch c.pool.Tag(under) {
		case types.TagTuple:
			elems = c.pool.TupleElems(under)
		case types.TagUnit:
		default:
			return decision.Value{}, c.fail(pat, "tuple value for %s", label)
		}
		if len(elems) != len(pat.Elems) {
			return decision.Value{}, c.fail(pat, "%s has %d elements, got %d", label, len(elems), len(pat.Elems))
		}
		fields, err := c.all(pat.Elems, elems)
		if err != nil {
			return decision.Value{}, err
		}
		return decision.TupleVal(fields...), nil

	case ast.PatStruct:
		return c.structValue(pat, under, label)

	case ast.PatList:
		if c.pool.Tag(under) != types.TagList {
			return decision.Value{}, c.fail(pat, "list value for %s", label)
		}
		if pat.HasRest {
			return decision.Value{}, c.fail(pat, "a list value cannot have a rest")
		}
		elem := c.pool.ListElem(under)
		out := make([]decision.Value, len(pat.Elems))
		for i, e := range pat.Elems {
			v, err := c.convert(e, elem)
			if err != nil {
				return decision.Value{}, err
			}
			out[i] = v
		}
		return decision.ListVal(out...), nil
	}
	return decision.Value{}, c.fail(pat, "unsupported value")
}

func (c *valueConv) all(ids []ast.PatID, tys []types.Idx) ([]decision.Value, error) {
	out := make([]decision.Value, len(ids))
	for i, id := range ids {
		v, err := c.convert(id, tys[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (c *valueConv) literal(pat *ast.Pattern, under types.Idx, label string) (decision.Value, error) {
	tag := c.pool.Tag(under)
	switch {
	case pat.Lit.Kind == ast.LitInt && (tag == types.TagInt || tag == types.TagByte || tag == types.TagSize):
		return decision.IntVal(pat.Lit.Int), nil
	case pat.Lit.Kind == ast.LitBool && tag == types.TagBool:
		return decision.BoolVal(pat.Lit.Bool), nil
	case pat.Lit.Kind == ast.LitChar && tag == types.TagChar:
		return decision.CharVal(pat.Lit.Char), nil
	case pat.Lit.Kind == ast.LitStr && tag == types.TagStr:
		return decision.StrVal(pat.Lit.Str), nil
	}
	return decision.Value{}, c.fail(pat, "%s literal for %s", pat.Lit.Kind, label)
}

func (c *valueConv) structValue(pat *ast.Pattern, under types.Idx, label string) (decision.Value, error) {
	if c.pool.Tag(under) != types.TagStruct || (pat.Name != source.NoStringID && c.pool.StructName(under) != pat.Name) {
		return decision.Value{}, c.fail(pat, "%s value for %s", c.pool.Name(pat.Name), label)
	}
	if pat.HasRest {
		return decision.Value{}, c.fail(pat, "a struct value must list every field")
	}
	layout := c.pool.StructFields(under)
	out := make([]decision.Value, len(layout))
	set := make([]bool, len(layout))
	for _, f := range pat.Fields {
		i := fieldPos(layout, f.Name)
		if i < 0 {
			return decision.Value{}, c.fail(pat, "%s has no field %q", label, c.pool.Name(f.Name))
		}
		if set[i] {
			return decision.Value{}, c.fail(pat, "field %q given twice", c.pool.Name(f.Name))
		}
		v, err := c.convert(f.Pat, layout[i].Type)
		if err != nil {
			return decision.Value{}, err
		}
		out[i], set[i] = v, true
	}
	for i, ok := range set {
		if !ok {
			return decision.Value{}, c.fail(pat, "missing field %q", c.pool.Name(layout[i].Name))
		}
	}
	return decision.StructVal(out...), nil
}

func fieldPos(layout []types.Field, name source.StringID) int {
	for i, f := range layout {
		if f.Name == name {
			return i
		}
	}
	return -1
}
