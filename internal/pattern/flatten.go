package pattern

import (
	"fmt"

	"typecore/internal/ast"
	"typecore/internal/diag"
	"typecore/internal/source"
	"typecore/internal/types"
)

// Flattener turns source patterns into Flat values. Ill-typed patterns are
// reported and replaced by a wildcard of the expected type so the match can
// still be compiled.
type Flattener struct {
	Pool     *types.Pool
	Patterns *ast.Patterns
	Table    *Table
	Reporter diag.Reporter
}

// Flatten converts the pattern at root, matched against ty, for the arm and
// column in key. key.Pos is ignored: positions are counted from root.
func (f *Flattener) Flatten(root ast.PatID, ty types.Idx, key Key) Flat {
	c := &flattenCtx{f: f, arm: key.Arm, column: key.Column}
	return c.flatten(root, ty)
}

type flattenCtx struct {
	f      *Flattener
	arm    int
	column int
	pos    int
}

func (c *flattenCtx) report(code diag.Code, span source.Span, format string, args ...any) {
	if c.f.Reporter == nil {
		return
	}
	diag.ReportError(c.f.Reporter, code, span, fmt.Sprintf(format, args...)).Emit()
}

func (c *flattenCtx) label(ty types.Idx) string {
	return types.Label(c.f.Pool, ty)
}

func (c *flattenCtx) name(id source.StringID) string {
	return c.f.Pool.Name(id)
}

// reject reports nothing by itself; it skips the subtree so positions stay
// aligned with the resolution pass and yields a wildcard.
func (c *flattenCtx) reject(id ast.PatID, ty types.Idx) Flat {
	n := 0
	c.f.Patterns.Walk(id, func(int, ast.PatID, *ast.Pattern) { n++ })
	c.pos += n
	out := Wild(ty)
	if pat := c.f.Patterns.Get(id); pat != nil {
		out.Span = pat.Span
	}
	return out
}

// recovering reports whether ty is already broken, in which case shape
// errors below it are not reported again.
func (c *flattenCtx) recovering(under types.Idx) bool {
	switch c.f.Pool.Tag(under) {
	case types.TagError, types.TagNever, types.TagVar, types.TagNamed, types.TagNone:
		return true
	}
	return false
}

func (c *flattenCtx) flatten(id ast.PatID, ty types.Idx) Flat {
	pat := c.f.Patterns.Get(id)
	if pat == nil {
		return Wild(ty)
	}
	pool := c.f.Pool
	under := pool.Underlying(ty)
	if c.recovering(under) {
		return c.flattenLoose(id, pat, ty)
	}

	switch pat.Kind {
	case ast.PatWildcard:
		c.pos++
		return Flat{Kind: Wildcard, Type: ty, Span: pat.Span}

	case ast.PatBinding:
		key := Key{Arm: c.arm, Column: c.column, Pos: c.pos}
		c.pos++
		if uv, ok := c.f.Table.Lookup(key); ok {
			return Flat{Kind: Variant, Name: uv.Name, Index: uv.Index, Type: ty, Span: pat.Span}
		}
		return Flat{Kind: Binding, Name: pat.Name, Type: ty, Span: pat.Span}

	case ast.PatLiteral:
		if !literalFits(pat.Lit.Kind, pool.Tag(under)) {
			c.report(diag.PatLiteralType, pat.Span, "%s literal cannot match a value of type %s", pat.Lit.Kind, c.label(ty))
			return c.reject(id, ty)
		}
		if pool.Tag(under) == types.TagByte && (pat.Lit.Int < 0 || pat.Lit.Int > types.ByteMax) {
			c.report(diag.PatLiteralType, pat.Span, "literal %d is out of range for %s", pat.Lit.Int, c.label(ty))
			return c.reject(id, ty)
		}
		c.pos++
		return Flat{Kind: Literal, Lit: pat.Lit, Type: ty, Span: pat.Span}

	case ast.PatVariant:
		variants, ok := pool.VariantsOf(under)
		if !ok {
			c.report(diag.PatShapeMismatch, pat.Span, "variant pattern %s cannot match a value of type %s", c.name(pat.Name), c.label(ty))
			return c.reject(id, ty)
		}
		index := -1
		for i, v := range variants {
			if v.Name == pat.Name {
				index = i
				break
			}
		}
		if index < 0 {
			c.report(diag.PatUnknownVariant, pat.Span, "%s has no variant %s", c.label(ty), c.name(pat.Name))
			return c.reject(id, ty)
		}
		v := variants[index]
		if len(v.Fields) != len(pat.Elems) {
			c.report(diag.PatArity, pat.Span, "variant %s takes %d sub-patterns, found %d", c.name(v.Name), len(v.Fields), len(pat.Elems))
			return c.reject(id, ty)
		}
		c.pos++
		subs := make([]Flat, len(pat.Elems))
		for i, e := range pat.Elems {
			subs[i] = c.flatten(e, v.Fields[i])
		}
		return Flat{Kind: Variant, Name: v.Name, Index: index, Subs: subs, Type: ty, Span: pat.Span}

	case ast.PatTuple:
		var elems []types.Idx
		switch pool.Tag(under) {
		case types.TagTuple:
			elems = pool.TupleElems(under)
		case types.TagUnit:
		default:
			c.report(diag.PatShapeMismatch, pat.Span, "tuple pattern cannot match a value of type %s", c.label(ty))
			return c.reject(id, ty)
		}
		if len(elems) != len(pat.Elems) {
			c.report(diag.PatArity, pat.Span, "tuple pattern has %d elements, type %s has %d", len(pat.Elems), c.label(ty), len(elems))
			return c.reject(id, ty)
		}
		c.pos++
		subs := make([]Flat, len(pat.Elems))
		for i, e := range pat.Elems {
			subs[i] = c.flatten(e, elems[i])
		}
		return Flat{Kind: Tuple, Subs: subs, Type: ty, Span: pat.Span}

	case ast.PatStruct:
		return c.flattenStruct(id, pat, ty, under)

	case ast.PatList:
		if pool.Tag(under) != types.TagList {
			c.report(diag.PatShapeMismatch, pat.Span, "list pattern cannot match a value of type %s", c.label(ty))
			return c.reject(id, ty)
		}
		c.pos++
		elem := pool.ListElem(under)
		subs := make([]Flat, len(pat.Elems))
		for i, e := range pat.Elems {
			subs[i] = c.flatten(e, elem)
		}
		out := Flat{Kind: List, Subs: subs, Type: ty, Span: pat.Span}
		if pat.HasRest {
			rest := Wild(under)
			if pat.Rest.IsValid() {
				rest = c.flatten(pat.Rest, under)
			}
			out.Rest = &rest
		}
		return out
	}
	panic(fmt.Sprintf("pattern: unknown pattern kind %d", pat.Kind))
}

func (c *flattenCtx) flattenStruct(id ast.PatID, pat *ast.Pattern, ty, under types.Idx) Flat {
	pool := c.f.Pool
	if pool.Tag(under) != types.TagStruct || (pat.Name != source.NoStringID && pat.Name != pool.StructName(under)) {
		c.report(diag.PatShapeMismatch, pat.Span, "struct pattern %s cannot match a value of type %s", c.name(pat.Name), c.label(ty))
		return c.reject(id, ty)
	}
	layout := pool.StructFields(under)
	for i, fp := range pat.Fields {
		if fieldIndex(layout, fp.Name) < 0 {
			c.report(diag.PatUnknownField, fp.Span, "%s has no field %s", c.label(ty), c.name(fp.Name))
			return c.reject(id, ty)
		}
		for _, prev := range pat.Fields[:i] {
			if prev.Name == fp.Name {
				c.report(diag.PatDuplicateField, fp.Span, "field %s is matched twice", c.name(fp.Name))
				return c.reject(id, ty)
			}
		}
	}
	c.pos++
	subs := make([]Flat, len(layout))
	for i, fd := range layout {
		subs[i] = Wild(fd.Type)
	}
	for _, fp := range pat.Fields {
		j := fieldIndex(layout, fp.Name)
		subs[j] = c.flatten(fp.Pat, layout[j].Type)
	}
	return Flat{Kind: Struct, Name: pool.StructName(under), Subs: subs, Type: ty, Span: pat.Span}
}

// flattenLoose handles patterns whose expected type is unknown or already
// an error: bindings and wildcards survive, everything else becomes a
// wildcard without a new diagnostic.
func (c *flattenCtx) flattenLoose(id ast.PatID, pat *ast.Pattern, ty types.Idx) Flat {
	switch pat.Kind {
	case ast.PatWildcard:
		c.pos++
		return Flat{Kind: Wildcard, Type: ty, Span: pat.Span}
	case ast.PatBinding:
		c.pos++
		return Flat{Kind: Binding, Name: pat.Name, Type: ty, Span: pat.Span}
	default:
		return c.reject(id, ty)
	}
}

func literalFits(lit ast.LitKind, tag types.Tag) bool {
	switch lit {
	case ast.LitInt:
		return tag == types.TagInt || tag == types.TagByte || tag == types.TagSize
	case ast.LitBool:
		return tag == types.TagBool
	case ast.LitChar:
		return tag == types.TagChar
	case ast.LitStr:
		return tag == types.TagStr
	}
	return false
}
