package pattern

import (
	"maps"

	"typecore/internal/ast"
	"typecore/internal/source"
	"typecore/internal/types"
)

// Key identifies one pattern occurrence: the arm, the column inside the
// arm, and the preorder position of the node inside that column's pattern
// (the order of ast.Patterns.Walk; the root is 0).
type Key struct {
	Arm    int
	Column int
	Pos    int
}

// UnitVariant records that a bare identifier names a zero-payload variant.
type UnitVariant struct {
	Name  source.StringID
	Index int
}

// Table is the disambiguation table produced by name resolution and read
// by the flattener.
type Table struct {
	entries map[Key]UnitVariant
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{entries: make(map[Key]UnitVariant)}
}

// Set records v for key, replacing an earlier entry.
func (t *Table) Set(key Key, v UnitVariant) {
	t.entries[key] = v
}

// Lookup returns the entry for key. A nil table has none.
func (t *Table) Lookup(key Key) (UnitVariant, bool) {
	if t == nil {
		return UnitVariant{}, false
	}
	v, ok := t.entries[key]
	return v, ok
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Keys returns the recorded keys; order is unspecified.
func (t *Table) Keys() []Key {
	if t == nil {
		return nil
	}
	out := make([]Key, 0, len(t.entries))
	for k := range maps.Keys(t.entries) {
		out = append(out, k)
	}
	return out
}

// ResolveUnitVariants walks the pattern at root against ty and records every
// binding whose name is a zero-payload variant of its expected type.
// Sub-types follow the same rules as Flatten; positions below an ill-typed
// node are still counted so keys agree with the flattener.
func ResolveUnitVariants(pool *types.Pool, pats *ast.Patterns, arm, column int, root ast.PatID, ty types.Idx, table *Table) {
	pos := 0
	var walk func(id ast.PatID, ty types.Idx)
	walk = func(id ast.PatID, ty types.Idx) {
		pat := pats.Get(id)
		if pat == nil {
			return
		}
		here := pos
		pos++
		under := pool.Underlying(ty)
		if pat.Kind == ast.PatBinding {
			if variants, ok := pool.VariantsOf(under); ok {
				for i, v := range variants {
					if v.Name == pat.Name && len(v.Fields) == 0 {
						table.Set(Key{Arm: arm, Column: column, Pos: here}, UnitVariant{Name: v.Name, Index: i})
						break
					}
				}
			}
		}
		elems, fields, rest := expectedSubTypes(pool, pat, under)
		for i, e := range pat.Elems {
			walk(e, elems[i])
		}
		for i, f := range pat.Fields {
			walk(f.Pat, fields[i])
		}
		if pat.Rest.IsValid() {
			walk(pat.Rest, rest)
		}
	}
	walk(root, ty)
}

// expectedSubTypes gives the type each child of pat is checked against,
// Error where the shape does not fit. under must already be Underlying.
func expectedSubTypes(pool *types.Pool, pat *ast.Pattern, under types.Idx) (elems, fields []types.Idx, rest types.Idx) {
	elems = fill(len(pat.Elems), types.Error)
	fields = fill(len(pat.Fields), types.Error)
	rest = types.Error
	switch pat.Kind {
	case ast.PatVariant:
		if _, v, ok := pool.VariantIndex(under, pat.Name); ok && len(v.Fields) == len(pat.Elems) {
			copy(elems, v.Fields)
		}
	case ast.PatTuple:
		if pool.Tag(under) == types.TagTuple {
			if ts := pool.TupleElems(under); len(ts) == len(pat.Elems) {
				copy(elems, ts)
			}
		}
	case ast.PatStruct:
		if pool.Tag(under) == types.TagStruct {
			layout := pool.StructFields(under)
			for i, f := range pat.Fields {
				if j := fieldIndex(layout, f.Name); j >= 0 {
					fields[i] = layout[j].Type
				}
			}
		}
	case ast.PatList:
		if pool.Tag(under) == types.TagList {
			elem := pool.ListElem(under)
			for i := range elems {
				elems[i] = elem
			}
			rest = under
		}
	}
	return elems, fields, rest
}

func fill(n int, v types.Idx) []types.Idx {
	out := make([]types.Idx, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func fieldIndex(layout []types.Field, name source.StringID) int {
	for i, f := range layout {
		if f.Name == name {
			return i
		}
	}
	return -1
}
