package pattern

import (
	"typecore/internal/ast"
	"typecore/internal/source"
	"typecore/internal/types"
)

// Kind discriminates flattened patterns.
type Kind uint8

const (
	Wildcard Kind = iota
	Binding
	Literal
	Variant
	Tuple
	Struct
	List
)

func (k Kind) String() string {
	switch k {
	case Wildcard:
		return "wildcard"
	case Binding:
		return "binding"
	case Literal:
		return "literal"
	case Variant:
		return "variant"
	case Tuple:
		return "tuple"
	case Struct:
		return "struct"
	case List:
		return "list"
	default:
		return "unknown"
	}
}

// Flat is the canonical, type-checked form of one pattern occurrence.
//
// Subs holds the variant payload, the tuple elements, the struct fields in
// declaration order (fields the source omitted are wildcards) or the list
// prefix. A list with `..` carries its tail in Rest, typed as the list
// itself; Rest is nil for an exact-length list.
type Flat struct {
	Kind  Kind
	Name  source.StringID
	Lit   ast.Lit
	Index int
	Subs  []Flat
	Rest  *Flat
	Type  types.Idx
	Span  source.Span
}

// Wild is a wildcard of type ty.
func Wild(ty types.Idx) Flat {
	return Flat{Kind: Wildcard, Type: ty}
}

// Bind is a binding of name with type ty.
func Bind(name source.StringID, ty types.Idx) Flat {
	return Flat{Kind: Binding, Name: name, Type: ty}
}

// IsWild reports whether f matches every value without a test.
func (f Flat) IsWild() bool {
	return f.Kind == Wildcard || f.Kind == Binding
}

// HasRest reports whether a list pattern accepts a longer list.
func (f Flat) HasRest() bool {
	return f.Rest != nil
}

// Wilds builds n wildcards typed by tys.
func Wilds(tys []types.Idx) []Flat {
	out := make([]Flat, len(tys))
	for i, t := range tys {
		out[i] = Wild(t)
	}
	return out
}
