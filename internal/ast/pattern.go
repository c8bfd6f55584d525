package ast

import (
	"slices"

	"typecore/internal/source"
)

// PatKind enumerates source pattern forms.
type PatKind uint8

const (
	PatWildcard PatKind = iota // _
	PatBinding                 // x (may turn out to be a unit variant)
	PatLiteral                 // 1, true, 'c', "s"
	PatVariant                 // Some(x), Ok(_)
	PatTuple                   // (a, b)
	PatStruct                  // Point { x, y: 0, .. }
	PatList                    // [a, b, ..rest]
)

func (k PatKind) String() string {
	switch k {
	case PatWildcard:
		return "wildcard"
	case PatBinding:
		return "binding"
	case PatLiteral:
		return "literal"
	case PatVariant:
		return "variant"
	case PatTuple:
		return "tuple"
	case PatStruct:
		return "struct"
	case PatList:
		return "list"
	default:
		return "unknown"
	}
}

// LitKind distinguishes literal payloads.
type LitKind uint8

const (
	LitInt LitKind = iota + 1
	LitBool
	LitChar
	LitStr
)

func (k LitKind) String() string {
	switch k {
	case LitInt:
		return "integer"
	case LitBool:
		return "boolean"
	case LitChar:
		return "character"
	case LitStr:
		return "string"
	default:
		return "literal"
	}
}

// Lit is a literal value appearing in a pattern.
type Lit struct {
	Kind LitKind
	Int  int64
	Bool bool
	Char rune
	Str  string
}

func IntLit(v int64) Lit { return Lit{Kind: LitInt, Int: v} }
func BoolLit(v bool) Lit { return Lit{Kind: LitBool, Bool: v} }
func CharLit(v rune) Lit { return Lit{Kind: LitChar, Char: v} }
func StrLit(v string) Lit { return Lit{Kind: LitStr, Str: v} }

// FieldPat is one `name: pattern` entry of a struct pattern. Shorthand
// `name` is a FieldPat whose Pat is a binding of the same name.
type FieldPat struct {
	Name source.StringID
	Pat  PatID
	Span source.Span
}

// Pattern is one node of a source pattern.
type Pattern struct {
	Kind PatKind
	Span source.Span

	// Binding, Variant and Struct
	Name source.StringID
	// Literal
	Lit Lit
	// Variant payload, Tuple elements, List prefix
	Elems []PatID
	// Struct
	Fields []FieldPat
	// Struct and List: `..` present. For lists Rest is the binding or
	// wildcard standing for the tail, NoPatID when the tail is unnamed.
	HasRest bool
	Rest    PatID
}

// Patterns owns the pattern nodes of one file or fixture.
type Patterns struct {
	Arena *Arena[Pattern]
}

func NewPatterns(capHint uint) *Patterns {
	return &Patterns{Arena: NewArena[Pattern](capHint)}
}

func (p *Patterns) new(pat Pattern) PatID {
	return PatID(p.Arena.Allocate(pat))
}

// Get returns the node for id, nil for NoPatID.
func (p *Patterns) Get(id PatID) *Pattern {
	if !id.IsValid() {
		return nil
	}
	return p.Arena.Get(uint32(id))
}

func (p *Patterns) Len() uint32 {
	return p.Arena.Len()
}

func (p *Patterns) NewWildcard(span source.Span) PatID {
	return p.new(Pattern{Kind: PatWildcard, Span: span})
}

func (p *Patterns) NewBinding(name source.StringID, span source.Span) PatID {
	return p.new(Pattern{Kind: PatBinding, Span: span, Name: name})
}

func (p *Patterns) NewLiteral(lit Lit, span source.Span) PatID {
	return p.new(Pattern{Kind: PatLiteral, Span: span, Lit: lit})
}

func (p *Patterns) NewVariant(name source.StringID, args []PatID, span source.Span) PatID {
	return p.new(Pattern{Kind: PatVariant, Span: span, Name: name, Elems: slices.Clone(args)})
}

func (p *Patterns) NewTuple(elems []PatID, span source.Span) PatID {
	return p.new(Pattern{Kind: PatTuple, Span: span, Elems: slices.Clone(elems)})
}

func (p *Patterns) NewStruct(name source.StringID, fields []FieldPat, hasRest bool, span source.Span) PatID {
	return p.new(Pattern{Kind: PatStruct, Span: span, Name: name, Fields: slices.Clone(fields), HasRest: hasRest})
}

func (p *Patterns) NewList(prefix []PatID, hasRest bool, rest PatID, span source.Span) PatID {
	return p.new(Pattern{Kind: PatList, Span: span, Elems: slices.Clone(prefix), HasRest: hasRest, Rest: rest})
}

// Walk visits id and its sub-patterns in preorder: variant payload, tuple
// and list elements left to right, struct fields in source order, then the
// list rest. The visit order defines the position numbers used to key
// per-occurrence tables.
func (p *Patterns) Walk(id PatID, visit func(pos int, id PatID, pat *Pattern)) {
	pos := 0
	var walk func(PatID)
	walk = func(cur PatID) {
		pat := p.Get(cur)
		if pat == nil {
			return
		}
		visit(pos, cur, pat)
		pos++
		for _, e := range pat.Elems {
			walk(e)
		}
		for _, f := range pat.Fields {
			walk(f.Pat)
		}
		if pat.Rest.IsValid() {
			walk(pat.Rest)
		}
	}
	walk(id)
}
