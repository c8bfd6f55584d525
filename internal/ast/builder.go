package ast

import "typecore/internal/source"

// Builder groups the arenas a fragment parser writes into, together with
// the name interner they share.
type Builder struct {
	Strings  *source.Interner
	Patterns *Patterns
	Types    *TypeExprs
	Guards   *Guards
}

// NewBuilder returns a builder over strings; a nil interner gets a private one.
func NewBuilder(strings *source.Interner) *Builder {
	if strings == nil {
		strings = source.NewInterner()
	}
	return &Builder{
		Strings:  strings,
		Patterns: NewPatterns(64),
		Types:    NewTypeExprs(64),
		Guards:   NewGuards(8),
	}
}
