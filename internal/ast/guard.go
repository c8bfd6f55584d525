package ast

import "typecore/internal/source"

// Guard is the `if <expr>` of a match arm. The type core never looks inside
// it; it only carries the id through the decision tree.
type Guard struct {
	Text string
	Span source.Span
}

// Guards owns the guard expressions of one file or fixture.
type Guards struct {
	Arena *Arena[Guard]
}

func NewGuards(capHint uint) *Guards {
	return &Guards{Arena: NewArena[Guard](capHint)}
}

func (g *Guards) New(text string, span source.Span) ExprID {
	return ExprID(g.Arena.Allocate(Guard{Text: text, Span: span}))
}

func (g *Guards) Get(id ExprID) *Guard {
	if !id.IsValid() {
		return nil
	}
	return g.Arena.Get(uint32(id))
}
