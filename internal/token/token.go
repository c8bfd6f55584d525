package token

import (
	"typecore/internal/source"
)

// Token represents a single fragment token with its location.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// IsLiteral reports whether the token can start a literal pattern.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, CharLit, StringLit, KwTrue, KwFalse:
		return true
	default:
		return false
	}
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }

// IsClosing reports whether the token ends a bracketed group.
func (t Token) IsClosing() bool {
	switch t.Kind {
	case RParen, RBrace, RBracket, Gt:
		return true
	default:
		return false
	}
}
