package parser

import (
	"strconv"
	"unicode/utf8"

	"typecore/internal/ast"
	"typecore/internal/diag"
	"typecore/internal/source"
	"typecore/internal/token"
)

// parseLiteral reads one literal pattern. Integers take an optional leading
// minus; character and string escapes follow Go quoting rules.
func (p *Parser) parseLiteral() (ast.Lit, source.Span, bool) {
	tok := p.advance()
	switch tok.Kind {
	case token.KwTrue, token.KwFalse:
		return ast.BoolLit(tok.Kind == token.KwTrue), tok.Span, true

	case token.Minus:
		num, ok := p.expect(token.IntLit, diag.SynExpectPattern, "expected integer after '-'")
		if !ok {
			return ast.Lit{}, tok.Span, false
		}
		sp := tok.Span.Cover(num.Span)
		v, err := strconv.ParseInt("-"+num.Text, 0, 64)
		if err != nil {
			p.report(diag.LexBadNumber, diag.SevError, sp, "integer literal out of range", nil)
			return ast.Lit{}, sp, false
		}
		return ast.IntLit(v), sp, true

	case token.IntLit:
		v, err := strconv.ParseInt(tok.Text, 0, 64)
		if err != nil {
			p.report(diag.LexBadNumber, diag.SevError, tok.Span, "integer literal out of range", nil)
			return ast.Lit{}, tok.Span, false
		}
		return ast.IntLit(v), tok.Span, true

	case token.CharLit:
		s, err := strconv.Unquote(tok.Text)
		if err != nil || utf8.RuneCountInString(s) != 1 {
			p.report(diag.LexBadChar, diag.SevError, tok.Span, "invalid character literal "+tok.Text, nil)
			return ast.Lit{}, tok.Span, false
		}
		r, _ := utf8.DecodeRuneInString(s)
		return ast.CharLit(r), tok.Span, true

	case token.StringLit:
		s, err := strconv.Unquote(tok.Text)
		if err != nil {
			p.report(diag.LexUnterminatedString, diag.SevError, tok.Span, "invalid string literal "+tok.Text, nil)
			return ast.Lit{}, tok.Span, false
		}
		return ast.StrLit(s), tok.Span, true
	}
	p.report(diag.SynExpectPattern, diag.SevError, tok.Span, "expected literal, got "+describe(tok), nil)
	return ast.Lit{}, tok.Span, false
}
