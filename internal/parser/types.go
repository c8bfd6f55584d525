package parser

import (
	"typecore/internal/ast"
	"typecore/internal/diag"
	"typecore/internal/source"
	"typecore/internal/token"
)

// parseType распознаёт типовые выражения:
//
//	Name | Name<T, ...>
//	() | (T) | (T, U, ...)
//	fn(T, ...) -> R
//	&T | &'a T
func (p *Parser) parseType() (ast.TypeExprID, bool) {
	start := p.lx.Peek()
	switch start.Kind {
	case token.Ident:
		name, sp, _ := p.parseIdent(diag.SynExpectType, "type")
		var args []ast.TypeExprID
		if p.at(token.Lt) {
			open := p.advance()
			list, ok := p.parseTypeList(token.Gt)
			if !ok {
				return ast.NoTypeExprID, false
			}
			if len(list) == 0 {
				p.report(diag.SynExpectType, diag.SevError, p.lastSpan, "empty generic argument list", nil)
				return ast.NoTypeExprID, false
			}
			closeTok, ok := p.expectClose(token.Gt, open)
			if !ok {
				return ast.NoTypeExprID, false
			}
			args = list
			sp = sp.Cover(closeTok.Span)
		}
		return p.arenas.Types.NewName(name, args, sp), true

	case token.LParen:
		open := p.advance()
		elems, ok := p.parseTypeList(token.RParen)
		if !ok {
			return ast.NoTypeExprID, false
		}
		trailing := p.lastIsComma()
		closeTok, ok := p.expectClose(token.RParen, open)
		if !ok {
			return ast.NoTypeExprID, false
		}
		if len(elems) == 1 && !trailing {
			return elems[0], true
		}
		return p.arenas.Types.NewTuple(elems, open.Span.Cover(closeTok.Span)), true

	case token.KwFn:
		p.advance()
		open, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after 'fn'")
		if !ok {
			return ast.NoTypeExprID, false
		}
		params, ok := p.parseTypeList(token.RParen)
		if !ok {
			return ast.NoTypeExprID, false
		}
		closeTok, ok := p.expectClose(token.RParen, open)
		if !ok {
			return ast.NoTypeExprID, false
		}
		sp := start.Span.Cover(closeTok.Span)
		result := ast.NoTypeExprID
		if p.at(token.Arrow) {
			p.advance()
			result, ok = p.parseType()
			if !ok {
				return ast.NoTypeExprID, false
			}
			sp = sp.Cover(p.arenas.Types.Get(result).Span)
		}
		return p.arenas.Types.NewFn(params, result, sp), true

	case token.Amp:
		p.advance()
		lifetime := source.NoStringID
		if p.at(token.Lifetime) {
			tok := p.advance()
			lifetime = p.arenas.Strings.Intern(tok.Text[1:])
		}
		inner, ok := p.parseType()
		if !ok {
			return ast.NoTypeExprID, false
		}
		sp := start.Span.Cover(p.arenas.Types.Get(inner).Span)
		return p.arenas.Types.NewRef(lifetime, inner, sp), true
	}
	p.err(diag.SynExpectType, "expected type, got "+describe(start))
	return ast.NoTypeExprID, false
}

// parseTypeList reads comma separated types up to, not including, closing.
// A trailing comma is accepted.
func (p *Parser) parseTypeList(closing token.Kind) ([]ast.TypeExprID, bool) {
	var out []ast.TypeExprID
	for !p.at(closing) && !p.at(token.EOF) {
		id, ok := p.parseType()
		if !ok {
			return nil, false
		}
		out = append(out, id)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	return out, true
}
