package parser

import (
	"typecore/internal/ast"
	"typecore/internal/diag"
	"typecore/internal/source"
	"typecore/internal/token"
)

// parsePattern распознаёт паттерны:
//
//	_ | x | literal | -literal
//	Variant(p, ...) | Name { f: p, g, .. }
//	(p, q, ...) | [p, q, ..rest]
func (p *Parser) parsePattern() (ast.PatID, bool) {
	tok := p.lx.Peek()
	pats := p.arenas.Patterns
	switch {
	case tok.Kind == token.Underscore:
		p.advance()
		return pats.NewWildcard(tok.Span), true

	case tok.IsLiteral() || tok.Kind == token.Minus:
		lit, sp, ok := p.parseLiteral()
		if !ok {
			return ast.NoPatID, false
		}
		return pats.NewLiteral(lit, sp), true

	case tok.Kind == token.Ident:
		name, sp, _ := p.parseIdent(diag.SynExpectPattern, "pattern")
		switch {
		case p.at(token.LParen):
			open := p.advance()
			args, ok := p.parsePatternList(token.RParen)
			if !ok {
				return ast.NoPatID, false
			}
			closeTok, ok := p.expectClose(token.RParen, open)
			if !ok {
				return ast.NoPatID, false
			}
			return pats.NewVariant(name, args, sp.Cover(closeTok.Span)), true
		case p.at(token.LBrace):
			return p.parseStructPattern(name, sp)
		}
		return pats.NewBinding(name, sp), true

	case tok.Kind == token.LParen:
		open := p.advance()
		elems, ok := p.parsePatternList(token.RParen)
		if !ok {
			return ast.NoPatID, false
		}
		trailing := p.lastIsComma()
		closeTok, ok := p.expectClose(token.RParen, open)
		if !ok {
			return ast.NoPatID, false
		}
		if len(elems) == 1 && !trailing {
			return elems[0], true
		}
		return pats.NewTuple(elems, open.Span.Cover(closeTok.Span)), true

	case tok.Kind == token.LBracket:
		return p.parseListPattern()
	}
	p.err(diag.SynExpectPattern, "expected pattern, got "+describe(tok))
	return ast.NoPatID, false
}

func (p *Parser) parsePatternList(closing token.Kind) ([]ast.PatID, bool) {
	var out []ast.PatID
	for !p.at(closing) && !p.at(token.EOF) {
		id, ok := p.parsePattern()
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

// parseStructPattern reads `{ f: p, g, .. }` after the struct name. The
// shorthand `g` binds the field to a variable named g.
func (p *Parser) parseStructPattern(name source.StringID, nameSpan source.Span) (ast.PatID, bool) {
	open := p.advance()
	var fields []ast.FieldPat
	hasRest := false
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		if p.at(token.DotDot) {
			p.advance()
			hasRest = true
			break
		}
		field, sp, ok := p.parseIdent(diag.SynExpectPattern, "field name")
		if !ok {
			return ast.NoPatID, false
		}
		var sub ast.PatID
		if p.at(token.Colon) {
			p.advance()
			sub, ok = p.parsePattern()
			if !ok {
				return ast.NoPatID, false
			}
			sp = sp.Cover(p.arenas.Patterns.Get(sub).Span)
		} else {
			sub = p.arenas.Patterns.NewBinding(field, sp)
		}
		fields = append(fields, ast.FieldPat{Name: field, Pat: sub, Span: sp})
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	closeTok, ok := p.expectClose(token.RBrace, open)
	if !ok {
		return ast.NoPatID, false
	}
	return p.arenas.Patterns.NewStruct(name, fields, hasRest, nameSpan.Cover(closeTok.Span)), true
}

// parseListPattern reads `[p, q, ..rest]`. The rest, when present, must be
// last; `..` alone leaves the tail unnamed.
func (p *Parser) parseListPattern() (ast.PatID, bool) {
	open := p.advance()
	var prefix []ast.PatID
	hasRest := false
	rest := ast.NoPatID
	for !p.at(token.RBracket) && !p.at(token.EOF) {
		if p.at(token.DotDot) {
			p.advance()
			hasRest = true
			switch {
			case p.at(token.Ident):
				name, sp, _ := p.parseIdent(diag.SynExpectPattern, "rest binding")
				rest = p.arenas.Patterns.NewBinding(name, sp)
			case p.at(token.Underscore):
				rest = p.arenas.Patterns.NewWildcard(p.advance().Span)
			}
			p.eatTrailingComma()
			break
		}
		id, ok := p.parsePattern()
		if !ok {
			return ast.NoPatID, false
		}
		prefix = append(prefix, id)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	closeTok, ok := p.expectClose(token.RBracket, open)
	if !ok {
		return ast.NoPatID, false
	}
	return p.arenas.Patterns.NewList(prefix, hasRest, rest, open.Span.Cover(closeTok.Span)), true
}

func (p *Parser) eatTrailingComma() {
	if p.at(token.Comma) {
		p.advance()
	}
}
