package parser

import (
	"typecore/internal/diag"
	"typecore/internal/source"
	"typecore/internal/token"
)

// lastIsComma reports whether the last consumed token was a comma, which
// turns `(T,)` into a one-element tuple.
func (p *Parser) lastIsComma() bool {
	return p.lastKind == token.Comma
}

// advance: съедает следующий токен и обновляет lastSpan
func (p *Parser) advance() token.Token {
	tok := p.lx.Next()
	if tok.Kind != token.EOF && tok.Kind != token.Invalid {
		p.lastSpan = tok.Span
		p.lastKind = tok.Kind
	}
	return tok
}

// getDiagnosticSpan: возвращает лучший span для диагностики.
// На EOF указываем на позицию сразу после последнего токена.
func (p *Parser) getDiagnosticSpan() source.Span {
	peek := p.lx.Peek()
	if peek.Kind == token.EOF && p.lastSpan.End > 0 {
		return source.Span{File: p.lastSpan.File, Start: p.lastSpan.End, End: p.lastSpan.End}
	}
	return peek.Span
}

// expect: ожидаем конкретный токен. Если нет, репортим и возвращаем (invalid,false).
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	diagSpan := p.getDiagnosticSpan()
	p.report(code, diag.SevError, diagSpan, msg+", got "+describe(p.lx.Peek()), nil)
	return token.Token{Kind: token.Invalid, Span: diagSpan}, false
}

// expectClose reports an unclosed group with a note at the opening token.
func (p *Parser) expectClose(k token.Kind, open token.Token) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	sp := p.getDiagnosticSpan()
	notes := []diag.Note{{Span: open.Span, Msg: "group opened here"}}
	p.report(diag.SynUnclosedDelimiter, diag.SevError, sp, "expected "+k.String()+", got "+describe(p.lx.Peek()), notes)
	return token.Token{Kind: token.Invalid, Span: sp}, false
}

// репортует ошибку и передает текущий спан
func (p *Parser) err(code diag.Code, msg string) bool {
	return p.report(code, diag.SevError, p.getDiagnosticSpan(), msg, nil)
}

// report counts errors and forwards up to MaxErrors of them. An invalid
// token was already reported by the lexer, so errors at it stay silent.
func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string, notes []diag.Note) bool {
	if sev == diag.SevError {
		p.opts.CurrentErrors++
	}
	if p.opts.Reporter == nil || p.at(token.Invalid) {
		return false
	}
	if p.opts.MaxErrors != 0 && p.opts.CurrentErrors > p.opts.MaxErrors {
		return false
	}
	p.opts.Reporter.Report(code, sev, sp, msg, notes)
	return true
}
