package parser

import (
	"slices"

	"typecore/internal/ast"
	"typecore/internal/diag"
	"typecore/internal/lexer"
	"typecore/internal/source"
	"typecore/internal/token"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter

	// Offset and Limit restrict parsing to File.Content[Offset:Limit].
	// Limit 0 means the end of the file.
	Offset uint32
	Limit  uint32
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

// Parser: состояние парсера на один фрагмент
type Parser struct {
	lx       *lexer.Lexer
	arenas   *ast.Builder
	opts     Options
	lastSpan source.Span // span последнего съеденного токена для лучшей диагностики
	lastKind token.Kind
}

func newParser(file *source.File, arenas *ast.Builder, opts Options) *Parser {
	lx := lexer.NewRange(file, opts.Offset, opts.Limit, opts.Reporter)
	return &Parser{lx: lx, arenas: arenas, opts: opts, lastSpan: lx.EmptySpan()}
}

// ParseType parses file as one type expression. ok is false when any
// error was reported; the returned id is then NoTypeExprID.
func ParseType(file *source.File, arenas *ast.Builder, opts Options) (ast.TypeExprID, bool) {
	p := newParser(file, arenas, opts)
	id, ok := p.parseType()
	if !ok || !p.finish() {
		return ast.NoTypeExprID, false
	}
	return id, true
}

// ParsePattern parses file as one match pattern.
func ParsePattern(file *source.File, arenas *ast.Builder, opts Options) (ast.PatID, bool) {
	p := newParser(file, arenas, opts)
	id, ok := p.parsePattern()
	if !ok || !p.finish() {
		return ast.NoPatID, false
	}
	return id, true
}

// finish requires the fragment to be fully consumed.
func (p *Parser) finish() bool {
	if p.at(token.EOF) {
		return !p.IsError()
	}
	tok := p.lx.Peek()
	p.report(diag.SynUnexpectedToken, diag.SevError, tok.Span, "unexpected "+describe(tok)+" after the end of the fragment", nil)
	return false
}

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.lx.Peek().Kind)
}

func (p *Parser) IsError() bool {
	return p.opts.CurrentErrors != 0
}

// parseIdent: утилита: ожидает Ident и интернирует его.
func (p *Parser) parseIdent(code diag.Code, what string) (source.StringID, source.Span, bool) {
	if p.at(token.Ident) {
		tok := p.advance()
		return p.arenas.Strings.Intern(tok.Text), tok.Span, true
	}
	p.err(code, "expected "+what+", got "+describe(p.lx.Peek()))
	return source.NoStringID, p.getDiagnosticSpan(), false
}

func describe(tok token.Token) string {
	if tok.Text == "" {
		return tok.Kind.String()
	}
	return "\"" + tok.Text + "\""
}
