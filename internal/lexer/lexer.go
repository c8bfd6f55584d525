package lexer

import (
	"typecore/internal/diag"
	"typecore/internal/source"
	"typecore/internal/token"
)

// Lexer splits a type or pattern fragment into tokens. Whitespace is skipped;
// fragments carry no comments.
type Lexer struct {
	file     *source.File
	cursor   Cursor
	reporter diag.Reporter
	look     *token.Token // 1 элементный буфер для токена
}

// New returns a lexer over file. reporter may be nil; errors are then
// dropped and lexing continues.
func New(file *source.File, reporter diag.Reporter) *Lexer {
	return &Lexer{file: file, cursor: NewCursor(file), reporter: reporter}
}

// NewRange lexes only file.Content[start:end]. Spans stay file-relative, so
// a fragment embedded in a larger file reports at its real position.
func NewRange(file *source.File, start, end uint32, reporter diag.Reporter) *Lexer {
	c := NewCursor(file)
	if end == 0 || end > c.Limit {
		end = c.Limit
	}
	if start > end {
		start = end
	}
	c.Off, c.Limit = start, end
	return &Lexer{file: file, cursor: c, reporter: reporter}
}

// Next возвращает следующий токен. После EOF всегда возвращает EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}

	lx.skipSpace()
	if lx.cursor.EOF() {
		return token.Token{Kind: token.EOF, Span: lx.EmptySpan()}
	}

	ch := lx.cursor.Peek()
	switch {
	case ch == '_':
		b0, b1, ok := lx.cursor.Peek2()
		if ok && b0 == '_' && isIdentContinueByte(b1) {
			return lx.scanIdentOrKeyword()
		}
		return lx.scanOperatorOrPunct()
	case isIdentStartByte(ch), ch >= utf8RuneSelf:
		return lx.scanIdentOrKeyword()
	case isDec(ch):
		return lx.scanNumber()
	case ch == '"':
		return lx.scanString()
	case ch == '\'':
		return lx.scanQuote()
	default:
		return lx.scanOperatorOrPunct()
	}
}

// Peek возвращает следующий токен, не потребляя его.
func (lx *Lexer) Peek() token.Token {
	t := lx.Next()
	lx.look = &t
	return t
}

// EmptySpan is the zero-width span at the current offset.
func (lx *Lexer) EmptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

// Tokens lexes the whole fragment, EOF excluded.
func (lx *Lexer) Tokens() []token.Token {
	var out []token.Token
	for {
		tok := lx.Next()
		if tok.Kind == token.EOF {
			return out
		}
		out = append(out, tok)
	}
}

func (lx *Lexer) skipSpace() {
	for !lx.cursor.EOF() {
		switch lx.cursor.Peek() {
		case ' ', '\t', '\n', '\r':
			lx.cursor.Bump()
		default:
			return
		}
	}
}

func (lx *Lexer) errLex(code diag.Code, sp source.Span, msg string) {
	if lx.reporter != nil {
		diag.ReportError(lx.reporter, code, sp, msg).Emit()
	}
}

func (lx *Lexer) emit(k token.Kind, start Mark) token.Token {
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: k, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

func (lx *Lexer) invalid(code diag.Code, start Mark, msg string) token.Token {
	tok := lx.emit(token.Invalid, start)
	lx.errLex(code, tok.Span, msg)
	return tok
}
