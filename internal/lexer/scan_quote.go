package lexer

import (
	"typecore/internal/diag"
	"typecore/internal/token"
)

// scanString reads "..."; escapes are validated by the parser when it
// unquotes the literal.
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening '"'
	for !lx.cursor.EOF() {
		switch lx.cursor.Peek() {
		case '"':
			lx.cursor.Bump()
			return lx.emit(token.StringLit, start)
		case '\\':
			lx.cursor.Bump()
			if lx.cursor.EOF() {
				return lx.invalid(diag.LexUnterminatedString, start, "unterminated string literal")
			}
			lx.cursor.Bump()
		case '\n':
			return lx.invalid(diag.LexUnterminatedString, start, "newline in string literal")
		default:
			lx.cursor.Bump()
		}
	}
	return lx.invalid(diag.LexUnterminatedString, start, "unterminated string literal")
}

// scanQuote reads either a character literal 'c' / '\n' or a lifetime 'a.
// 'a followed by a closing quote is the character.
func (lx *Lexer) scanQuote() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // '\''
	if lx.cursor.Peek() == '\\' {
		lx.cursor.Bump()
		lx.bumpRune()
		for !lx.cursor.EOF() && lx.cursor.Peek() != '\'' && lx.cursor.Peek() != ' ' {
			lx.bumpRune()
		}
		if !lx.cursor.Eat('\'') {
			return lx.invalid(diag.LexBadChar, start, "unterminated character literal")
		}
		return lx.emit(token.CharLit, start)
	}
	body := lx.cursor.Mark()
	_, sz := lx.peekRune()
	if sz == 0 || lx.cursor.Peek() == '\'' {
		lx.cursor.Eat('\'')
		return lx.invalid(diag.LexBadChar, start, "empty character literal")
	}
	lx.bumpRune()
	if lx.cursor.Eat('\'') {
		return lx.emit(token.CharLit, start)
	}
	lx.cursor.Reset(body)
	if lx.scanIdentBody() {
		return lx.emit(token.Lifetime, start)
	}
	lx.bumpRune()
	return lx.invalid(diag.LexBadChar, start, "unterminated character literal")
}
