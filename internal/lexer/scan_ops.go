package lexer

import (
	"typecore/internal/diag"
	"typecore/internal/token"
)

// Жадность: сначала 2-символьные (.., ->), затем 1-символьные.
func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	switch {
	case lx.try2('.', '.'):
		return lx.emit(token.DotDot, start)
	case lx.try2('-', '>'):
		return lx.emit(token.Arrow, start)
	}

	var k token.Kind
	switch lx.cursor.Peek() {
	case '-':
		k = token.Minus
	case '&':
		k = token.Amp
	case '<':
		k = token.Lt
	case '>':
		k = token.Gt
	case ':':
		k = token.Colon
	case ',':
		k = token.Comma
	case '(':
		k = token.LParen
	case ')':
		k = token.RParen
	case '{':
		k = token.LBrace
	case '}':
		k = token.RBrace
	case '[':
		k = token.LBracket
	case ']':
		k = token.RBracket
	case '_':
		k = token.Underscore
	default:
		// неизвестный символ
		lx.bumpRune()
		return lx.invalid(diag.LexUnknownChar, start, "unknown character")
	}
	lx.cursor.Bump()
	return lx.emit(k, start)
}
