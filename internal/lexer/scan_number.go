package lexer

import (
	"typecore/internal/diag"
	"typecore/internal/token"
)

// Поддержка: 0, 123, 1_000, 0b..., 0o..., 0x.... Знак разбирается парсером.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	digit := isDec
	prefixed := false
	if lx.cursor.Peek() == '0' {
		lx.cursor.Bump()
		switch lx.cursor.Peek() {
		case 'b', 'B':
			digit = func(b byte) bool { return b == '0' || b == '1' }
			prefixed = true
			lx.cursor.Bump()
		case 'o', 'O':
			digit = func(b byte) bool { return b >= '0' && b <= '7' }
			prefixed = true
			lx.cursor.Bump()
		case 'x', 'X':
			digit = isHex
			prefixed = true
			lx.cursor.Bump()
		}
	}
	n := 0
	for {
		b := lx.cursor.Peek()
		if b == '_' {
			lx.cursor.Bump()
			continue
		}
		if !digit(b) {
			break
		}
		lx.cursor.Bump()
		n++
	}
	if prefixed && n == 0 {
		return lx.invalid(diag.LexBadNumber, start, "expected digits after base prefix")
	}
	// 1.5 and 1x have no meaning in a pattern
	if b := lx.cursor.Peek(); isIdentContinueByte(b) || (b == '.' && !lx.atDotDot()) {
		for isIdentContinueByte(lx.cursor.Peek()) || (lx.cursor.Peek() == '.' && !lx.atDotDot()) {
			lx.cursor.Bump()
		}
		return lx.invalid(diag.LexBadNumber, start, "malformed integer literal")
	}
	return lx.emit(token.IntLit, start)
}

func (lx *Lexer) atDotDot() bool {
	b0, b1, ok := lx.cursor.Peek2()
	return ok && b0 == '.' && b1 == '.'
}
