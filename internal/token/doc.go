// Package token defines the token kinds of type and pattern fragments.
// Invariants:
//   - Token.Text is the exact source slice covered by Token.Span.
//   - Built-in type names (Int, List, Option, ...) are identifiers; they are
//     recognised by the fixture resolver, not the lexer.
//   - A lifetime ('a) and a character literal ('a') are distinct kinds.
package token
