package token

// Kind represents the category of a fragment token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the fragment.
	EOF

	// Ident represents an identifier token.
	Ident
	// Lifetime represents a lifetime tag such as 'a.
	Lifetime
	// KwFn represents the 'fn' keyword.
	KwFn // fn
	// KwTrue represents the 'true' keyword.
	KwTrue // true
	// KwFalse represents the 'false' keyword.
	KwFalse // false

	// IntLit represents an integer literal, optionally signed.
	IntLit
	// CharLit represents a quoted character literal.
	CharLit
	// StringLit represents a double-quoted string literal.
	StringLit

	Minus      // -
	Amp        // &
	Lt         // <
	Gt         // >
	Colon      // :
	Comma      // ,
	DotDot     // ..
	Arrow      // ->
	LParen     // (
	RParen     // )
	LBrace     // {
	RBrace     // }
	LBracket   // [
	RBracket   // ]
	Underscore // _
)

var kindNames = [...]string{
	Invalid:    "invalid",
	EOF:        "end of input",
	Ident:      "identifier",
	Lifetime:   "lifetime",
	KwFn:       "'fn'",
	KwTrue:     "'true'",
	KwFalse:    "'false'",
	IntLit:     "integer literal",
	CharLit:    "character literal",
	StringLit:  "string literal",
	Minus:      "'-'",
	Amp:        "'&'",
	Lt:         "'<'",
	Gt:         "'>'",
	Colon:      "':'",
	Comma:      "','",
	DotDot:     "'..'",
	Arrow:      "'->'",
	LParen:     "'('",
	RParen:     "')'",
	LBrace:     "'{'",
	RBrace:     "'}'",
	LBracket:   "'['",
	RBracket:   "']'",
	Underscore: "'_'",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}
