package reader

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	TOKEOF TokenType = iota // sentinel: end of input

	LPAREN // (
	RPAREN // )
	QUOTE  // '

	SYMBOL  // any non-delimiter atom that isn't a number, e.g. foo, +, set!
	INTEGER // decimal integer literal, e.g. 42, -7
	STRING  // string literal "..."
	TRUE    // #t
	FALSE   // #f
)

// Token is a single lexed unit together with the source line it started on.
type Token struct {
	Type   TokenType
	Lexeme string
	Line   int
}
