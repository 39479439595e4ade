package token

// Kind is the category of a token.
type Kind uint8

const (
	Invalid Kind = iota
	EOF

	Ident
	IntLit
	FloatLit
	StringLit

	KwSet
	KwIf
	KwElse
	KwWhile
	KwFor
	KwFunc
	KwIn
	KwReturn
	KwContinue
	KwBreak
	KwImport
	KwFrom
	KwTrue
	KwFalse
	KwType
	KwIs
	KwAs
	KwAnd
	KwOr

	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	Dot
	Colon
	Semicolon
	Assign
	EqEq
	BangEq
	Lt
	LtEq
	Gt
	GtEq
	Plus
	Minus
	Star
	Slash
	Percent
	Bang
	Pipe
	Amp
)

var kindNames = [...]string{
	Invalid:    "invalid",
	EOF:        "end of file",
	Ident:      "identifier",
	IntLit:     "integer",
	FloatLit:   "float",
	StringLit:  "string",
	KwSet:      "set",
	KwIf:       "if",
	KwElse:     "else",
	KwWhile:    "while",
	KwFor:      "for",
	KwFunc:     "func",
	KwIn:       "in",
	KwReturn:   "return",
	KwContinue: "continue",
	KwBreak:    "break",
	KwImport:   "import",
	KwFrom:     "from",
	KwTrue:     "true",
	KwFalse:    "false",
	KwType:     "type",
	KwIs:       "is",
	KwAs:       "as",
	KwAnd:      "and",
	KwOr:       "or",
	LParen:     "(",
	RParen:     ")",
	LBrace:     "{",
	RBrace:     "}",
	LBracket:   "[",
	RBracket:   "]",
	Comma:      ",",
	Dot:        ".",
	Colon:      ":",
	Semicolon:  ";",
	Assign:     "=",
	EqEq:       "==",
	BangEq:     "!=",
	Lt:         "<",
	LtEq:       "<=",
	Gt:         ">",
	GtEq:       ">=",
	Plus:       "+",
	Minus:      "-",
	Star:       "*",
	Slash:      "/",
	Percent:    "%",
	Bang:       "!",
	Pipe:       "|",
	Amp:        "&",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}
