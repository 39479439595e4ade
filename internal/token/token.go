package token

import "vsharp/internal/source"

// Token is one lexeme. NewlineBefore is set when a line break separates it
// from the previous token; the parser uses it to keep `f\n(x)` from being a call.
type Token struct {
	Kind          Kind
	Span          source.Span
	Text          string
	NewlineBefore bool
}

var keywords = map[string]Kind{
	"set":      KwSet,
	"if":       KwIf,
	"else":     KwElse,
	"while":    KwWhile,
	"for":      KwFor,
	"func":     KwFunc,
	"in":       KwIn,
	"return":   KwReturn,
	"continue": KwContinue,
	"break":    KwBreak,
	"import":   KwImport,
	"from":     KwFrom,
	"true":     KwTrue,
	"false":    KwFalse,
	"type":     KwType,
	"is":       KwIs,
	"as":       KwAs,
	"and":      KwAnd,
	"or":       KwOr,
}

// LookupKeyword maps an identifier spelling to its keyword kind.
func LookupKeyword(s string) (Kind, bool) {
	k, ok := keywords[s]
	return k, ok
}

// IsKeyword reports whether k is a reserved word.
func (k Kind) IsKeyword() bool {
	return k >= KwSet && k <= KwOr
}
