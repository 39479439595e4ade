package diag

import (
	"errors"
	"fmt"

	"vsharp/internal/source"
)

// Kind classifies an Error.
type Kind uint8

const (
	KindParse Kind = iota + 1
	KindCompile
	KindType
	KindConstEval
	KindBuild
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse error"
	case KindCompile:
		return "compilation error"
	case KindType:
		return "type error"
	case KindConstEval:
		return "constant evaluation error"
	case KindBuild:
		return "build error"
	}
	return "error"
}

// Error is the single failure a phase reports for a module.
type Error struct {
	Kind   Kind
	Code   Code
	Span   source.Span
	Msg    string
	Module string // filled in by the orchestrator
}

func (e *Error) Error() string {
	if e.Module != "" {
		return fmt.Sprintf("%s: %s %s: %s", e.Module, e.Kind, e.Code.ID(), e.Msg)
	}
	return fmt.Sprintf("%s %s: %s", e.Kind, e.Code.ID(), e.Msg)
}

// Diagnostic converts the error for rendering.
func (e *Error) Diagnostic() Diagnostic {
	return NewError(e.Code, e.Span, e.Msg)
}

func Errorf(kind Kind, code Code, span source.Span, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Span: span, Msg: fmt.Sprintf(format, args...)}
}

func ParseErrorf(code Code, span source.Span, format string, args ...any) *Error {
	return Errorf(KindParse, code, span, format, args...)
}

func CompileErrorf(code Code, span source.Span, format string, args ...any) *Error {
	return Errorf(KindCompile, code, span, format, args...)
}

func TypeErrorf(code Code, span source.Span, format string, args ...any) *Error {
	return Errorf(KindType, code, span, format, args...)
}

func ConstEvalErrorf(code Code, span source.Span, format string, args ...any) *Error {
	return Errorf(KindConstEval, code, span, format, args...)
}

func BuildErrorf(code Code, span source.Span, format string, args ...any) *Error {
	return Errorf(KindBuild, code, span, format, args...)
}

// AsError unwraps err into a *Error.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// IsKind reports whether err carries a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	de, ok := AsError(err)
	return ok && de.Kind == kind
}
