package vm

import (
	"fmt"
	"strings"

	"vsharp/internal/source"
)

// PanicCode identifies the type of VM panic.
type PanicCode int

// Stable panic codes - do not change values.
const (
	PanicTypeMismatch  PanicCode = 1003 // VM1003: type mismatch
	PanicOutOfBounds   PanicCode = 1004 // VM1004: out of bounds
	PanicDivByZero     PanicCode = 1007 // VM1007: integer division by zero
	PanicNullAccess    PanicCode = 1008 // VM1008: property access on null
	PanicStackOverflow PanicCode = 1009 // VM1009: call depth exceeded
	PanicNative        PanicCode = 1010 // VM1010: native function failed
	PanicBadProgram    PanicCode = 1011 // VM1011: malformed program
	PanicUnimplemented PanicCode = 1999 // VM1999: unimplemented opcode
)

// String returns the code as "VM1003".
func (c PanicCode) String() string {
	return fmt.Sprintf("VM%d", c)
}

// BacktraceFrame represents one frame in the panic backtrace.
type BacktraceFrame struct {
	FuncName string
	Span     source.Span
}

// VMError is a runtime panic raised while executing a program.
type VMError struct {
	Code      PanicCode
	Message   string
	Span      source.Span
	Backtrace []BacktraceFrame // top to bottom
	Cause     error
}

func (p *VMError) Error() string {
	return fmt.Sprintf("panic %s: %s", p.Code, p.Message)
}

func (p *VMError) Unwrap() error { return p.Cause }

// FormatWithFiles formats the panic with resolved file:line:col information.
func (p *VMError) FormatWithFiles(files *source.FileSet) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "panic %s: %s\n", p.Code, p.Message)
	sb.WriteString("at ")
	sb.WriteString(formatSpan(p.Span, files))
	sb.WriteString("\n")
	if len(p.Backtrace) > 0 {
		sb.WriteString("backtrace:\n")
		for i, frame := range p.Backtrace {
			fmt.Fprintf(&sb, "  %d: %s at %s\n", i, frame.FuncName, formatSpan(frame.Span, files))
		}
	}
	return sb.String()
}

// formatSpan formats a span as "file:line:col" or "<no-span>".
func formatSpan(span source.Span, files *source.FileSet) string {
	if files == nil || (span.Start == 0 && span.End == 0) {
		return "<no-span>"
	}
	file := files.Get(span.File)
	if file == nil {
		return "<no-span>"
	}
	start, _ := files.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", file.Path, start.Line, start.Col)
}

func (m *Machine) makeError(code PanicCode, msg string) *VMError {
	e := &VMError{Code: code, Message: msg}
	if n := len(m.frames); n > 0 {
		e.Span = m.frames[n-1].span()
		e.Backtrace = make([]BacktraceFrame, n)
		for i := n - 1; i >= 0; i-- {
			f := &m.frames[i]
			e.Backtrace[n-1-i] = BacktraceFrame{FuncName: f.fn.Qualified(), Span: f.span()}
		}
	}
	return e
}

func (m *Machine) typeMismatch(expected string, got any) *VMError {
	return m.makeError(PanicTypeMismatch, fmt.Sprintf("expected %s, got %s", expected, describe(got)))
}

func (m *Machine) outOfBounds(index int64, length int) *VMError {
	return m.makeError(PanicOutOfBounds, fmt.Sprintf("index %d out of bounds for length %d", index, length))
}

func (m *Machine) badProgram(format string, args ...any) *VMError {
	return m.makeError(PanicBadProgram, fmt.Sprintf(format, args...))
}
