package vm

import (
	"vsharp/internal/bytecode"
	"vsharp/internal/source"
)

// frame is a function activation record.
type frame struct {
	fn     *bytecode.Function
	pc     int // next instruction
	args   []any
	locals []any
	base   int // operand stack height on entry
}

// span locates the instruction being executed.
func (f *frame) span() source.Span {
	pc := f.pc - 1
	if pc < 0 || pc >= len(f.fn.Spans) {
		return source.Span{}
	}
	return f.fn.Spans[pc]
}
