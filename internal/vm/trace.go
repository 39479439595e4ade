package vm

import (
	"fmt"
	"io"

	"vsharp/internal/bytecode"
	"vsharp/internal/source"
)

// Tracer outputs execution traces for debugging. A nil Tracer is inert.
type Tracer struct {
	w     io.Writer
	files *source.FileSet
}

// NewTracer creates a new tracer that writes to w.
func NewTracer(w io.Writer, files *source.FileSet) *Tracer {
	return &Tracer{w: w, files: files}
}

// traceInstr traces execution of an instruction.
// Format: [depth=N] <func>@<pc> <op> <a> <b> @ <file>:<line>:<col>
func (t *Tracer) traceInstr(depth int, f *frame, in bytecode.Instr) {
	if t == nil || t.w == nil {
		return
	}
	fmt.Fprintf(t.w, "[depth=%d] %s@%d %s %d %d @ %s\n",
		depth, f.fn.Qualified(), f.pc-1, in.Op, in.A, in.B, formatSpan(f.span(), t.files))
}

// traceWrite records a local slot store.
func (t *Tracer) traceWrite(slot int32, v any) {
	if t == nil || t.w == nil {
		return
	}
	fmt.Fprintf(t.w, "    write L%d = %s\n", slot, Format(v))
}
