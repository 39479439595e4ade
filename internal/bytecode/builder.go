package bytecode

import (
	"fmt"

	"fortio.org/safecast"

	"vsharp/internal/source"
)

// Label is a forward-referencable code position.
type Label int

type fixup struct {
	pc    int
	label Label
}

// FuncBuilder appends instructions to one function and patches branch
// targets once every label is placed.
type FuncBuilder struct {
	fn       *Function
	labels   []int
	fixups   []fixup
	consts   map[Const]int32
	patterns map[string]int32
	span     source.Span
}

func NewFuncBuilder(module, name string, arity, locals int) *FuncBuilder {
	return &FuncBuilder{
		fn:       &Function{Name: name, Module: module, Arity: arity, Locals: locals},
		consts:   make(map[Const]int32),
		patterns: make(map[string]int32),
	}
}

func index32(n int, what string) int32 {
	v, err := safecast.Conv[int32](n)
	if err != nil {
		panic(fmt.Errorf("%s index overflow: %w", what, err))
	}
	return v
}

// At sets the span recorded for the instructions emitted next.
func (b *FuncBuilder) At(sp source.Span) { b.span = sp }

// Span is the span recorded for the next instruction.
func (b *FuncBuilder) Span() source.Span { return b.span }

// PC is the index of the next instruction.
func (b *FuncBuilder) PC() int { return len(b.fn.Code) }

func (b *FuncBuilder) Emit(op Op, a, bop int32) int {
	b.fn.Code = append(b.fn.Code, Instr{Op: op, A: a, B: bop})
	b.fn.Spans = append(b.fn.Spans, b.span)
	return len(b.fn.Code) - 1
}

// Const emits a push of c, sharing pool entries.
func (b *FuncBuilder) Const(c Const) int {
	idx, ok := b.consts[c]
	if !ok {
		idx = index32(len(b.fn.Consts), "constant")
		b.fn.Consts = append(b.fn.Consts, c)
		b.consts[c] = idx
	}
	return b.Emit(OpConst, idx, 0)
}

// Pattern interns a type test pattern.
func (b *FuncBuilder) Pattern(p TypePattern) int32 {
	key := fmt.Sprintf("%+v", p)
	if idx, ok := b.patterns[key]; ok {
		return idx
	}
	idx := index32(len(b.fn.Patterns), "pattern")
	b.fn.Patterns = append(b.fn.Patterns, p)
	b.patterns[key] = idx
	return idx
}

func (b *FuncBuilder) NewLabel() Label {
	b.labels = append(b.labels, -1)
	return Label(len(b.labels) - 1)
}

// Mark places l at the next instruction.
func (b *FuncBuilder) Mark(l Label) {
	if b.labels[l] >= 0 {
		panic(fmt.Errorf("label %d placed twice", l))
	}
	b.labels[l] = b.PC()
}

// Jump emits a branch to l.
func (b *FuncBuilder) Jump(op Op, l Label) int {
	if !op.IsJump() {
		panic(fmt.Errorf("%s is not a branch", op))
	}
	pc := b.Emit(op, -1, 0)
	b.fixups = append(b.fixups, fixup{pc: pc, label: l})
	return pc
}

// Finish patches branches and returns the function.
func (b *FuncBuilder) Finish() (*Function, error) {
	for _, f := range b.fixups {
		target := b.labels[f.label]
		if target < 0 {
			return nil, fmt.Errorf("%s: label %d was never placed", b.fn.Qualified(), f.label)
		}
		b.fn.Code[f.pc].A = index32(target, "branch target")
	}
	b.fixups = nil
	return b.fn, nil
}
