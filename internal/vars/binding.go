package vars

import (
	"vsharp/internal/ir"
	"vsharp/internal/source"
	"vsharp/internal/types"
)

// Binding is where a variable currently lives.
type Binding interface {
	Type() types.Tp
	Load(sp source.Span) ir.Typed
	Store(value ir.Typed) *ir.StoreVar
}

// slotBinding is an ordinary local. Storing a value of another type moves
// the variable to a fresh slot of that type.
type slotBinding struct {
	alloc *Allocator
	slot  int
	tp    types.Tp
}

func newSlotBinding(alloc *Allocator, t types.Tp) *slotBinding {
	return &slotBinding{alloc: alloc, slot: alloc.Allocate(t), tp: t}
}

func (b *slotBinding) Type() types.Tp { return b.tp }

func (b *slotBinding) Load(sp source.Span) ir.Typed {
	return &ir.LoadVar{Info: ir.Info{Sp: sp, Tp: b.tp}, Slot: b.slot}
}

func (b *slotBinding) Store(value ir.Typed) *ir.StoreVar {
	if !types.Equal(b.tp, value.Type()) {
		b.alloc.Free(b.slot)
		b.tp = value.Type()
		b.slot = b.alloc.Allocate(b.tp)
	}
	return &ir.StoreVar{Info: ir.Info{Sp: value.Span(), Tp: types.Void}, Slot: b.slot, Value: value}
}

func (b *slotBinding) release() { b.alloc.Free(b.slot) }

// argBinding reads an argument position that the function never writes.
type argBinding struct {
	index int
	tp    types.Tp
}

func (b *argBinding) Type() types.Tp { return b.tp }

func (b *argBinding) Load(sp source.Span) ir.Typed {
	return &ir.LoadArg{Info: ir.Info{Sp: sp, Tp: b.tp}, Index: b.index}
}

func (b *argBinding) Store(ir.Typed) *ir.StoreVar { return nil }
