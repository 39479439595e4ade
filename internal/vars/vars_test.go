package vars

import (
	"testing"

	"vsharp/internal/diag"
	"vsharp/internal/ir"
	"vsharp/internal/source"
	"vsharp/internal/types"
)

func lit(t types.Tp, v any) ir.Typed {
	return &ir.Lit{Info: ir.Info{Tp: t}, Value: v}
}

func TestAllocatorReusesFreedSlotOfSameType(t *testing.T) {
	a := NewAllocator()
	first := a.Allocate(types.I32)
	a.Free(first)
	if again := a.Allocate(types.I32); again != first {
		t.Fatalf("expected slot %d to be reused, got %d", first, again)
	}
	a.Free(first)
	if other := a.Allocate(types.Str); other == first {
		t.Fatalf("slot %d of i32 reused for str", first)
	}
	if a.Count() != 2 {
		t.Fatalf("count = %d, want 2", a.Count())
	}
}

func TestAllocatorIgnoresDoubleFree(t *testing.T) {
	a := NewAllocator()
	s := a.Allocate(types.F64)
	a.Free(s)
	a.Free(s)
	x := a.Allocate(types.F64)
	y := a.Allocate(types.F64)
	if x == y {
		t.Fatalf("double free handed slot %d out twice", x)
	}
}

func TestReassignWithNewTypeMovesSlot(t *testing.T) {
	a := NewAllocator()
	s := NewFunctionScope(a, nil, source.Span{})
	st, err := s.Set("x", lit(types.I32, int32(1)))
	if err != nil {
		t.Fatal(err)
	}
	first := st.Slot
	st, err = s.Set("x", lit(types.I32, int32(2)))
	if err != nil || st.Slot != first {
		t.Fatalf("same-type store moved slot: %d -> %d (%v)", first, st.Slot, err)
	}
	st, err = s.Set("x", lit(types.Str, "s"))
	if err != nil {
		t.Fatal(err)
	}
	if st.Slot == first {
		t.Fatalf("str store reused i32 slot %d", first)
	}
	b, _ := s.Get("x")
	if !types.Equal(b.Type(), types.Str) {
		t.Fatalf("binding type = %s", b.Type())
	}
	// The old i32 slot is free for an unrelated variable.
	st, _ = s.Set("y", lit(types.I32, int32(3)))
	if st.Slot != first {
		t.Fatalf("freed slot %d not reused, got %d", first, st.Slot)
	}
}

func TestReadOnlyArgumentLoadsArgPosition(t *testing.T) {
	a := NewAllocator()
	s := NewFunctionScope(a, []Param{{Name: "n", Type: types.I32}}, source.Span{})
	b, _ := s.Get("n")
	if load, ok := b.Load(source.Span{}).(*ir.LoadArg); !ok || load.Index != 0 {
		t.Fatalf("argument load = %#v", b.Load(source.Span{}))
	}
	if len(s.Prologue()) != 0 || a.Count() != 0 {
		t.Fatalf("read-only argument allocated a slot")
	}
	if _, err := s.Set("n", lit(types.I32, int32(5))); err == nil {
		t.Fatalf("write to an uncopied argument accepted")
	}
}

func TestWrittenArgumentCopiedOnEntry(t *testing.T) {
	a := NewAllocator()
	s := NewFunctionScope(a, []Param{
		{Name: "x", Type: types.Str},
		{Name: "n", Type: types.I32, Written: true},
	}, source.Span{})
	pro := s.Prologue()
	if len(pro) != 1 {
		t.Fatalf("prologue has %d stores, want 1", len(pro))
	}
	st, ok := pro[0].(*ir.StoreVar)
	if !ok {
		t.Fatalf("prologue item = %#v", pro[0])
	}
	if arg, ok := st.Value.(*ir.LoadArg); !ok || arg.Index != 1 {
		t.Fatalf("prologue copies %#v, want argument 1", st.Value)
	}
	b, _ := s.Get("n")
	load, ok := b.Load(source.Span{}).(*ir.LoadVar)
	if !ok || load.Slot != st.Slot {
		t.Fatalf("read before any write = %#v, want slot %d", b.Load(source.Span{}), st.Slot)
	}
	// A write in a nested block lands in the same slot the entry filled.
	child := s.Child()
	w, err := child.Set("n", lit(types.I32, int32(0)))
	if err != nil {
		t.Fatal(err)
	}
	child.Close()
	if w.Slot != st.Slot {
		t.Fatalf("nested write slot %d, want %d", w.Slot, st.Slot)
	}
	if load := b.Load(source.Span{}).(*ir.LoadVar); load.Slot != st.Slot {
		t.Fatalf("read after nested write slot %d, want %d", load.Slot, st.Slot)
	}
}

func TestChildScopeFreesItsVariables(t *testing.T) {
	a := NewAllocator()
	root := NewFunctionScope(a, nil, source.Span{})
	child := root.Child()
	st, _ := child.Set("tmp", lit(types.I32, int32(1)))
	child.Close()
	if _, ok := root.Get("tmp"); ok {
		t.Fatalf("child variable leaked into parent")
	}
	st2, _ := root.Set("other", lit(types.I32, int32(2)))
	if st2.Slot != st.Slot {
		t.Fatalf("slot %d not reused after block end, got %d", st.Slot, st2.Slot)
	}
}

func TestNestedTypeChangeRejected(t *testing.T) {
	root := NewFunctionScope(NewAllocator(), nil, source.Span{})
	if _, err := root.Set("x", lit(types.I32, int32(1))); err != nil {
		t.Fatal(err)
	}
	child := root.Child()
	if _, err := child.Set("x", lit(types.I32, int32(2))); err != nil {
		t.Fatalf("same-type nested write: %v", err)
	}
	_, err := child.Set("x", lit(types.Str, "s"))
	de, ok := diag.AsError(err)
	if !ok || de.Code != diag.TypMismatch {
		t.Fatalf("expected TypMismatch, got %v", err)
	}
}

func TestDeclareShadowsOuterBinding(t *testing.T) {
	root := NewFunctionScope(NewAllocator(), nil, source.Span{})
	root.Set("x", lit(types.Str, "outer"))
	child := root.Child()
	slot := child.Declare("x", types.I32)
	inner, _ := child.Get("x")
	if !types.Equal(inner.Type(), types.I32) {
		t.Fatalf("inner x = %s", inner.Type())
	}
	child.Close()
	outer, _ := root.Get("x")
	if !types.Equal(outer.Type(), types.Str) {
		t.Fatalf("outer x = %s", outer.Type())
	}
	if load := inner.Load(source.Span{}).(*ir.LoadVar); load.Slot != slot {
		t.Fatalf("declared slot %d, load reads %d", slot, load.Slot)
	}
}
