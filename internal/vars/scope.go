package vars

import (
	"vsharp/internal/diag"
	"vsharp/internal/ir"
	"vsharp/internal/source"
	"vsharp/internal/types"
)

type entry struct {
	binding Binding
	depth   int
}

// Scope is the variable table threaded through inference. Child scopes
// see their parent's variables; variables first set in a child are freed
// when it closes.
type Scope struct {
	alloc  *Allocator
	vars   map[string]*entry
	depth  int
	owned  []*slotBinding
	entry  []ir.Typed
	closed bool
}

// Param is a named argument position. Written params are copied into a
// local slot on entry so every read and write sees the same storage.
type Param struct {
	Name    string
	Type    types.Tp
	Written bool
}

// NewFunctionScope binds params to argument positions 0..n-1.
func NewFunctionScope(alloc *Allocator, params []Param, sp source.Span) *Scope {
	s := &Scope{alloc: alloc, vars: make(map[string]*entry, len(params))}
	for i, p := range params {
		if !p.Written {
			s.vars[p.Name] = &entry{binding: &argBinding{index: i, tp: p.Type}}
			continue
		}
		b := newSlotBinding(alloc, p.Type)
		s.vars[p.Name] = &entry{binding: b}
		s.owned = append(s.owned, b)
		s.entry = append(s.entry, &ir.StoreVar{
			Info:  ir.Info{Sp: sp, Tp: types.Void},
			Slot:  b.slot,
			Value: &ir.LoadArg{Info: ir.Info{Sp: sp, Tp: p.Type}, Index: i},
		})
	}
	return s
}

// Prologue returns the argument copies that must run before the body.
func (s *Scope) Prologue() []ir.Typed { return s.entry }

func (s *Scope) Allocator() *Allocator { return s.alloc }

// Child clones the table for a nested block.
func (s *Scope) Child() *Scope {
	vars := make(map[string]*entry, len(s.vars))
	for k, v := range s.vars {
		vars[k] = v
	}
	return &Scope{alloc: s.alloc, vars: vars, depth: s.depth + 1}
}

func (s *Scope) Get(name string) (Binding, bool) {
	e, ok := s.vars[name]
	if !ok {
		return nil, false
	}
	return e.binding, true
}

// Set stores value into name, defining it in this scope on first write.
// A variable owned by an enclosing block may not change type here, since
// the enclosing code would read a slot this branch never wrote.
func (s *Scope) Set(name string, value ir.Typed) (*ir.StoreVar, error) {
	if e, ok := s.vars[name]; ok {
		if e.depth < s.depth && !types.Equal(e.binding.Type(), value.Type()) {
			return nil, diag.TypeErrorf(diag.TypMismatch, value.Span(),
				"cannot change the type of %q from %s to %s inside a nested block", name, e.binding.Type(), value.Type())
		}
		st := e.binding.Store(value)
		if st == nil {
			return nil, diag.BuildErrorf(diag.BldInternal, value.Span(),
				"argument %q is written but was not copied on entry", name)
		}
		return st, nil
	}
	b := newSlotBinding(s.alloc, value.Type())
	s.vars[name] = &entry{binding: b, depth: s.depth}
	s.owned = append(s.owned, b)
	return b.Store(value), nil
}

// Declare binds name to a fresh slot of type t in this scope, shadowing
// any outer binding, and returns the slot.
func (s *Scope) Declare(name string, t types.Tp) int {
	b := newSlotBinding(s.alloc, t)
	s.vars[name] = &entry{binding: b, depth: s.depth}
	s.owned = append(s.owned, b)
	return b.slot
}

// Temp allocates an unnamed slot released with the scope.
func (s *Scope) Temp(t types.Tp) int {
	b := newSlotBinding(s.alloc, t)
	s.owned = append(s.owned, b)
	return b.slot
}

// Close frees every slot owned by this scope. Closing twice is a no-op.
func (s *Scope) Close() {
	if s.closed {
		return
	}
	s.closed = true
	for _, b := range s.owned {
		b.release()
	}
}
