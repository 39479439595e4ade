// Package vars maps source variables to physical local slots.
package vars

import (
	"fmt"

	"vsharp/internal/ir"
	"vsharp/internal/types"
)

// Allocator hands out local slots per function. A freed slot is reused
// only by a later allocation of the same type.
type Allocator struct {
	slots []types.Tp
	inUse []bool
	free  map[string][]int
}

func NewAllocator() *Allocator {
	return &Allocator{free: make(map[string][]int)}
}

// Allocate returns the most recently freed slot of type t, or a new slot.
func (a *Allocator) Allocate(t types.Tp) int {
	key := types.Key(t)
	if stack := a.free[key]; len(stack) > 0 {
		slot := stack[len(stack)-1]
		a.free[key] = stack[:len(stack)-1]
		a.inUse[slot] = true
		return slot
	}
	a.slots = append(a.slots, t)
	a.inUse = append(a.inUse, true)
	return len(a.slots) - 1
}

// Free returns slot to the free stack of the type it was allocated with.
func (a *Allocator) Free(slot int) {
	if slot < 0 || slot >= len(a.slots) {
		panic(fmt.Errorf("free of unknown slot %d", slot))
	}
	if !a.inUse[slot] {
		return
	}
	a.inUse[slot] = false
	key := types.Key(a.slots[slot])
	a.free[key] = append(a.free[key], slot)
}

// Count is the number of distinct slots ever allocated.
func (a *Allocator) Count() int { return len(a.slots) }

// SlotType returns the type slot was first allocated with.
func (a *Allocator) SlotType(slot int) types.Tp { return a.slots[slot] }

// Frame snapshots the slot table.
func (a *Allocator) Frame() ir.VarFrame {
	return ir.VarFrame{Slots: append([]types.Tp(nil), a.slots...)}
}
