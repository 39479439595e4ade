// Package forge discovers every structural shape a program uses and
// synthesizes the runtime classes and interfaces that back object literals.
//
// Shapes are collected concurrently while modules are checked. Finalize is
// a barrier: only after it do subset queries and synthesis see the whole
// program.
package forge

import (
	"sort"
	"sync"
	"sync/atomic"

	"vsharp/internal/diag"
	"vsharp/internal/source"
	"vsharp/internal/types"
)

const queueSize = 1024

// InterfaceForge aggregates reported shapes on a single goroutine.
type InterfaceForge struct {
	mu        sync.RWMutex // guards closed against concurrent Report
	closed    bool
	queue     chan types.Object
	done      chan struct{}
	finalized atomic.Bool

	// owned by the aggregator until done is closed
	trie   *trie
	shapes map[string]types.Object
}

func NewInterfaceForge() *InterfaceForge {
	f := &InterfaceForge{
		queue:  make(chan types.Object, queueSize),
		done:   make(chan struct{}),
		trie:   newTrie(),
		shapes: make(map[string]types.Object),
	}
	go f.aggregate()
	return f
}

func (f *InterfaceForge) aggregate() {
	defer close(f.done)
	for shape := range f.queue {
		if f.trie.insert(shape) {
			f.shapes[types.Key(shape)] = shape
		}
	}
}

// Report queues every object shape occurring in t.
func (f *InterfaceForge) Report(t types.Tp) error {
	objs := types.Objects(t)
	if len(objs) == 0 {
		return nil
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return diag.BuildErrorf(diag.BldInternal, source.Span{}, "shape %s reported after the interface forge was finalized", t)
	}
	for _, o := range objs {
		f.queue <- o
	}
	return nil
}

// Finalize stops collection and waits for the aggregator to drain.
func (f *InterfaceForge) Finalize() {
	f.mu.Lock()
	if !f.closed {
		f.closed = true
		close(f.queue)
	}
	f.mu.Unlock()
	<-f.done
	f.finalized.Store(true)
}

func (f *InterfaceForge) Finalized() bool { return f.finalized.Load() }

func notFinalized(op string) error {
	return diag.BuildErrorf(diag.BldForgeNotFinalized, source.Span{}, "%s before the interface forge was finalized", op)
}

// FindSubsets returns every collected shape that shape satisfies, shape
// itself included when it was reported, ordered by canonical key.
func (f *InterfaceForge) FindSubsets(shape types.Object) ([]types.Object, error) {
	if !f.Finalized() {
		return nil, notFinalized("FindSubsets")
	}
	out := f.trie.supersetsOf(shape)
	sort.Slice(out, func(i, j int) bool { return types.Key(out[i]) < types.Key(out[j]) })
	return out, nil
}

// Shapes lists every distinct collected shape by canonical key.
func (f *InterfaceForge) Shapes() ([]types.Object, error) {
	if !f.Finalized() {
		return nil, notFinalized("Shapes")
	}
	keys := make([]string, 0, len(f.shapes))
	for k := range f.shapes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]types.Object, len(keys))
	for i, k := range keys {
		out[i] = f.shapes[k]
	}
	return out, nil
}
