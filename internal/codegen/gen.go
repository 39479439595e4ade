// Package codegen lowers typed functions to stack bytecode.
//
// Generation runs after the forge barrier: object literals and property
// accesses are bound to the classes and interfaces the ClassForge
// synthesizes, so every function can be generated independently and in
// parallel.
package codegen

import (
	"fmt"
	"sync"

	"fortio.org/safecast"

	"vsharp/internal/bytecode"
	"vsharp/internal/diag"
	"vsharp/internal/forge"
	"vsharp/internal/host"
	"vsharp/internal/ir"
	"vsharp/internal/source"
	"vsharp/internal/types"
)

// Natives numbers the host functions a program calls. It is shared by
// every function of a build.
type Natives struct {
	mu    sync.Mutex
	index map[string]int32
	names []string
}

func NewNatives() *Natives {
	return &Natives{index: make(map[string]int32)}
}

// Index returns the table position of fn, adding it on first use.
func (n *Natives) Index(fn *host.Func) int32 {
	n.mu.Lock()
	defer n.mu.Unlock()
	if idx, ok := n.index[fn.Qualified]; ok {
		return idx
	}
	idx := int32Of(len(n.names), "native")
	n.names = append(n.names, fn.Qualified)
	n.index[fn.Qualified] = idx
	return idx
}

// Names returns the qualified names in table order.
func (n *Natives) Names() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.names...)
}

// Generator emits bytecode for typed functions. Function may be called
// concurrently.
type Generator struct {
	classes *forge.ClassForge
	natives *Natives
}

func New(classes *forge.ClassForge, natives *Natives) *Generator {
	if natives == nil {
		natives = NewNatives()
	}
	return &Generator{classes: classes, natives: natives}
}

// Natives returns the native table the generator fills.
func (g *Generator) Natives() *Natives { return g.natives }

// Function generates the body of tf.
func (g *Generator) Function(tf *ir.TypedFunction) (*bytecode.Function, error) {
	src := tf.Source
	e := &emitter{
		g:         g,
		b:         bytecode.NewFuncBuilder(src.Module.String(), src.Name, len(tf.Params), tf.Frame.Count()),
		hasResult: types.HasValue(tf.Result),
	}
	if err := e.emit(tf.Body); err != nil {
		return nil, err
	}
	e.b.At(tf.Body.Span())
	switch {
	case e.hasResult && types.HasValue(tf.Body.Type()):
		e.b.Emit(bytecode.OpRet, 0, 0)
	case e.hasResult:
		e.null()
		e.b.Emit(bytecode.OpRet, 0, 0)
	default:
		if types.HasValue(tf.Body.Type()) {
			e.b.Emit(bytecode.OpPop, 0, 0)
		}
		e.b.Emit(bytecode.OpRetVoid, 0, 0)
	}
	fn, err := e.b.Finish()
	if err != nil {
		return nil, diag.BuildErrorf(diag.BldInternal, src.Span, "%v", err)
	}
	return fn, nil
}

// Module generates the initializer and every function of tm, in that order.
func (g *Generator) Module(tm *ir.TypedModule) ([]*bytecode.Function, error) {
	out := make([]*bytecode.Function, 0, len(tm.Functions)+1)
	for _, tf := range append([]*ir.TypedFunction{tm.Init}, tm.Functions...) {
		fn, err := g.Function(tf)
		if err != nil {
			return nil, err
		}
		out = append(out, fn)
	}
	return out, nil
}

func int32Of(n int, what string) int32 {
	v, err := safecast.Conv[int32](n)
	if err != nil {
		panic(fmt.Errorf("%s overflow: %w", what, err))
	}
	return v
}

func internalf(sp source.Span, format string, args ...any) error {
	return diag.BuildErrorf(diag.BldInternal, sp, format, args...)
}
