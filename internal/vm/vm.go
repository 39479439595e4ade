// Package vm executes linked bytecode programs. It is the host side of a
// compiled program: it binds native calls to a host registry, runs module
// initializers and invokes entry functions.
package vm

import (
	"fmt"
	"io"

	"vsharp/internal/bytecode"
	"vsharp/internal/host"
	"vsharp/internal/source"
)

// DefaultMaxDepth bounds nested calls when Options.MaxDepth is zero.
const DefaultMaxDepth = 4096

// Options configures execution.
type Options struct {
	Files    *source.FileSet // resolves spans for traces, optional
	Trace    io.Writer       // instruction trace, nil disables it
	MaxDepth int
}

// Machine is a stack interpreter over one program. It is not safe for
// concurrent use.
type Machine struct {
	prog    *bytecode.Program
	natives []*host.Func
	opts    Options
	tracer  *Tracer

	stack  []any
	frames []frame
	steps  uint64
}

// New validates p and binds its native table against reg.
func New(p *bytecode.Program, reg *host.Registry, opts Options) (*Machine, error) {
	if p == nil {
		return nil, fmt.Errorf("missing program")
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid program: %w", err)
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	m := &Machine{prog: p, opts: opts, natives: make([]*host.Func, len(p.Natives))}
	for i, name := range p.Natives {
		fn, ok := reg.ByName(name)
		if !ok {
			return nil, fmt.Errorf("native function %s is not registered", name)
		}
		m.natives[i] = fn
	}
	if opts.Trace != nil {
		m.tracer = NewTracer(opts.Trace, opts.Files)
	}
	return m, nil
}

// Program returns the program being executed.
func (m *Machine) Program() *bytecode.Program { return m.prog }

// Steps counts the instructions executed so far.
func (m *Machine) Steps() uint64 { return m.steps }

// RunModule runs the initializer of module name and returns its block
// value, or nil when the block has none.
func (m *Machine) RunModule(name string) (any, error) {
	mod, ok := m.prog.Module(name)
	if !ok {
		return nil, fmt.Errorf("module %s not found", name)
	}
	v, vmErr := m.invoke(mod.Init, nil)
	if vmErr != nil {
		return nil, vmErr
	}
	return v, nil
}

// Call invokes the entry function fn of module. Go int arguments are
// passed as i64.
func (m *Machine) Call(module, fn string, args ...any) (any, error) {
	mod, ok := m.prog.Module(module)
	if !ok {
		return nil, fmt.Errorf("module %s not found", module)
	}
	h, ok := mod.Funcs[fn]
	if !ok {
		return nil, fmt.Errorf("module %s has no function %s", module, fn)
	}
	if want := m.prog.Funcs[h].Arity; len(args) != want {
		return nil, fmt.Errorf("%s.%s expects %d arguments, got %d", module, fn, want, len(args))
	}
	in := make([]any, len(args))
	for i, a := range args {
		in[i] = normalize(a)
	}
	v, vmErr := m.invoke(h, in)
	if vmErr != nil {
		return nil, vmErr
	}
	return v, nil
}

// normalize maps host results onto the value set of the machine.
func normalize(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case []any:
		return &Array{Items: x}
	}
	return v
}
