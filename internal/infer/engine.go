// Package infer is stage 2 of the compiler. It turns the untyped
// instruction tree into the typed tree: calls are resolved, constants
// folded, numeric operands promoted and variables assigned to slots.
//
// Functions without a declared result are compiled lazily the first time a
// caller needs their result type. The memo table is shared by every module
// task, so a function is inferred at most once per build.
package infer

import (
	"sync"

	"vsharp/internal/diag"
	"vsharp/internal/forge"
	"vsharp/internal/host"
	"vsharp/internal/ir"
	"vsharp/internal/project"
	"vsharp/internal/types"
	"vsharp/internal/vars"
)

// Options wire the engine to the rest of the build.
type Options struct {
	Registry *host.Registry
	// Modules holds every checked module of the build by signature.
	Modules map[string]*ir.Module
	Shapes  *forge.InterfaceForge
	Classes *forge.ClassForge
}

type memoState uint8

const (
	statePending memoState = iota
	stateInProgress
	stateDone
	stateFailed
)

type memoEntry struct {
	state  memoState
	owner  *task
	done   chan struct{}
	result *ir.TypedFunction
	err    error
}

// task is one goroutine's demand chain. waitingOn is guarded by Engine.mu.
type task struct {
	waitingOn *memoEntry
}

// Engine infers modules. It is safe for concurrent use by one goroutine
// per module.
type Engine struct {
	opts   Options
	lookup *Lookup

	mu   sync.Mutex
	memo map[*ir.Function]*memoEntry
}

func New(opts Options) *Engine {
	if opts.Modules == nil {
		opts.Modules = make(map[string]*ir.Module)
	}
	return &Engine{
		opts:   opts,
		lookup: NewLookup(opts.Registry, opts.Modules),
		memo:   make(map[*ir.Function]*memoEntry),
	}
}

// Lookup exposes the engine's cross-module resolver.
func (e *Engine) Lookup() *Lookup { return e.lookup }

// InferModule infers the initializer of mod and every function it declares.
func (e *Engine) InferModule(mod *ir.Module) (*ir.TypedModule, error) {
	t := &task{}
	init, err := e.inferFunction(t, mod.InitFn)
	if err != nil {
		return nil, err
	}
	out := &ir.TypedModule{Sig: mod.Sig, Init: init}
	for _, name := range mod.Order {
		fn := mod.Functions[name]
		tf, err := e.compile(t, fn)
		if err != nil {
			return nil, err
		}
		out.Functions = append(out.Functions, tf)
	}
	return out, nil
}

// Function returns the typed body of fn, inferring it on first demand.
func (e *Engine) Function(fn *ir.Function) (*ir.TypedFunction, error) {
	return e.compile(&task{}, fn)
}

func (e *Engine) compile(t *task, fn *ir.Function) (*ir.TypedFunction, error) {
	e.mu.Lock()
	en, ok := e.memo[fn]
	if !ok {
		en = &memoEntry{state: statePending, done: make(chan struct{})}
		e.memo[fn] = en
	}
	switch en.state {
	case statePending:
		en.state, en.owner = stateInProgress, t
		e.mu.Unlock()

		res, err := e.inferFunction(t, fn)

		e.mu.Lock()
		if err != nil {
			en.state, en.err = stateFailed, err
		} else {
			en.state, en.result = stateDone, res
		}
		en.owner = nil
		close(en.done)
		e.mu.Unlock()
		return res, err
	case stateDone:
		e.mu.Unlock()
		return en.result, nil
	case stateFailed:
		e.mu.Unlock()
		return nil, en.err
	}

	// In progress: either our own chain demands it again, or another task
	// owns it and we wait unless that task already waits on us.
	for owner := en.owner; owner != nil; {
		if owner == t {
			e.mu.Unlock()
			return nil, recursiveError(fn)
		}
		if owner.waitingOn == nil {
			break
		}
		owner = owner.waitingOn.owner
	}
	t.waitingOn = en
	e.mu.Unlock()

	<-en.done

	e.mu.Lock()
	t.waitingOn = nil
	res, err := en.result, en.err
	e.mu.Unlock()
	return res, err
}

func recursiveError(fn *ir.Function) error {
	return diag.TypeErrorf(diag.TypRecursiveInfer, fn.Span,
		"recursive function %q needs an explicit return type", fn.Qualified())
}

// resultOf returns the result type of fn, compiling it when undeclared.
func (e *Engine) resultOf(t *task, fn *ir.Function) (types.Tp, error) {
	if fn.Result != nil {
		return fn.Result, nil
	}
	tf, err := e.compile(t, fn)
	if err != nil {
		return nil, err
	}
	return tf.Result, nil
}

func (e *Engine) module(sig project.Signature) (*ir.Module, bool) {
	m, ok := e.opts.Modules[sig.String()]
	return m, ok
}

func (e *Engine) inferFunction(t *task, fn *ir.Function) (*ir.TypedFunction, error) {
	if fn.Body == nil {
		return nil, diag.BuildErrorf(diag.BldInternal, fn.Span, "function %s has no body", fn.Qualified())
	}
	mod, ok := e.module(fn.Module)
	if !ok {
		return nil, diag.BuildErrorf(diag.BldMissingModule, fn.Span, "module %s is not part of the build", fn.Module)
	}
	paramTypes := fn.ParamTypes()
	written := ir.Assigned(fn.Body)
	params := make([]vars.Param, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = vars.Param{Name: p.Name, Type: paramTypes[i], Written: written[p.Name]}
	}
	alloc := vars.NewAllocator()
	fc := &funcCtx{
		eng:  e,
		task: t,
		mod:  mod,
		fn:   fn,
	}
	scope := vars.NewFunctionScope(alloc, params, fn.Span)
	body, err := fc.seq(fn.Body, scope)
	if err != nil {
		return nil, err
	}
	if pro := scope.Prologue(); len(pro) > 0 {
		body.Items = append(pro, body.Items...)
	}

	result := types.Join(fc.ret, body.Type())
	if result == nil || (types.IsNever(result) && fc.ret == nil) {
		result = types.Void
	}
	if fn.Result != nil {
		if err := checkDeclaredResult(fn, fc.ret, body); err != nil {
			return nil, err
		}
		result = fn.Result
	}
	return &ir.TypedFunction{
		Source: fn,
		Params: paramTypes,
		Result: result,
		Body:   body,
		Frame:  alloc.Frame(),
	}, nil
}

// checkDeclaredResult validates every return and the trailing value
// against the declared result type.
func checkDeclaredResult(fn *ir.Function, returned types.Tp, body ir.Typed) error {
	want := fn.Result
	if returned != nil && !types.Assignable(want, returned) {
		return diag.TypeErrorf(diag.TypReturnMismatch, fn.Span,
			"%s returns %s, declared %s", fn.Qualified(), returned, want)
	}
	trailing := body.Type()
	if types.IsNever(trailing) {
		return nil
	}
	if types.IsVoid(want) {
		return nil
	}
	if !types.Assignable(want, trailing) {
		return diag.TypeErrorf(diag.TypReturnMismatch, body.Span(),
			"%s ends with a %s value, declared %s", fn.Qualified(), trailing, want)
	}
	return nil
}
