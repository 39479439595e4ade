package infer

import (
	"errors"

	"vsharp/internal/diag"
	"vsharp/internal/host"
	"vsharp/internal/ir"
	"vsharp/internal/project"
	"vsharp/internal/source"
	"vsharp/internal/symbols"
)

// Target is what a module member resolves to: a script function or the
// overload set of a native function.
type Target struct {
	Script  *ir.Function
	Natives []*host.Func
}

// Lookup resolves members of imported modules across the whole build.
type Lookup struct {
	reg     *host.Registry
	modules map[string]*ir.Module
}

func NewLookup(reg *host.Registry, modules map[string]*ir.Module) *Lookup {
	return &Lookup{reg: reg, modules: modules}
}

// Member resolves name inside the module described by desc.
func (l *Lookup) Member(desc symbols.ModuleDescriptor, name string, sp source.Span) (Target, error) {
	switch d := desc.(type) {
	case symbols.Native:
		return l.native(d.Sig, name, sp)
	case symbols.Script:
		mod, err := l.Script(d, sp)
		if err != nil {
			return Target{}, err
		}
		fn, ok := mod.Function(name)
		if !ok {
			return Target{}, diag.TypeErrorf(diag.TypUndefinedSymbol, sp, "module %s has no function %q", mod.Sig, name)
		}
		return Target{Script: fn}, nil
	case symbols.SymbolAccess:
		native, ok := d.Parent.(symbols.Native)
		if !ok {
			return Target{}, diag.TypeErrorf(diag.TypUndefinedSymbol, sp, "%s has no member %q", d, name)
		}
		return l.native(native.Sig.Join(d.Name), name, sp)
	}
	return Target{}, diag.TypeErrorf(diag.TypUnknownModule, sp, "unknown module %v", desc)
}

// Symbol resolves a selected import used as a callee.
func (l *Lookup) Symbol(acc symbols.SymbolAccess, sp source.Span) (Target, error) {
	return l.Member(acc.Parent, acc.Name, sp)
}

// Script finds the checked module a script import refers to.
func (l *Lookup) Script(s symbols.Script, sp source.Span) (*ir.Module, error) {
	sig, err := symbols.ScriptSignature(s)
	if err != nil {
		return nil, diag.TypeErrorf(diag.TypUnknownModule, sp, "bad module path %s: %v", s, err)
	}
	mod, ok := l.modules[sig.String()]
	if !ok {
		return nil, diag.TypeErrorf(diag.TypUnknownModule, sp, "module %s is not part of the build", sig)
	}
	return mod, nil
}

func (l *Lookup) native(sig project.Signature, name string, sp source.Span) (Target, error) {
	if l.reg == nil {
		return Target{}, diag.TypeErrorf(diag.TypUnknownModule, sp, "no native modules are available for %s", sig)
	}
	fns, err := l.reg.Funcs(sig, name)
	if err != nil {
		if errors.Is(err, host.ErrNoNamespace) {
			return Target{}, diag.TypeErrorf(diag.TypUnknownModule, sp, "unknown native module %s", sig)
		}
		return Target{}, diag.TypeErrorf(diag.TypUnknownModule, sp, "%v", err)
	}
	if len(fns) == 0 {
		return Target{}, diag.TypeErrorf(diag.TypNoFunction, sp, "%s has no function %q", sig, name)
	}
	return Target{Natives: fns}, nil
}
