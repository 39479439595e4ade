package infer

import (
	"reflect"
	"strings"

	"vsharp/internal/diag"
	"vsharp/internal/host"
	"vsharp/internal/ir"
	"vsharp/internal/source"
	"vsharp/internal/symbols"
	"vsharp/internal/types"
	"vsharp/internal/vars"
)

func (c *funcCtx) invoke(n *ir.Invoke, scope *vars.Scope) (ir.Typed, error) {
	switch callee := n.Callee.(type) {
	case *ir.FuncRef:
		fn, ok := c.mod.Function(callee.Name)
		if !ok {
			return nil, diag.TypeErrorf(diag.TypNoFunction, callee.Sp, "no function %q in %s", callee.Name, c.mod.Sig)
		}
		return c.callScript(fn, n.TypeArgs, n.Args, n.Sp, scope)
	case *ir.ModuleRef:
		acc, ok := callee.Desc.(symbols.SymbolAccess)
		if !ok {
			return nil, diag.TypeErrorf(diag.TypNotCallable, callee.Sp, "module %q is not callable", callee.Alias)
		}
		target, err := c.eng.lookup.Symbol(acc, n.Sp)
		if err != nil {
			return nil, err
		}
		return c.callTarget(target, acc.Name, n.TypeArgs, n.Args, n.Sp, scope)
	}
	v, err := c.expr(n.Callee, scope)
	if err != nil {
		return nil, err
	}
	return nil, diag.TypeErrorf(diag.TypNotCallable, n.Callee.Span(), "value of type %s is not callable", v.Type())
}

func (c *funcCtx) methodCall(n *ir.MethodCall, scope *vars.Scope) (ir.Typed, error) {
	if ref, ok := n.Recv.(*ir.ModuleRef); ok {
		target, err := c.eng.lookup.Member(ref.Desc, n.Name, n.Sp)
		if err != nil {
			return nil, err
		}
		return c.callTarget(target, ref.Alias+"."+n.Name, n.TypeArgs, n.Args, n.Sp, scope)
	}
	recv, err := c.value(n.Recv, scope)
	if err != nil {
		return nil, err
	}
	args, err := c.values(n.Args, scope)
	if err != nil {
		return nil, err
	}
	methods := c.methods(recv.Type(), n.Name)
	if len(methods) == 0 {
		return nil, diag.TypeErrorf(diag.TypNoMethod, n.Sp, "%s has no method %q", recv.Type(), n.Name)
	}
	return c.callNative(methods, n.Name, append([]ir.Typed{recv}, args...), n.Sp)
}

// methods is the capability set of a host receiver type.
func (c *funcCtx) methods(t types.Tp, name string) []*host.Func {
	nom, ok := t.(types.Nominal)
	if !ok || c.eng.opts.Registry == nil || nom.Host == reflect.TypeFor[any]() {
		return nil
	}
	return c.eng.opts.Registry.Methods(nom.Host, name)
}

func (c *funcCtx) callTarget(target Target, name string, typeArgs []types.Tp, argIns []ir.Instr, sp source.Span, scope *vars.Scope) (ir.Typed, error) {
	if target.Script != nil {
		return c.callScript(target.Script, typeArgs, argIns, sp, scope)
	}
	if len(typeArgs) > 0 {
		return nil, diag.TypeErrorf(diag.TypArgCount, sp, "native function %s takes no type arguments", name)
	}
	args, err := c.values(argIns, scope)
	if err != nil {
		return nil, err
	}
	return c.callNative(target.Natives, name, args, sp)
}

// callScript binds generic parameters from the arguments (after any
// explicit type arguments) and instantiates the callee's result type.
func (c *funcCtx) callScript(fn *ir.Function, typeArgs []types.Tp, argIns []ir.Instr, sp source.Span, scope *vars.Scope) (ir.Typed, error) {
	if len(argIns) != len(fn.Params) {
		return nil, diag.TypeErrorf(diag.TypArgCount, sp, "%s expects %d arguments, got %d", fn.Qualified(), len(fn.Params), len(argIns))
	}
	if len(typeArgs) > 0 && len(typeArgs) != fn.Generics {
		return nil, diag.TypeErrorf(diag.TypArgCount, sp, "%s expects %d type arguments, got %d", fn.Qualified(), fn.Generics, len(typeArgs))
	}
	args, err := c.values(argIns, scope)
	if err != nil {
		return nil, err
	}
	params := fn.ParamTypes()
	bound := make([]types.Tp, fn.Generics)
	copy(bound, typeArgs)
	for i, a := range args {
		want := types.WithTypeArguments(params[i], typeArgs)
		if types.CheckAndExtract(want, a.Type(), bound) {
			continue
		}
		if widens(want, a.Type()) {
			args[i] = coerce(a, want)
			continue
		}
		return nil, diag.TypeErrorf(diag.TypMismatch, a.Span(), "argument %d of %s: cannot use %s as %s", i+1, fn.Qualified(), a.Type(), want)
	}
	res, err := c.eng.resultOf(c.task, fn)
	if err != nil {
		return nil, err
	}
	res = types.WithTypeArguments(res, types.FillUnbound(bound))
	return &ir.CallScript{
		Info:   ir.Info{Sp: sp, Tp: res},
		Module: fn.Module,
		Name:   fn.Name,
		Handle: fn.Handle,
		Args:   args,
	}, nil
}

// callNative picks the first overload whose arity matches and whose
// parameters accept the arguments, widening numbers where needed.
func (c *funcCtx) callNative(fns []*host.Func, name string, args []ir.Typed, sp source.Span) (ir.Typed, error) {
	arityOK := false
	for _, f := range fns {
		if f.Arity() != len(args) {
			continue
		}
		arityOK = true
		if conv, ok := convertArgs(f.Params, args); ok {
			return &ir.CallNative{Info: ir.Info{Sp: sp, Tp: f.Result}, Fn: f, Args: conv}, nil
		}
	}
	if !arityOK {
		return nil, diag.TypeErrorf(diag.TypArgCount, sp, "no overload of %s takes %d arguments", name, len(args))
	}
	got := make([]string, len(args))
	for i, a := range args {
		got[i] = a.Type().String()
	}
	return nil, diag.TypeErrorf(diag.TypMismatch, sp, "no overload of %s accepts (%s)", name, strings.Join(got, ", "))
}

func convertArgs(params []types.Tp, args []ir.Typed) ([]ir.Typed, bool) {
	out := make([]ir.Typed, len(args))
	for i, a := range args {
		switch {
		case types.Assignable(params[i], a.Type()):
			out[i] = a
		case widens(params[i], a.Type()):
			out[i] = coerce(a, params[i])
		default:
			return nil, false
		}
	}
	return out, true
}
