package infer

import (
	"vsharp/internal/ast"
	"vsharp/internal/diag"
	"vsharp/internal/ir"
	"vsharp/internal/source"
	"vsharp/internal/types"
	"vsharp/internal/vars"
)

// funcCtx infers one function body.
type funcCtx struct {
	eng  *Engine
	task *task
	mod  *ir.Module
	fn   *ir.Function
	ret  types.Tp // join of every return seen so far
}

func (c *funcCtx) report(t types.Tp) error {
	if c.eng.opts.Shapes == nil {
		return nil
	}
	return c.eng.opts.Shapes.Report(t)
}

// seq infers a block in scope itself; the function body uses it directly.
func (c *funcCtx) seq(b *ir.Block, scope *vars.Scope) (*ir.Seq, error) {
	out := &ir.Seq{Info: ir.Info{Sp: b.Sp, Tp: types.Void}}
	unreachable := false
	for _, in := range b.Body {
		t, err := c.expr(in, scope)
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, t)
		if types.IsNever(t.Type()) {
			unreachable = true
		}
	}
	switch {
	case unreachable:
		out.Tp = types.Never
	case len(out.Items) > 0:
		out.Tp = out.Items[len(out.Items)-1].Type()
	}
	return out, nil
}

func (c *funcCtx) block(b *ir.Block, scope *vars.Scope) (*ir.Seq, error) {
	child := scope.Child()
	defer child.Close()
	return c.seq(b, child)
}

// branch infers in a child scope whose variables die with it.
func (c *funcCtx) branch(in ir.Instr, scope *vars.Scope) (ir.Typed, error) {
	child := scope.Child()
	defer child.Close()
	return c.expr(in, child)
}

// value infers an expression that must produce a value.
func (c *funcCtx) value(in ir.Instr, scope *vars.Scope) (ir.Typed, error) {
	t, err := c.expr(in, scope)
	if err != nil {
		return nil, err
	}
	if !types.HasValue(t.Type()) {
		return nil, diag.TypeErrorf(diag.TypMismatch, in.Span(), "expression of type %s has no value", t.Type())
	}
	return t, nil
}

func (c *funcCtx) values(ins []ir.Instr, scope *vars.Scope) ([]ir.Typed, error) {
	out := make([]ir.Typed, len(ins))
	for i, in := range ins {
		t, err := c.value(in, scope)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

func (c *funcCtx) expr(in ir.Instr, scope *vars.Scope) (ir.Typed, error) {
	sp := in.Span()
	switch n := in.(type) {
	case *ir.Const:
		t, ok := constType(n.Value)
		if !ok {
			return nil, diag.BuildErrorf(diag.BldInternal, sp, "unsupported constant %T", n.Value)
		}
		return &ir.Lit{Info: ir.Info{Sp: sp, Tp: t}, Value: n.Value}, nil
	case *ir.Local:
		b, ok := scope.Get(n.Name)
		if !ok {
			return nil, diag.TypeErrorf(diag.TypUnknownVariable, sp, "variable %q is not set on every path to this use", n.Name)
		}
		return b.Load(sp), nil
	case *ir.FuncRef:
		return nil, diag.TypeErrorf(diag.TypMismatch, sp, "function %q is not a value; call it", n.Name)
	case *ir.ModuleRef:
		return nil, diag.TypeErrorf(diag.TypMismatch, sp, "module %q is not a value", n.Alias)
	case *ir.SetVar:
		v, err := c.value(n.Value, scope)
		if err != nil {
			return nil, err
		}
		st, err := scope.Set(n.Name, v)
		if err != nil {
			return nil, err
		}
		return st, nil
	case *ir.SetField:
		return c.setField(n, scope)
	case *ir.SetIndex:
		return c.setIndex(n, scope)
	case *ir.Binary:
		return c.binary(n, scope)
	case *ir.Unary:
		return c.unary(n, scope)
	case *ir.Invoke:
		return c.invoke(n, scope)
	case *ir.MethodCall:
		return c.methodCall(n, scope)
	case *ir.Property:
		if ref, ok := n.X.(*ir.ModuleRef); ok {
			return nil, diag.TypeErrorf(diag.TypUndefinedSymbol, sp, "%s.%s is not a value; module members must be called", ref.Alias, n.Name)
		}
		x, err := c.value(n.X, scope)
		if err != nil {
			return nil, err
		}
		shape, ft, err := c.fieldOf(x, n.Name, sp)
		if err != nil {
			return nil, err
		}
		return &ir.GetProp{Info: ir.Info{Sp: sp, Tp: ft}, X: x, Shape: shape, Name: n.Name}, nil
	case *ir.Index:
		x, idx, item, err := c.element(n.X, n.Index, sp, scope)
		if err != nil {
			return nil, err
		}
		return &ir.GetElem{Info: ir.Info{Sp: sp, Tp: item}, X: x, Index: idx}, nil
	case *ir.ObjectLit:
		return c.objectLit(n, scope)
	case *ir.ArrayLit:
		items, err := c.values(n.Items, scope)
		if err != nil {
			return nil, err
		}
		var item types.Tp
		for _, it := range items {
			item = types.Join(item, it.Type())
		}
		if item == nil {
			item = types.Never
		}
		return &ir.NewArray{Info: ir.Info{Sp: sp, Tp: types.Array{Item: item}}, Items: items}, nil
	case *ir.Block:
		seq, err := c.block(n, scope)
		if err != nil {
			return nil, err
		}
		return seq, nil
	case *ir.If:
		return c.ifExpr(n, scope)
	case *ir.While:
		cond, err := c.condition(n.Cond, scope)
		if err != nil {
			return nil, err
		}
		body, err := c.branch(n.Body, scope)
		if err != nil {
			return nil, err
		}
		return &ir.Loop{Info: ir.Info{Sp: sp, Tp: types.Void}, Cond: cond, Body: body}, nil
	case *ir.For:
		return c.forEach(n, scope)
	case *ir.TypeCheck:
		x, err := c.value(n.X, scope)
		if err != nil {
			return nil, err
		}
		if err := c.report(n.Type); err != nil {
			return nil, err
		}
		return &ir.TypeTest{Info: ir.Info{Sp: sp, Tp: types.Bool}, X: x, Target: n.Type}, nil
	case *ir.Return:
		ret := &ir.Ret{Info: ir.Info{Sp: sp, Tp: types.Never}}
		if n.Value == nil {
			c.ret = types.Join(c.ret, types.Void)
			return ret, nil
		}
		v, err := c.value(n.Value, scope)
		if err != nil {
			return nil, err
		}
		c.ret = types.Join(c.ret, v.Type())
		ret.Value = v
		return ret, nil
	case *ir.Break:
		return &ir.BreakLoop{Info: ir.Info{Sp: sp, Tp: types.Never}}, nil
	case *ir.Continue:
		return &ir.ContinueLoop{Info: ir.Info{Sp: sp, Tp: types.Never}}, nil
	}
	return nil, diag.BuildErrorf(diag.BldInternal, sp, "unexpected instruction %T", in)
}

func (c *funcCtx) condition(in ir.Instr, scope *vars.Scope) (ir.Typed, error) {
	cond, err := c.value(in, scope)
	if err != nil {
		return nil, err
	}
	if !types.Equal(cond.Type(), types.Bool) {
		return nil, diag.TypeErrorf(diag.TypMismatch, in.Span(), "condition must be bool, got %s", cond.Type())
	}
	return cond, nil
}

// ifExpr: without else the type is Void; a Void branch makes it Void;
// otherwise it is the join of both branches.
func (c *funcCtx) ifExpr(n *ir.If, scope *vars.Scope) (ir.Typed, error) {
	cond, err := c.condition(n.Cond, scope)
	if err != nil {
		return nil, err
	}
	then, err := c.branch(n.Then, scope)
	if err != nil {
		return nil, err
	}
	out := &ir.Cond{Info: ir.Info{Sp: n.Sp, Tp: types.Void}, Cond: cond, Then: then}
	if n.Else == nil {
		return out, nil
	}
	if out.Else, err = c.branch(n.Else, scope); err != nil {
		return nil, err
	}
	tt, et := then.Type(), out.Else.Type()
	if !types.IsVoid(tt) && !types.IsVoid(et) {
		out.Tp = types.Join(tt, et)
	}
	return out, nil
}

func (c *funcCtx) forEach(n *ir.For, scope *vars.Scope) (ir.Typed, error) {
	iter, err := c.value(n.Iter, scope)
	if err != nil {
		return nil, err
	}
	arr, ok := iter.Type().(types.Array)
	if !ok {
		return nil, diag.TypeErrorf(diag.TypNotIndexable, n.Iter.Span(), "cannot iterate over %s", iter.Type())
	}
	inner := scope.Child()
	defer inner.Close()
	out := &ir.ForEach{
		Info:    ir.Info{Sp: n.Sp, Tp: types.Void},
		Iter:    iter,
		ArrSlot: inner.Temp(arr),
		IdxSlot: inner.Temp(types.I32),
		VarSlot: inner.Declare(n.Var, arr.Item),
	}
	if out.Body, err = c.branch(n.Body, inner); err != nil {
		return nil, err
	}
	return out, nil
}

// fieldOf resolves a property on an object or on the intersection member
// that declares it, and reports the receiver shape.
func (c *funcCtx) fieldOf(x ir.Typed, name string, sp source.Span) (types.Object, types.Tp, error) {
	var candidates []types.Object
	switch t := x.Type().(type) {
	case types.Object:
		candidates = []types.Object{t}
	case types.Intersection:
		for _, m := range t.Members() {
			if o, ok := m.(types.Object); ok {
				candidates = append(candidates, o)
			}
		}
	}
	for _, o := range candidates {
		if ft, ok := o.Field(name); ok {
			if err := c.report(o); err != nil {
				return types.Object{}, nil, err
			}
			return o, ft, nil
		}
	}
	return types.Object{}, nil, diag.TypeErrorf(diag.TypNoField, sp, "%s has no field %q", x.Type(), name)
}

func (c *funcCtx) setField(n *ir.SetField, scope *vars.Scope) (ir.Typed, error) {
	v, err := c.value(n.Value, scope)
	if err != nil {
		return nil, err
	}
	x, err := c.value(n.X, scope)
	if err != nil {
		return nil, err
	}
	shape, ft, err := c.fieldOf(x, n.Name, n.Sp)
	if err != nil {
		return nil, err
	}
	if v, err = c.assign(ft, v, "field "+n.Name); err != nil {
		return nil, err
	}
	return &ir.SetProp{Info: ir.Info{Sp: n.Sp, Tp: types.Void}, X: x, Shape: shape, Name: n.Name, Value: v}, nil
}

// element checks an indexing pair and returns the array item type.
func (c *funcCtx) element(xin, idxin ir.Instr, sp source.Span, scope *vars.Scope) (ir.Typed, ir.Typed, types.Tp, error) {
	x, err := c.value(xin, scope)
	if err != nil {
		return nil, nil, nil, err
	}
	arr, ok := x.Type().(types.Array)
	if !ok {
		return nil, nil, nil, diag.TypeErrorf(diag.TypNotIndexable, sp, "cannot index %s", x.Type())
	}
	idx, err := c.value(idxin, scope)
	if err != nil {
		return nil, nil, nil, err
	}
	if !types.Equal(idx.Type(), types.I32) && !types.Equal(idx.Type(), types.I64) {
		return nil, nil, nil, diag.TypeErrorf(diag.TypMismatch, idxin.Span(), "index must be an integer, got %s", idx.Type())
	}
	return x, idx, arr.Item, nil
}

func (c *funcCtx) setIndex(n *ir.SetIndex, scope *vars.Scope) (ir.Typed, error) {
	v, err := c.value(n.Value, scope)
	if err != nil {
		return nil, err
	}
	x, idx, item, err := c.element(n.X, n.Index, n.Sp, scope)
	if err != nil {
		return nil, err
	}
	if v, err = c.assign(item, v, "element"); err != nil {
		return nil, err
	}
	return &ir.SetElem{Info: ir.Info{Sp: n.Sp, Tp: types.Void}, X: x, Index: idx, Value: v}, nil
}

// assign checks that v may be stored where want is expected, widening
// numbers when needed.
func (c *funcCtx) assign(want types.Tp, v ir.Typed, what string) (ir.Typed, error) {
	if types.Assignable(want, v.Type()) {
		return v, nil
	}
	if widens(want, v.Type()) {
		return coerce(v, want), nil
	}
	return nil, diag.TypeErrorf(diag.TypMismatch, v.Span(), "cannot use %s as %s for %s", v.Type(), want, what)
}

func (c *funcCtx) objectLit(n *ir.ObjectLit, scope *vars.Scope) (ir.Typed, error) {
	byName := make(map[string]ir.Typed, len(n.Fields))
	fieldTypes := make(map[string]types.Tp, len(n.Fields))
	for _, f := range n.Fields {
		v, err := c.value(f.Value, scope)
		if err != nil {
			return nil, err
		}
		byName[f.Name] = v
		fieldTypes[f.Name] = v.Type()
	}
	shape := types.ObjectFromMap(fieldTypes)
	if cf := c.eng.opts.Classes; cf != nil {
		if err := cf.Reserve(shape); err != nil {
			return nil, err
		}
	} else if err := c.report(shape); err != nil {
		return nil, err
	}
	out := &ir.NewObject{Info: ir.Info{Sp: n.Sp, Tp: shape}, Shape: shape}
	for _, f := range shape.Fields() {
		out.Fields = append(out.Fields, byName[f.Name])
	}
	return out, nil
}

func (c *funcCtx) binary(n *ir.Binary, scope *vars.Scope) (ir.Typed, error) {
	l, err := c.value(n.Left, scope)
	if err != nil {
		return nil, err
	}
	r, err := c.value(n.Right, scope)
	if err != nil {
		return nil, err
	}
	switch {
	case n.Op.IsArithmetic():
		return c.arith(n, l, r)
	case n.Op.IsComparison():
		return c.compare(n, l, r)
	case n.Op == ast.OpAnd || n.Op == ast.OpOr:
		if !types.Equal(l.Type(), types.Bool) || !types.Equal(r.Type(), types.Bool) {
			return nil, diag.TypeErrorf(diag.TypInvalidOperands, n.Sp, "%s needs bool operands, got %s and %s", n.Op, l.Type(), r.Type())
		}
		ll, lok := l.(*ir.Lit)
		rl, rok := r.(*ir.Lit)
		if lok && rok {
			return foldLogic(n.Op, ll, rl, n.Sp), nil
		}
		return &ir.Logic{Info: ir.Info{Sp: n.Sp, Tp: types.Bool}, Op: n.Op, Left: l, Right: r}, nil
	case n.Op == ast.OpIn:
		return c.contains(n, l, r)
	}
	return nil, diag.BuildErrorf(diag.BldInternal, n.Sp, "unknown operator %s", n.Op)
}

func (c *funcCtx) arith(n *ir.Binary, l, r ir.Typed) (ir.Typed, error) {
	ll, lok := l.(*ir.Lit)
	rl, rok := r.(*ir.Lit)
	if lok && rok {
		folded, err := foldArith(n.Op, ll, rl, n.Sp)
		if err != nil {
			return nil, err
		}
		return folded, nil
	}
	lt, rt := l.Type(), r.Type()
	if n.Op == ast.OpAdd && types.Equal(lt, types.Str) && types.Equal(rt, types.Str) {
		return &ir.Arith{Info: ir.Info{Sp: n.Sp, Tp: types.Str}, Op: n.Op, Left: l, Right: r}, nil
	}
	if !types.IsNumeric(lt) || !types.IsNumeric(rt) {
		return nil, diag.TypeErrorf(diag.TypNonNumeric, n.Sp, "operator %s needs numeric operands, got %s and %s", n.Op, lt, rt)
	}
	res, l, r, err := promote(l, r, n.Sp)
	if err != nil {
		return nil, err
	}
	return &ir.Arith{Info: ir.Info{Sp: n.Sp, Tp: res}, Op: n.Op, Left: l, Right: r}, nil
}

func (c *funcCtx) compare(n *ir.Binary, l, r ir.Typed) (ir.Typed, error) {
	lt, rt := l.Type(), r.Type()
	var operand types.Tp
	switch {
	case types.IsNumeric(lt) && types.IsNumeric(rt):
		var err error
		if operand, l, r, err = promote(l, r, n.Sp); err != nil {
			return nil, err
		}
	case (n.Op == ast.OpEq || n.Op == ast.OpNe) && types.Equal(lt, rt) &&
		(types.Equal(lt, types.Bool) || types.Equal(lt, types.Str)):
		operand = lt
	default:
		return nil, diag.TypeErrorf(diag.TypInvalidOperands, n.Sp, "cannot compare %s %s %s", lt, n.Op, rt)
	}
	ll, lok := l.(*ir.Lit)
	rl, rok := r.(*ir.Lit)
	if lok && rok {
		return foldCompare(n.Op, ll, rl, n.Sp), nil
	}
	return &ir.Compare{Info: ir.Info{Sp: n.Sp, Tp: types.Bool}, Op: n.Op, Operand: operand, Left: l, Right: r}, nil
}

func (c *funcCtx) contains(n *ir.Binary, item, container ir.Typed) (ir.Typed, error) {
	it, ct := item.Type(), container.Type()
	ok := false
	switch t := ct.(type) {
	case types.Array:
		ok = types.Assignable(t.Item, it)
	case types.Nominal:
		ok = types.Equal(t, types.Str) && types.Equal(it, types.Str)
	}
	if !ok {
		return nil, diag.TypeErrorf(diag.TypInvalidOperands, n.Sp, "cannot test %s in %s", it, ct)
	}
	return &ir.Contains{Info: ir.Info{Sp: n.Sp, Tp: types.Bool}, Container: container, Item: item}, nil
}

func (c *funcCtx) unary(n *ir.Unary, scope *vars.Scope) (ir.Typed, error) {
	x, err := c.value(n.X, scope)
	if err != nil {
		return nil, err
	}
	lx, isLit := x.(*ir.Lit)
	switch n.Op {
	case ast.OpNeg:
		if isLit {
			folded, err := foldNeg(lx, n.Sp)
			if err != nil {
				return nil, err
			}
			return folded, nil
		}
		if !types.IsNumeric(x.Type()) {
			return nil, diag.TypeErrorf(diag.TypNonNumeric, n.Sp, "cannot negate %s", x.Type())
		}
		t := x.Type()
		if _, union := t.(types.Union); union {
			if t, err = types.Promote(t, types.I32); err != nil {
				return nil, diag.TypeErrorf(diag.TypNonNumeric, n.Sp, "%v", err)
			}
			x = coerce(x, t)
		}
		return &ir.Neg{Info: ir.Info{Sp: n.Sp, Tp: t}, X: x}, nil
	case ast.OpNot:
		if !types.Equal(x.Type(), types.Bool) {
			return nil, diag.TypeErrorf(diag.TypInvalidOperands, n.Sp, "! needs a bool operand, got %s", x.Type())
		}
		if isLit {
			return lit(n.Sp, !lx.Value.(bool)), nil
		}
		return &ir.Not{Info: ir.Info{Sp: n.Sp, Tp: types.Bool}, X: x}, nil
	}
	return nil, diag.BuildErrorf(diag.BldInternal, n.Sp, "unknown operator %s", n.Op)
}

// promote brings both numeric operands to their common type, inserting a
// cast around whichever operand differs.
func promote(l, r ir.Typed, sp source.Span) (types.Tp, ir.Typed, ir.Typed, error) {
	lt, rt := l.Type(), r.Type()
	if types.Equal(lt, rt) && isNumericLeaf(lt) {
		return lt, l, r, nil
	}
	res, err := types.Promote(lt, rt)
	if err != nil {
		return nil, nil, nil, diag.TypeErrorf(diag.TypNonNumeric, sp, "%v", err)
	}
	return res, coerce(l, res), coerce(r, res), nil
}

func coerce(x ir.Typed, to types.Tp) ir.Typed {
	if types.Equal(x.Type(), to) {
		return x
	}
	if l, ok := x.(*ir.Lit); ok {
		return castConst(l, to)
	}
	return &ir.Cast{Info: ir.Info{Sp: x.Span(), Tp: to}, X: x}
}

func isNumericLeaf(t types.Tp) bool {
	_, union := t.(types.Union)
	return !union && types.IsNumeric(t)
}

// widens reports whether a value of type from converts to the numeric type
// to without losing range.
func widens(to, from types.Tp) bool {
	if !isNumericLeaf(to) || !types.IsNumeric(from) {
		return false
	}
	p, err := types.Promote(to, from)
	return err == nil && types.Equal(p, to)
}
