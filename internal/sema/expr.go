package sema

import (
	"math"

	"vsharp/internal/ast"
	"vsharp/internal/diag"
	"vsharp/internal/ir"
	"vsharp/internal/symbols"
	"vsharp/internal/types"
)

// checkValue checks an expression in value position; a module reference
// is an error there.
func (c *checker) checkValue(e ast.Expr, scope *symbols.ScopedNames) (ir.Instr, error) {
	in, err := c.checkExpr(e, scope)
	if err != nil {
		return nil, err
	}
	if ref, ok := in.(*ir.ModuleRef); ok {
		return nil, diag.CompileErrorf(diag.ChkModuleAsValue, e.Span(), "module %q cannot be used as a value", ref.Alias)
	}
	return in, nil
}

func (c *checker) checkValues(es []ast.Expr, scope *symbols.ScopedNames) ([]ir.Instr, error) {
	out := make([]ir.Instr, 0, len(es))
	for _, e := range es {
		in, err := c.checkValue(e, scope)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}

// checkExpr may return a *ir.ModuleRef; callers decide whether that is allowed.
func (c *checker) checkExpr(e ast.Expr, scope *symbols.ScopedNames) (ir.Instr, error) {
	loc := ir.Loc{Sp: e.Span()}
	switch n := e.(type) {
	case *ast.IntLit:
		if n.Value >= math.MinInt32 && n.Value <= math.MaxInt32 {
			return &ir.Const{Loc: loc, Value: int32(n.Value)}, nil
		}
		return &ir.Const{Loc: loc, Value: n.Value}, nil
	case *ast.FloatLit:
		return &ir.Const{Loc: loc, Value: n.Value}, nil
	case *ast.StringLit:
		return &ir.Const{Loc: loc, Value: n.Value}, nil
	case *ast.BoolLit:
		return &ir.Const{Loc: loc, Value: n.Value}, nil
	case *ast.Ident:
		return c.resolveIdent(n, scope)
	case *ast.Binary:
		l, err := c.checkValue(n.Left, scope)
		if err != nil {
			return nil, err
		}
		r, err := c.checkValue(n.Right, scope)
		if err != nil {
			return nil, err
		}
		return &ir.Binary{Loc: loc, Op: n.Op, Left: l, Right: r}, nil
	case *ast.Unary:
		x, err := c.checkValue(n.X, scope)
		if err != nil {
			return nil, err
		}
		return &ir.Unary{Loc: loc, Op: n.Op, X: x}, nil
	case *ast.Call:
		return c.checkCall(n, scope)
	case *ast.Member:
		x, err := c.checkExpr(n.X, scope)
		if err != nil {
			return nil, err
		}
		return &ir.Property{Loc: loc, X: x, Name: n.Name}, nil
	case *ast.Index:
		x, err := c.checkValue(n.X, scope)
		if err != nil {
			return nil, err
		}
		idx, err := c.checkValue(n.Index, scope)
		if err != nil {
			return nil, err
		}
		return &ir.Index{Loc: loc, X: x, Index: idx}, nil
	case *ast.ObjectLit:
		obj := &ir.ObjectLit{Loc: loc}
		seen := make(map[string]bool, len(n.Fields))
		for _, f := range n.Fields {
			if seen[f.Name] {
				return nil, diag.CompileErrorf(diag.ChkUnsupportedLiteral, f.Span(), "duplicate field %q in object literal", f.Name)
			}
			seen[f.Name] = true
			v, err := c.checkValue(f.Value, scope)
			if err != nil {
				return nil, err
			}
			obj.Fields = append(obj.Fields, ir.FieldValue{Name: f.Name, Value: v})
		}
		return obj, nil
	case *ast.ArrayLit:
		items, err := c.checkValues(n.Items, scope)
		if err != nil {
			return nil, err
		}
		return &ir.ArrayLit{Loc: loc, Items: items}, nil
	case *ast.Block:
		child := scope.Child()
		return c.checkStmts(n.Stmts, child, n.Span())
	case *ast.If:
		cond, err := c.checkValue(n.Cond, scope)
		if err != nil {
			return nil, err
		}
		then, err := c.checkValue(n.Then, scope)
		if err != nil {
			return nil, err
		}
		out := &ir.If{Loc: loc, Cond: cond, Then: then}
		if n.Else != nil {
			if out.Else, err = c.checkValue(n.Else, scope); err != nil {
				return nil, err
			}
		}
		return out, nil
	case *ast.While:
		cond, err := c.checkValue(n.Cond, scope)
		if err != nil {
			return nil, err
		}
		c.loopDepth++
		body, err := c.checkValue(n.Body, scope)
		c.loopDepth--
		if err != nil {
			return nil, err
		}
		return &ir.While{Loc: loc, Cond: cond, Body: body}, nil
	case *ast.For:
		iter, err := c.checkValue(n.Iter, scope)
		if err != nil {
			return nil, err
		}
		inner := scope.Child()
		inner.Add(n.Var)
		c.loopDepth++
		body, err := c.checkValue(n.Body, inner)
		c.loopDepth--
		if err != nil {
			return nil, err
		}
		return &ir.For{Loc: loc, Var: n.Var, Iter: iter, Body: body}, nil
	case *ast.Is:
		x, err := c.checkValue(n.X, scope)
		if err != nil {
			return nil, err
		}
		tp, err := c.resolveType(n.Type, c.generics)
		if err != nil {
			return nil, err
		}
		return &ir.TypeCheck{Loc: loc, X: x, Type: tp}, nil
	case *ast.FuncLit:
		return nil, diag.CompileErrorf(diag.ChkUnsupportedLiteral, n.Span(), "function literals must be declared with set or func")
	}
	return nil, diag.CompileErrorf(diag.ChkUnsupportedLiteral, e.Span(), "unsupported expression %T", e)
}

// resolveIdent looks in the scope chain, then the module's functions, then
// the import table.
func (c *checker) resolveIdent(id *ast.Ident, scope *symbols.ScopedNames) (ir.Instr, error) {
	loc := ir.Loc{Sp: id.Span()}
	if scope.Has(id.Name) {
		return &ir.Local{Loc: loc, Name: id.Name}, nil
	}
	if _, ok := c.out.Functions[id.Name]; ok {
		return &ir.FuncRef{Loc: loc, Name: id.Name}, nil
	}
	if desc, ok := c.imports.Lookup(id.Name); ok {
		return &ir.ModuleRef{Loc: loc, Alias: id.Name, Desc: desc}, nil
	}
	return nil, diag.CompileErrorf(diag.ChkUnresolvedIdent, id.Span(), "unresolved identifier %q", id.Name)
}

func (c *checker) checkCall(n *ast.Call, scope *symbols.ScopedNames) (ir.Instr, error) {
	loc := ir.Loc{Sp: n.Span()}
	targs := make([]types.Tp, 0, len(n.TypeArgs))
	for _, ta := range n.TypeArgs {
		tp, err := c.resolveType(ta, c.generics)
		if err != nil {
			return nil, err
		}
		targs = append(targs, tp)
	}
	args, err := c.checkValues(n.Args, scope)
	if err != nil {
		return nil, err
	}
	if m, ok := n.Callee.(*ast.Member); ok {
		recv, err := c.checkExpr(m.X, scope)
		if err != nil {
			return nil, err
		}
		return &ir.MethodCall{Loc: loc, Recv: recv, Name: m.Name, TypeArgs: targs, Args: args}, nil
	}
	callee, err := c.checkExpr(n.Callee, scope)
	if err != nil {
		return nil, err
	}
	return &ir.Invoke{Loc: loc, Callee: callee, TypeArgs: targs, Args: args}, nil
}
