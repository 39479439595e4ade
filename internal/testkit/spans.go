// Package testkit holds checks shared by tests of the front end.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"vsharp/internal/ast"
	"vsharp/internal/source"
)

// CheckSpans verifies the span invariants of a parsed module:
// every node span is non-empty, lies in sf and inside its parent's span,
// and top-level statements appear in source order without overlapping.
func CheckSpans(mod *ast.Module, sf *source.File) error {
	if mod == nil || sf == nil {
		return fmt.Errorf("nil module or file")
	}
	if mod.File != sf.ID {
		return fmt.Errorf("module points to file %d, want %d", mod.File, sf.ID)
	}
	size, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}
	c := &spanChecker{file: sf.ID, root: source.Span{File: sf.ID, Start: 0, End: size}}
	var prevEnd uint32
	for i, st := range mod.Stmts {
		sp := st.Span()
		if i > 0 && sp.Start < prevEnd {
			return fmt.Errorf("statement %d at %d overlaps the previous one ending at %d", i, sp.Start, prevEnd)
		}
		prevEnd = sp.End
		c.stmt(st, c.root)
	}
	return c.err
}

type spanChecker struct {
	file source.FileID
	root source.Span
	err  error
}

func (c *spanChecker) check(n ast.Node, parent source.Span) bool {
	if c.err != nil {
		return false
	}
	sp := n.Span()
	switch {
	case sp.File != c.file:
		c.err = fmt.Errorf("%T span points to file %d", n, sp.File)
	case sp.End <= sp.Start:
		c.err = fmt.Errorf("%T has empty span %d..%d", n, sp.Start, sp.End)
	case sp.Start < parent.Start || sp.End > parent.End:
		c.err = fmt.Errorf("%T span %d..%d escapes parent %d..%d", n, sp.Start, sp.End, parent.Start, parent.End)
	}
	return c.err == nil
}

func (c *spanChecker) stmt(st ast.Stmt, parent source.Span) {
	if !c.check(st, parent) {
		return
	}
	sp := st.Span()
	switch s := st.(type) {
	case *ast.ExprStmt:
		c.expr(s.X, sp)
	case *ast.SetStmt:
		c.expr(s.Target, sp)
		c.expr(s.Value, sp)
	case *ast.ImportStmt:
		for i := range s.Items {
			c.check(s.Items[i], sp)
		}
		c.check(s.Source, sp)
	case *ast.TypeStmt:
		c.typ(s.Type, sp)
	case *ast.ReturnStmt:
		if s.Value != nil {
			c.expr(s.Value, sp)
		}
	}
}

func (c *spanChecker) expr(x ast.Expr, parent source.Span) {
	if !c.check(x, parent) {
		return
	}
	sp := x.Span()
	switch e := x.(type) {
	case *ast.Binary:
		c.expr(e.Left, sp)
		c.expr(e.Right, sp)
	case *ast.Unary:
		c.expr(e.X, sp)
	case *ast.Call:
		c.expr(e.Callee, sp)
		for _, t := range e.TypeArgs {
			c.typ(t, sp)
		}
		for _, a := range e.Args {
			c.expr(a, sp)
		}
	case *ast.Member:
		c.expr(e.X, sp)
	case *ast.Index:
		c.expr(e.X, sp)
		c.expr(e.Index, sp)
	case *ast.ObjectLit:
		for _, f := range e.Fields {
			if c.check(f, sp) {
				c.expr(f.Value, f.Span())
			}
		}
	case *ast.ArrayLit:
		for _, it := range e.Items {
			c.expr(it, sp)
		}
	case *ast.FuncLit:
		for _, p := range e.Params {
			if c.check(p, sp) && p.Type != nil {
				c.typ(p.Type, p.Span())
			}
		}
		if e.Result != nil {
			c.typ(e.Result, sp)
		}
		c.expr(e.Body, sp)
	case *ast.Block:
		for _, st := range e.Stmts {
			c.stmt(st, sp)
		}
	case *ast.If:
		c.expr(e.Cond, sp)
		c.expr(e.Then, sp)
		if e.Else != nil {
			c.expr(e.Else, sp)
		}
	case *ast.While:
		c.expr(e.Cond, sp)
		c.expr(e.Body, sp)
	case *ast.For:
		c.expr(e.Iter, sp)
		c.expr(e.Body, sp)
	case *ast.Is:
		c.expr(e.X, sp)
		c.typ(e.Type, sp)
	}
}

func (c *spanChecker) typ(t ast.TypeExpr, parent source.Span) {
	if !c.check(t, parent) {
		return
	}
	sp := t.Span()
	switch x := t.(type) {
	case *ast.NamedType:
		for _, a := range x.Args {
			c.typ(a, sp)
		}
	case *ast.ObjectType:
		for _, f := range x.Fields {
			if c.check(f, sp) {
				c.typ(f.Type, f.Span())
			}
		}
	case *ast.ArrayType:
		c.typ(x.Item, sp)
	case *ast.FuncType:
		for _, p := range x.Params {
			c.typ(p, sp)
		}
		if x.Result != nil {
			c.typ(x.Result, sp)
		}
	case *ast.UnionType:
		c.typ(x.Left, sp)
		c.typ(x.Right, sp)
	case *ast.IntersectionType:
		c.typ(x.Left, sp)
		c.typ(x.Right, sp)
	}
}
