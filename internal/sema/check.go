// Package sema is stage 1 of the compiler: it resolves names, imports and
// type annotations in a parsed module and lowers it to the untyped
// instruction tree.
package sema

import (
	"vsharp/internal/ast"
	"vsharp/internal/diag"
	"vsharp/internal/host"
	"vsharp/internal/ir"
	"vsharp/internal/source"
	"vsharp/internal/symbols"
	"vsharp/internal/types"
)

// ShapeSink receives every annotated type so the interface forge learns
// the object shapes it mentions.
type ShapeSink interface {
	Report(t types.Tp) error
}

// Options configure a checker run.
type Options struct {
	Registry *host.Registry // resolves native types in annotations
	Builder  *host.Builder  // reserves function handles
	Shapes   ShapeSink      // optional
}

// Check lowers mod to an ir.Module. The first error aborts the module.
func Check(mod *ast.Module, opts Options) (*ir.Module, error) {
	if opts.Builder == nil {
		opts.Builder = host.NewBuilder()
	}
	c := &checker{
		opts:     opts,
		out:      ir.NewModule(mod.Sig),
		imports:  symbols.NewImports(),
		declared: make(map[*ast.FuncLit]*ir.Function),
	}
	for name, tp := range types.Primitives {
		c.out.Types[name] = &ir.TypeDef{Type: tp}
	}
	initHandle := opts.Builder.DefineModule(mod.Sig)
	c.out.InitFn = &ir.Function{Name: host.InitName, Module: mod.Sig, Handle: initHandle}

	// Top-level functions are visible everywhere in the module, including
	// the initializer statements that precede them.
	for _, st := range mod.Stmts {
		if set, ok := st.(*ast.SetStmt); ok {
			if _, err := c.declareIfFunction(set); err != nil {
				return nil, err
			}
		}
	}

	init, err := c.checkStmts(mod.Stmts, symbols.NewScope(), source.Span{File: mod.File})
	if err != nil {
		return nil, err
	}
	c.out.Init = init
	c.out.InitFn.Body = init

	for len(c.pending) > 0 {
		p := c.pending[0]
		c.pending = c.pending[1:]
		if err := c.checkFunctionBody(p); err != nil {
			return nil, err
		}
	}
	return c.out, nil
}

type pendingFunc struct {
	fn       *ir.Function
	lit      *ast.FuncLit
	generics map[string]int
}

type checker struct {
	opts     Options
	out      *ir.Module
	imports  *symbols.Imports
	declared map[*ast.FuncLit]*ir.Function
	pending  []pendingFunc

	generics  map[string]int // generic names of the function being checked
	inFunc    bool
	loopDepth int
}

// declareIfFunction registers `set name = func ...` and defers its body.
func (c *checker) declareIfFunction(set *ast.SetStmt) (*ir.Function, error) {
	lit, ok := set.Value.(*ast.FuncLit)
	if !ok {
		return nil, nil
	}
	if fn, done := c.declared[lit]; done {
		return fn, nil
	}
	target, ok := set.Target.(*ast.Ident)
	if !ok {
		return nil, diag.CompileErrorf(diag.ChkUnsupportedLiteral, set.Span(), "a function can only be bound to a name")
	}
	if _, dup := c.out.Functions[target.Name]; dup {
		return nil, diag.CompileErrorf(diag.ChkDuplicateFunction, target.Span(), "function %q is already declared", target.Name)
	}
	generics := make(map[string]int, len(lit.Generics))
	for i, g := range lit.Generics {
		generics[g] = i
	}
	fn := &ir.Function{
		Name:     target.Name,
		Module:   c.out.Sig,
		Span:     set.Span(),
		Generics: len(lit.Generics),
	}
	for _, p := range lit.Params {
		param := ir.Param{Name: p.Name}
		if p.Type != nil {
			tp, err := c.resolveType(p.Type, generics)
			if err != nil {
				return nil, err
			}
			param.Type = tp
		}
		fn.Params = append(fn.Params, param)
	}
	if lit.Result != nil {
		tp, err := c.resolveType(lit.Result, generics)
		if err != nil {
			return nil, err
		}
		fn.Result = tp
	}
	handle, err := c.opts.Builder.DefineFunction(c.out.Sig, fn.Name)
	if err != nil {
		return nil, diag.CompileErrorf(diag.ChkDuplicateFunction, target.Span(), "%v", err)
	}
	fn.Handle = handle
	c.out.Functions[fn.Name] = fn
	c.out.Order = append(c.out.Order, fn.Name)
	c.declared[lit] = fn
	c.pending = append(c.pending, pendingFunc{fn: fn, lit: lit, generics: generics})
	return fn, nil
}

// checkFunctionBody checks a deferred body in a fresh scope holding only
// the parameters.
func (c *checker) checkFunctionBody(p pendingFunc) error {
	scope := symbols.NewScope()
	for _, param := range p.fn.Params {
		scope.Add(param.Name)
	}
	c.generics, c.inFunc, c.loopDepth = p.generics, true, 0
	defer func() { c.generics, c.inFunc = nil, false }()

	body, err := c.checkStmts(p.lit.Body.Stmts, scope, p.lit.Body.Span())
	if err != nil {
		return err
	}
	p.fn.Body = body
	return nil
}

func (c *checker) checkStmts(stmts []ast.Stmt, scope *symbols.ScopedNames, sp source.Span) (*ir.Block, error) {
	blk := &ir.Block{Loc: ir.Loc{Sp: sp}}
	for _, st := range stmts {
		in, err := c.checkStmt(st, scope)
		if err != nil {
			return nil, err
		}
		if in != nil {
			blk.Body = append(blk.Body, in)
		}
	}
	return blk, nil
}

func (c *checker) checkStmt(st ast.Stmt, scope *symbols.ScopedNames) (ir.Instr, error) {
	loc := ir.Loc{Sp: st.Span()}
	switch s := st.(type) {
	case *ast.ExprStmt:
		return c.checkValue(s.X, scope)
	case *ast.SetStmt:
		return c.checkSet(s, scope)
	case *ast.ImportStmt:
		return nil, c.checkImport(s)
	case *ast.TypeStmt:
		return nil, c.checkTypeStmt(s)
	case *ast.ReturnStmt:
		if !c.inFunc {
			return nil, diag.CompileErrorf(diag.ChkUnsupportedStmt, s.Span(), "return outside of a function")
		}
		ret := &ir.Return{Loc: loc}
		if s.Value != nil {
			v, err := c.checkValue(s.Value, scope)
			if err != nil {
				return nil, err
			}
			ret.Value = v
		}
		return ret, nil
	case *ast.BreakStmt:
		if c.loopDepth == 0 {
			return nil, diag.CompileErrorf(diag.ChkJumpOutsideLoop, s.Span(), "break outside of a loop")
		}
		return &ir.Break{Loc: loc}, nil
	case *ast.ContinueStmt:
		if c.loopDepth == 0 {
			return nil, diag.CompileErrorf(diag.ChkJumpOutsideLoop, s.Span(), "continue outside of a loop")
		}
		return &ir.Continue{Loc: loc}, nil
	}
	return nil, diag.CompileErrorf(diag.ChkUnsupportedStmt, st.Span(), "unsupported statement %T", st)
}

func (c *checker) checkSet(s *ast.SetStmt, scope *symbols.ScopedNames) (ir.Instr, error) {
	loc := ir.Loc{Sp: s.Span()}
	if _, ok := s.Value.(*ast.FuncLit); ok {
		if _, err := c.declareIfFunction(s); err != nil {
			return nil, err
		}
		return nil, nil
	}
	value, err := c.checkValue(s.Value, scope)
	if err != nil {
		return nil, err
	}
	switch t := s.Target.(type) {
	case *ast.Ident:
		scope.Add(t.Name)
		return &ir.SetVar{Loc: loc, Name: t.Name, Value: value}, nil
	case *ast.Member:
		x, err := c.checkValue(t.X, scope)
		if err != nil {
			return nil, err
		}
		return &ir.SetField{Loc: loc, X: x, Name: t.Name, Value: value}, nil
	case *ast.Index:
		x, err := c.checkValue(t.X, scope)
		if err != nil {
			return nil, err
		}
		idx, err := c.checkValue(t.Index, scope)
		if err != nil {
			return nil, err
		}
		return &ir.SetIndex{Loc: loc, X: x, Index: idx, Value: value}, nil
	}
	return nil, diag.CompileErrorf(diag.ChkUnsupportedStmt, s.Target.Span(), "cannot assign to %T", s.Target)
}

func (c *checker) checkImport(s *ast.ImportStmt) error {
	var parent symbols.ModuleDescriptor
	if s.Source.IsScript() {
		parent = symbols.Script{Path: s.Source.Path}
	} else {
		sig, err := parseSignature(s.Source.Namespace)
		if err != nil {
			return diag.CompileErrorf(diag.ChkUnsupportedType, s.Source.Span(), "%v", err)
		}
		parent = symbols.Native{Sig: sig}
	}
	if s.Items == nil {
		if !c.imports.Bind(s.Alias, parent) {
			return diag.CompileErrorf(diag.ChkDuplicateImport, s.Span(), "%q is already imported", s.Alias)
		}
		return nil
	}
	for _, item := range s.Items {
		if !c.imports.Bind(item.Name, symbols.SymbolAccess{Name: item.Name, Parent: parent}) {
			return diag.CompileErrorf(diag.ChkDuplicateImport, item.Span(), "%q is already imported", item.Name)
		}
	}
	return nil
}

func (c *checker) checkTypeStmt(s *ast.TypeStmt) error {
	if _, dup := c.out.Types[s.Name]; dup {
		return diag.CompileErrorf(diag.ChkDuplicateType, s.Span(), "type %q is already defined", s.Name)
	}
	generics := make(map[string]int, len(s.Generics))
	for i, g := range s.Generics {
		generics[g] = i
	}
	tp, err := c.resolveType(s.Type, generics)
	if err != nil {
		return err
	}
	c.out.Types[s.Name] = &ir.TypeDef{Type: tp, Generics: len(s.Generics)}
	return nil
}
