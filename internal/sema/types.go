package sema

import (
	"strings"

	"vsharp/internal/ast"
	"vsharp/internal/diag"
	"vsharp/internal/project"
	"vsharp/internal/symbols"
	"vsharp/internal/types"
)

func parseSignature(name string) (project.Signature, error) {
	return project.ParseSignature(name)
}

// resolveType turns an annotation into a Tp and reports its object shapes.
func (c *checker) resolveType(t ast.TypeExpr, generics map[string]int) (types.Tp, error) {
	tp, err := c.typeOf(t, generics)
	if err != nil {
		return nil, err
	}
	if c.opts.Shapes != nil {
		if err := c.opts.Shapes.Report(tp); err != nil {
			return nil, diag.BuildErrorf(diag.BldInternal, t.Span(), "%v", err)
		}
	}
	return tp, nil
}

func (c *checker) typeOf(t ast.TypeExpr, generics map[string]int) (types.Tp, error) {
	switch n := t.(type) {
	case *ast.NamedType:
		return c.namedType(n, generics)
	case *ast.ObjectType:
		fields := make([]types.Field, 0, len(n.Fields))
		for _, f := range n.Fields {
			ft, err := c.typeOf(f.Type, generics)
			if err != nil {
				return nil, err
			}
			fields = append(fields, types.Field{Name: f.Name, Type: ft})
		}
		return types.NewObject(fields...), nil
	case *ast.ArrayType:
		item, err := c.typeOf(n.Item, generics)
		if err != nil {
			return nil, err
		}
		return types.Array{Item: item}, nil
	case *ast.UnionType:
		l, r, err := c.typePair(n.Left, n.Right, generics)
		if err != nil {
			return nil, err
		}
		return types.Join(l, r), nil
	case *ast.IntersectionType:
		l, r, err := c.typePair(n.Left, n.Right, generics)
		if err != nil {
			return nil, err
		}
		return types.Intersect(l, r), nil
	case *ast.FuncType:
		return nil, diag.CompileErrorf(diag.ChkUnsupportedType, n.Span(), "function types are not supported in annotations")
	}
	return nil, diag.CompileErrorf(diag.ChkUnsupportedType, t.Span(), "unsupported type form %T", t)
}

func (c *checker) typePair(l, r ast.TypeExpr, generics map[string]int) (types.Tp, types.Tp, error) {
	lt, err := c.typeOf(l, generics)
	if err != nil {
		return nil, nil, err
	}
	rt, err := c.typeOf(r, generics)
	if err != nil {
		return nil, nil, err
	}
	return lt, rt, nil
}

func (c *checker) namedType(n *ast.NamedType, generics map[string]int) (types.Tp, error) {
	args := make([]types.Tp, 0, len(n.Args))
	for _, a := range n.Args {
		at, err := c.typeOf(a, generics)
		if err != nil {
			return nil, err
		}
		args = append(args, at)
	}
	if len(n.Path) > 1 {
		return c.nativeType(n, args)
	}
	name := n.Path[0]
	if idx, ok := generics[name]; ok {
		if len(args) > 0 {
			return nil, diag.CompileErrorf(diag.ChkGenericArity, n.Span(), "type parameter %s takes no arguments", name)
		}
		return types.Generic{Index: idx}, nil
	}
	def, ok := c.out.Types[name]
	if !ok {
		return nil, diag.CompileErrorf(diag.ChkUnknownType, n.Span(), "unknown type %q", name)
	}
	if len(args) != def.Generics {
		return nil, diag.CompileErrorf(diag.ChkGenericArity, n.Span(),
			"type %s expects %d type arguments, got %d", name, def.Generics, len(args))
	}
	if def.Generics == 0 {
		return def.Type, nil
	}
	return types.WithTypeArguments(def.Type, args), nil
}

// nativeType resolves `Alias.Type` where Alias imports a host namespace.
func (c *checker) nativeType(n *ast.NamedType, args []types.Tp) (types.Tp, error) {
	desc, ok := c.imports.Lookup(n.Path[0])
	if !ok {
		return nil, diag.CompileErrorf(diag.ChkUnknownType, n.Span(), "unknown module %q in type", n.Path[0])
	}
	var sig project.Signature
	switch d := desc.(type) {
	case symbols.Native:
		sig = d.Sig
	case symbols.SymbolAccess:
		native, ok := d.Parent.(symbols.Native)
		if !ok {
			return nil, diag.CompileErrorf(diag.ChkUnsupportedType, n.Span(), "types of script modules cannot be referenced")
		}
		sig = native.Sig.Join(d.Name)
	default:
		return nil, diag.CompileErrorf(diag.ChkUnsupportedType, n.Span(), "types of script modules cannot be referenced")
	}
	if c.opts.Registry == nil {
		return nil, diag.CompileErrorf(diag.ChkUnknownType, n.Span(), "no native registry for %s", sig)
	}
	rt, ok := c.opts.Registry.LookupType(sig, n.Path[1:])
	if !ok {
		return nil, diag.CompileErrorf(diag.ChkUnknownType, n.Span(), "unknown native type %s.%s", sig, strings.Join(n.Path[1:], "."))
	}
	return types.NominalOf(rt, args...), nil
}
