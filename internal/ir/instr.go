// Package ir holds the two instruction trees of the compiler: the untyped
// tree produced by the checker and the typed tree produced by inference.
package ir

import (
	"vsharp/internal/ast"
	"vsharp/internal/source"
	"vsharp/internal/symbols"
	"vsharp/internal/types"
)

// Instr is a node of the untyped instruction tree.
type Instr interface {
	Span() source.Span
	instr()
}

// Loc carries the source span of an untyped instruction.
type Loc struct {
	Sp source.Span
}

func (l Loc) Span() source.Span { return l.Sp }

type (
	// Const is a literal; Value is int32, int64, float64, string or bool.
	Const struct {
		Loc
		Value any
	}

	// Local reads a variable visible in the active scope chain.
	Local struct {
		Loc
		Name string
	}

	// FuncRef names a function declared in the current module.
	FuncRef struct {
		Loc
		Name string
	}

	// ModuleRef is an import binding. It is not a value.
	ModuleRef struct {
		Loc
		Alias string
		Desc  symbols.ModuleDescriptor
	}

	SetVar struct {
		Loc
		Name  string
		Value Instr
	}

	SetField struct {
		Loc
		X     Instr
		Name  string
		Value Instr
	}

	SetIndex struct {
		Loc
		X, Index Instr
		Value    Instr
	}

	Binary struct {
		Loc
		Op          ast.BinaryOp
		Left, Right Instr
	}

	Unary struct {
		Loc
		Op ast.UnaryOp
		X  Instr
	}

	// Invoke calls a function value: a FuncRef or an imported symbol.
	Invoke struct {
		Loc
		Callee   Instr
		TypeArgs []types.Tp
		Args     []Instr
	}

	// MethodCall is `Recv.Name(...)`: a module call when Recv is a
	// ModuleRef, an instance method call otherwise.
	MethodCall struct {
		Loc
		Recv     Instr
		Name     string
		TypeArgs []types.Tp
		Args     []Instr
	}

	Property struct {
		Loc
		X    Instr
		Name string
	}

	Index struct {
		Loc
		X, Index Instr
	}

	ObjectLit struct {
		Loc
		Fields []FieldValue
	}

	ArrayLit struct {
		Loc
		Items []Instr
	}

	Block struct {
		Loc
		Body []Instr
	}

	If struct {
		Loc
		Cond Instr
		Then Instr
		Else Instr // nil without else
	}

	While struct {
		Loc
		Cond, Body Instr
	}

	For struct {
		Loc
		Var  string
		Iter Instr
		Body Instr
	}

	// TypeCheck is the runtime test `X is Type`.
	TypeCheck struct {
		Loc
		X    Instr
		Type types.Tp
	}

	Return struct {
		Loc
		Value Instr // nil for a bare return
	}

	Break struct {
		Loc
	}

	Continue struct {
		Loc
	}
)

type FieldValue struct {
	Name  string
	Value Instr
}

func (*Const) instr()      {}
func (*Local) instr()      {}
func (*FuncRef) instr()    {}
func (*ModuleRef) instr()  {}
func (*SetVar) instr()     {}
func (*SetField) instr()   {}
func (*SetIndex) instr()   {}
func (*Binary) instr()     {}
func (*Unary) instr()      {}
func (*Invoke) instr()     {}
func (*MethodCall) instr() {}
func (*Property) instr()   {}
func (*Index) instr()      {}
func (*ObjectLit) instr()  {}
func (*ArrayLit) instr()   {}
func (*Block) instr()      {}
func (*If) instr()         {}
func (*While) instr()      {}
func (*For) instr()        {}
func (*TypeCheck) instr()  {}
func (*Return) instr()     {}
func (*Break) instr()      {}
func (*Continue) instr()   {}
