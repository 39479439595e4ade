package ir

import (
	"vsharp/internal/ast"
	"vsharp/internal/host"
	"vsharp/internal/project"
	"vsharp/internal/source"
	"vsharp/internal/types"
)

// Typed is a node of the fully resolved instruction tree.
type Typed interface {
	Span() source.Span
	Type() types.Tp
	typed()
}

// Info is the span and static type shared by every typed node.
type Info struct {
	Sp source.Span
	Tp types.Tp
}

func (i Info) Span() source.Span { return i.Sp }
func (i Info) Type() types.Tp    { return i.Tp }

type (
	// Lit is a constant; Value is int32, int64, float32, float64, string or bool.
	Lit struct {
		Info
		Value any
	}

	LoadVar struct {
		Info
		Slot int
	}

	StoreVar struct {
		Info
		Slot  int
		Value Typed
	}

	LoadArg struct {
		Info
		Index int
	}

	// Arith is + - * / % on operands that already share the result type.
	Arith struct {
		Info
		Op          ast.BinaryOp
		Left, Right Typed
	}

	// Compare yields bool; Operand is the common type of both sides.
	Compare struct {
		Info
		Op          ast.BinaryOp
		Operand     types.Tp
		Left, Right Typed
	}

	// Logic is short-circuit `and` / `or`.
	Logic struct {
		Info
		Op          ast.BinaryOp
		Left, Right Typed
	}

	Not struct {
		Info
		X Typed
	}

	Neg struct {
		Info
		X Typed
	}

	// Cast converts X to the numeric type in Info.
	Cast struct {
		Info
		X Typed
	}

	Cond struct {
		Info
		Cond Typed
		Then Typed
		Else Typed // nil without else
	}

	Loop struct {
		Info
		Cond, Body Typed
	}

	// ForEach iterates Iter using two hidden slots for the array and index.
	ForEach struct {
		Info
		Iter    Typed
		ArrSlot int
		IdxSlot int
		VarSlot int
		Body    Typed
	}

	// Seq evaluates Items in order; its value is the last item's.
	Seq struct {
		Info
		Items []Typed
	}

	Ret struct {
		Info
		Value Typed // nil for a bare return
	}

	BreakLoop struct {
		Info
	}

	ContinueLoop struct {
		Info
	}

	// CallScript calls a script function through its reserved handle.
	CallScript struct {
		Info
		Module project.Signature
		Name   string
		Handle host.FuncHandle
		Args   []Typed
	}

	// CallNative calls a host function. For methods the receiver is Args[0].
	CallNative struct {
		Info
		Fn   *host.Func
		Args []Typed
	}

	// NewObject builds an object literal; Fields follow Shape's field order.
	NewObject struct {
		Info
		Shape  types.Object
		Fields []Typed
	}

	NewArray struct {
		Info
		Items []Typed
	}

	// GetProp reads Name through the interface synthesized for Shape.
	GetProp struct {
		Info
		X     Typed
		Shape types.Object
		Name  string
	}

	SetProp struct {
		Info
		X     Typed
		Shape types.Object
		Name  string
		Value Typed
	}

	GetElem struct {
		Info
		X, Index Typed
	}

	SetElem struct {
		Info
		X, Index Typed
		Value    Typed
	}

	TypeTest struct {
		Info
		X      Typed
		Target types.Tp
	}

	// Contains is `Item in Container` for arrays and substrings.
	Contains struct {
		Info
		Container, Item Typed
	}
)

func (*Lit) typed()          {}
func (*LoadVar) typed()      {}
func (*StoreVar) typed()     {}
func (*LoadArg) typed()      {}
func (*Arith) typed()        {}
func (*Compare) typed()      {}
func (*Logic) typed()        {}
func (*Not) typed()          {}
func (*Neg) typed()          {}
func (*Cast) typed()         {}
func (*Cond) typed()         {}
func (*Loop) typed()         {}
func (*ForEach) typed()      {}
func (*Seq) typed()          {}
func (*Ret) typed()          {}
func (*BreakLoop) typed()    {}
func (*ContinueLoop) typed() {}
func (*CallScript) typed()   {}
func (*CallNative) typed()   {}
func (*NewObject) typed()    {}
func (*NewArray) typed()     {}
func (*GetProp) typed()      {}
func (*SetProp) typed()      {}
func (*GetElem) typed()      {}
func (*SetElem) typed()      {}
func (*TypeTest) typed()     {}
func (*Contains) typed()     {}

// IsConst reports whether t is a literal.
func IsConst(t Typed) bool {
	_, ok := t.(*Lit)
	return ok
}
