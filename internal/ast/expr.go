package ast

type BinaryOp uint8

const (
	OpAdd BinaryOp = iota + 1
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
	OpIn
)

var binaryNames = [...]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%",
	OpEq: "==", OpNe: "!=", OpLt: "<", OpLe: "<=", OpGt: ">", OpGe: ">=",
	OpAnd: "and", OpOr: "or", OpIn: "in",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryNames) {
		return binaryNames[op]
	}
	return "?"
}

// IsArithmetic reports + - * / %.
func (op BinaryOp) IsArithmetic() bool { return op >= OpAdd && op <= OpMod }

// IsComparison reports == != < <= > >=.
func (op BinaryOp) IsComparison() bool { return op >= OpEq && op <= OpGe }

type UnaryOp uint8

const (
	OpNeg UnaryOp = iota + 1
	OpNot
)

func (op UnaryOp) String() string {
	if op == OpNeg {
		return "-"
	}
	return "!"
}

type (
	Ident struct {
		Pos
		Name string
	}

	IntLit struct {
		Pos
		Value int64
	}

	FloatLit struct {
		Pos
		Value float64
	}

	StringLit struct {
		Pos
		Value string
	}

	BoolLit struct {
		Pos
		Value bool
	}

	Binary struct {
		Pos
		Op          BinaryOp
		Left, Right Expr
	}

	Unary struct {
		Pos
		Op UnaryOp
		X  Expr
	}

	Call struct {
		Pos
		Callee   Expr
		TypeArgs []TypeExpr
		Args     []Expr
	}

	// Member is `X.Name`: a property read or a module member.
	Member struct {
		Pos
		X    Expr
		Name string
	}

	Index struct {
		Pos
		X, Index Expr
	}

	// ObjectLit is `[a = 1, b = 2]`.
	ObjectLit struct {
		Pos
		Fields []FieldInit
	}

	ArrayLit struct {
		Pos
		Items []Expr
	}

	FuncLit struct {
		Pos
		Generics []string
		Params   []Param
		Result   TypeExpr // nil when inferred
		Body     *Block
	}

	Block struct {
		Pos
		Stmts []Stmt
	}

	If struct {
		Pos
		Cond Expr
		Then Expr
		Else Expr // nil without else
	}

	While struct {
		Pos
		Cond Expr
		Body Expr
	}

	For struct {
		Pos
		Var  string
		Iter Expr
		Body Expr
	}

	// Is is the runtime type test `X is Type`.
	Is struct {
		Pos
		X    Expr
		Type TypeExpr
	}
)

type FieldInit struct {
	Pos
	Name  string
	Value Expr
}

type Param struct {
	Pos
	Name string
	Type TypeExpr // nil when untyped
}

func (*Ident) exprNode()     {}
func (*IntLit) exprNode()    {}
func (*FloatLit) exprNode()  {}
func (*StringLit) exprNode() {}
func (*BoolLit) exprNode()   {}
func (*Binary) exprNode()    {}
func (*Unary) exprNode()     {}
func (*Call) exprNode()      {}
func (*Member) exprNode()    {}
func (*Index) exprNode()     {}
func (*ObjectLit) exprNode() {}
func (*ArrayLit) exprNode()  {}
func (*FuncLit) exprNode()   {}
func (*Block) exprNode()     {}
func (*If) exprNode()        {}
func (*While) exprNode()     {}
func (*For) exprNode()       {}
func (*Is) exprNode()        {}
