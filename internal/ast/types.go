package ast

type (
	// NamedType is a dotted reference with optional generic arguments.
	NamedType struct {
		Pos
		Path []string
		Args []TypeExpr
	}

	ObjectType struct {
		Pos
		Fields []FieldType
	}

	ArrayType struct {
		Pos
		Item TypeExpr
	}

	FuncType struct {
		Pos
		Params []TypeExpr
		Result TypeExpr
	}

	UnionType struct {
		Pos
		Left, Right TypeExpr
	}

	IntersectionType struct {
		Pos
		Left, Right TypeExpr
	}
)

type FieldType struct {
	Pos
	Name string
	Type TypeExpr
}

func (*NamedType) typeNode()        {}
func (*ObjectType) typeNode()       {}
func (*ArrayType) typeNode()        {}
func (*FuncType) typeNode()         {}
func (*UnionType) typeNode()        {}
func (*IntersectionType) typeNode() {}
