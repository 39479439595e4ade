// Package ast is the untyped syntax tree produced by the parser and consumed
// by the checker. Node sets are closed: Stmt, Expr and TypeExpr are sealed
// by unexported marker methods.
package ast

import (
	"vsharp/internal/project"
	"vsharp/internal/source"
)

type Node interface {
	Span() source.Span
}

type Stmt interface {
	Node
	stmtNode()
}

type Expr interface {
	Node
	exprNode()
}

type TypeExpr interface {
	Node
	typeNode()
}

// Pos is embedded by every node.
type Pos struct {
	Sp source.Span
}

func (p Pos) Span() source.Span { return p.Sp }

// Module is one parsed source file.
type Module struct {
	Sig   project.Signature
	File  source.FileID
	Stmts []Stmt
}

type (
	// ExprStmt evaluates X for its value or side effects.
	ExprStmt struct {
		Pos
		X Expr
	}

	// SetStmt is `set Target = Value`; Target is Ident, Member or Index.
	SetStmt struct {
		Pos
		Target Expr
		Value  Expr
	}

	// ImportStmt is either `import { a, b } from src` (Items set) or
	// `import src [as Alias]`.
	ImportStmt struct {
		Pos
		Items  []ImportItem
		Source ImportSource
		Alias  string
	}

	// TypeStmt is `type Name<G...> = Type`.
	TypeStmt struct {
		Pos
		Name     string
		Generics []string
		Type     TypeExpr
	}

	ReturnStmt struct {
		Pos
		Value Expr // nil for a bare return
	}

	BreakStmt struct {
		Pos
	}

	ContinueStmt struct {
		Pos
	}
)

type ImportItem struct {
	Pos
	Name string
}

// ImportSource is a quoted relative path or a dotted host namespace.
type ImportSource struct {
	Pos
	Path      string
	Namespace string
}

// IsScript reports whether the source is a quoted path.
func (s ImportSource) IsScript() bool { return s.Path != "" }

func (*ExprStmt) stmtNode()     {}
func (*SetStmt) stmtNode()      {}
func (*ImportStmt) stmtNode()   {}
func (*TypeStmt) stmtNode()     {}
func (*ReturnStmt) stmtNode()   {}
func (*BreakStmt) stmtNode()    {}
func (*ContinueStmt) stmtNode() {}
