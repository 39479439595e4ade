package parser

import (
	"testing"

	"vsharp/internal/ast"
	"vsharp/internal/diag"
	"vsharp/internal/project"
	"vsharp/internal/source"
	"vsharp/internal/testkit"
)

func parse(t *testing.T, src string) *ast.Module {
	t.Helper()
	mod, err := ParseSource(source.NewFileSet(), "test.vs", []byte(src), project.MustSignature("test"))
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return mod
}

func parseErr(t *testing.T, src string) *diag.Error {
	t.Helper()
	_, err := ParseSource(source.NewFileSet(), "test.vs", []byte(src), project.MustSignature("test"))
	if err == nil {
		t.Fatalf("parse %q: expected error", src)
	}
	de, ok := diag.AsError(err)
	if !ok {
		t.Fatalf("parse %q: error %v is not a diag.Error", src, err)
	}
	return de
}

func onlyExpr(t *testing.T, src string) ast.Expr {
	t.Helper()
	mod := parse(t, src)
	if len(mod.Stmts) != 1 {
		t.Fatalf("%q: expected 1 statement, got %d", src, len(mod.Stmts))
	}
	st, ok := mod.Stmts[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("%q: expected expression statement, got %T", src, mod.Stmts[0])
	}
	return st.X
}

func TestPrecedence(t *testing.T) {
	tests := []struct {
		src  string
		root ast.BinaryOp
	}{
		{"1 + 2 * 3", ast.OpAdd},
		{"1 * 2 + 3", ast.OpAdd},
		{"a or b and c", ast.OpOr},
		{"a == b < c", ast.OpEq},
		{"x in xs and y", ast.OpAnd},
		{"1 - 2 - 3", ast.OpSub},
	}
	for _, tt := range tests {
		bin, ok := onlyExpr(t, tt.src).(*ast.Binary)
		if !ok {
			t.Fatalf("%q: expected binary expression", tt.src)
		}
		if bin.Op != tt.root {
			t.Errorf("%q: root op = %s, want %s", tt.src, bin.Op, tt.root)
		}
	}
}

func TestLeftAssociative(t *testing.T) {
	bin := onlyExpr(t, "1 - 2 - 3").(*ast.Binary)
	left, ok := bin.Left.(*ast.Binary)
	if !ok || left.Op != ast.OpSub {
		t.Fatalf("expected (1 - 2) - 3, got left %T", bin.Left)
	}
	if lit, ok := bin.Right.(*ast.IntLit); !ok || lit.Value != 3 {
		t.Fatalf("right operand = %#v", bin.Right)
	}
}

func TestLiterals(t *testing.T) {
	if lit := onlyExpr(t, "1_000_000").(*ast.IntLit); lit.Value != 1000000 {
		t.Errorf("int literal = %d", lit.Value)
	}
	if lit := onlyExpr(t, "2.5e1").(*ast.FloatLit); lit.Value != 25 {
		t.Errorf("float literal = %v", lit.Value)
	}
	if lit := onlyExpr(t, `"a\tb"`).(*ast.StringLit); lit.Value != "a\tb" {
		t.Errorf("string literal = %q", lit.Value)
	}
	if lit := onlyExpr(t, "false").(*ast.BoolLit); lit.Value {
		t.Errorf("bool literal = true")
	}
}

func TestBracketLiterals(t *testing.T) {
	obj, ok := onlyExpr(t, "[b = 1, a = \"x\",]").(*ast.ObjectLit)
	if !ok || len(obj.Fields) != 2 || obj.Fields[0].Name != "b" {
		t.Fatalf("object literal = %#v", obj)
	}
	arr, ok := onlyExpr(t, "[1, 2, 3]").(*ast.ArrayLit)
	if !ok || len(arr.Items) != 3 {
		t.Fatalf("array literal = %#v", arr)
	}
	empty, ok := onlyExpr(t, "[]").(*ast.ArrayLit)
	if !ok || len(empty.Items) != 0 {
		t.Fatalf("empty array literal = %#v", empty)
	}
}

func TestFuncDeclSugar(t *testing.T) {
	mod := parse(t, "func id<T>(x: T): T { return x }")
	set, ok := mod.Stmts[0].(*ast.SetStmt)
	if !ok {
		t.Fatalf("expected set statement, got %T", mod.Stmts[0])
	}
	if id, ok := set.Target.(*ast.Ident); !ok || id.Name != "id" {
		t.Fatalf("target = %#v", set.Target)
	}
	fn := set.Value.(*ast.FuncLit)
	if len(fn.Generics) != 1 || fn.Generics[0] != "T" {
		t.Errorf("generics = %v", fn.Generics)
	}
	if len(fn.Params) != 1 || fn.Params[0].Name != "x" || fn.Params[0].Type == nil {
		t.Errorf("params = %#v", fn.Params)
	}
	if fn.Result == nil || len(fn.Body.Stmts) != 1 {
		t.Errorf("result/body not parsed")
	}
	if _, ok := fn.Body.Stmts[0].(*ast.ReturnStmt); !ok {
		t.Errorf("body[0] = %T, want return", fn.Body.Stmts[0])
	}
}

func TestCalls(t *testing.T) {
	call := onlyExpr(t, "Console.print(1, x)").(*ast.Call)
	if m, ok := call.Callee.(*ast.Member); !ok || m.Name != "print" {
		t.Fatalf("callee = %#v", call.Callee)
	}
	if len(call.Args) != 2 {
		t.Fatalf("args = %d", len(call.Args))
	}

	generic := onlyExpr(t, "id<i32>(5)").(*ast.Call)
	if len(generic.TypeArgs) != 1 {
		t.Fatalf("type args = %d", len(generic.TypeArgs))
	}

	cmp := onlyExpr(t, "a<b").(*ast.Binary)
	if cmp.Op != ast.OpLt {
		t.Fatalf("a<b parsed as %s", cmp.Op)
	}
}

func TestNewlineEndsCall(t *testing.T) {
	mod := parse(t, "f\n(1 + 2)")
	if len(mod.Stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(mod.Stmts))
	}
}

func TestControlFlow(t *testing.T) {
	ifx := onlyExpr(t, "if (x > 1) { 1 } else 2").(*ast.If)
	if _, ok := ifx.Then.(*ast.Block); !ok || ifx.Else == nil {
		t.Fatalf("if = %#v", ifx)
	}
	loop := onlyExpr(t, "while (i < 10) set i = i + 1").(*ast.While)
	if blk, ok := loop.Body.(*ast.Block); !ok || len(blk.Stmts) != 1 {
		t.Fatalf("while body = %#v", loop.Body)
	}
	fr := onlyExpr(t, "for (x in [1, 2]) { x }").(*ast.For)
	if fr.Var != "x" {
		t.Fatalf("for var = %q", fr.Var)
	}
}

func TestIsExpr(t *testing.T) {
	is := onlyExpr(t, "v is [name: str] | i32").(*ast.Is)
	if _, ok := is.Type.(*ast.UnionType); !ok {
		t.Fatalf("is type = %T", is.Type)
	}
}

func TestImports(t *testing.T) {
	mod := parse(t, `import {add, sub} from "./lib/math.vs"
import System.Console
import "./util.vs" as u`)
	sel := mod.Stmts[0].(*ast.ImportStmt)
	if len(sel.Items) != 2 || !sel.Source.IsScript() || sel.Source.Path != "./lib/math.vs" {
		t.Errorf("selective import = %#v", sel)
	}
	ns := mod.Stmts[1].(*ast.ImportStmt)
	if ns.Source.Namespace != "System.Console" || ns.Alias != "Console" {
		t.Errorf("namespace import = %#v", ns)
	}
	aliased := mod.Stmts[2].(*ast.ImportStmt)
	if aliased.Alias != "u" {
		t.Errorf("alias = %q", aliased.Alias)
	}
}

func TestTypeStmt(t *testing.T) {
	mod := parse(t, "type Pair<A, B> = [first: A, second: B] & [tag: str]")
	ts := mod.Stmts[0].(*ast.TypeStmt)
	if ts.Name != "Pair" || len(ts.Generics) != 2 {
		t.Fatalf("type stmt = %#v", ts)
	}
	inter, ok := ts.Type.(*ast.IntersectionType)
	if !ok {
		t.Fatalf("type = %T", ts.Type)
	}
	if obj, ok := inter.Left.(*ast.ObjectType); !ok || len(obj.Fields) != 2 {
		t.Fatalf("left = %#v", inter.Left)
	}
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		src  string
		code diag.Code
	}{
		{"set 1 = 2", diag.SynBadAssignTarget},
		{"1 +", diag.SynExpectExpression},
		{"{ 1", diag.SynUnclosedDelimiter},
		{"f(1, 2", diag.SynUnclosedDelimiter},
		{"type T = 1", diag.SynExpectType},
		{"import {} from \"./a.vs\"", diag.SynBadImport},
		{"99999999999999999999", diag.LexBadNumber},
	}
	for _, tt := range tests {
		err := parseErr(t, tt.src)
		if err.Code != tt.code {
			t.Errorf("%q: code = %s, want %s", tt.src, err.Code, tt.code)
		}
		if err.Kind != diag.KindParse {
			t.Errorf("%q: kind = %v", tt.src, err.Kind)
		}
	}
}

func TestSpanInvariants(t *testing.T) {
	tests := []string{
		"set x = 1 + 2 * 3",
		"func f<T>(a: T, b: [x: i32, y: [str]]): i32 | f64 { return a }",
		"import { Max } from System.Math\nimport \"./util.vs\" as u",
		"type Pair<T> = [first: T, second: T]",
		"for (p in [[x = 1], [x = 2]]) { set total = total + p.x }",
		"while (i < 10) set i = i + 1; if (x is i32 & str) -x else !y",
		"set g = func(h: func(i32): i32) { h(2) }; g(func(n: i32) { n })[0]",
	}
	for _, src := range tests {
		fs := source.NewFileSet()
		mod, err := ParseSource(fs, "test.vs", []byte(src), project.MustSignature("test"))
		if err != nil {
			t.Fatalf("parse %q: %v", src, err)
		}
		if err := testkit.CheckSpans(mod, fs.Get(mod.File)); err != nil {
			t.Errorf("%q: %v", src, err)
		}
	}
}
