package ir

import (
	"strings"
	"testing"

	"vsharp/internal/ast"
	"vsharp/internal/types"
)

func TestDumpNestsChildren(t *testing.T) {
	sum := &Arith{
		Info:  Info{Tp: types.F64},
		Op:    ast.OpAdd,
		Left:  &Cast{Info: Info{Tp: types.F64}, X: &LoadArg{Info: Info{Tp: types.I32}, Index: 0}},
		Right: &Lit{Info: Info{Tp: types.F64}, Value: 2.0},
	}
	body := &Seq{Info: Info{Tp: types.F64}, Items: []Typed{
		&StoreVar{Info: Info{Tp: types.Void}, Slot: 0, Value: sum},
		&LoadVar{Info: Info{Tp: types.F64}, Slot: 0},
	}}

	var sb strings.Builder
	if err := Dump(&sb, body); err != nil {
		t.Fatalf("dump: %v", err)
	}
	want := strings.Join([]string{
		"block : f64",
		"  store $0",
		"    + : f64",
		"      cast i32 -> f64",
		"        arg #0 : i32",
		"      lit 2 : f64",
		"  load $0 : f64",
		"",
	}, "\n")
	if sb.String() != want {
		t.Fatalf("dump mismatch\n got:\n%s\nwant:\n%s", sb.String(), want)
	}
}

func TestParamTypesDefaultToAny(t *testing.T) {
	fn := &Function{Params: []Param{{Name: "a", Type: types.I32}, {Name: "b"}}}
	got := fn.ParamTypes()
	if !types.Equal(got[0], types.I32) || !types.Equal(got[1], types.Any) {
		t.Fatalf("param types = %v", got)
	}
}
