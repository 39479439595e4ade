package host

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"vsharp/internal/project"
	"vsharp/internal/types"
)

func stdRegistry(t *testing.T) (*Registry, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	r, err := NewStdRegistry(&out)
	if err != nil {
		t.Fatalf("NewStdRegistry: %v", err)
	}
	return r, &out
}

func TestResolveLongestPrefix(t *testing.T) {
	r, _ := stdRegistry(t)
	ns, rest, err := r.Resolve(project.MustSignature("System.Strings.Builder"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if ns.Sig.String() != "System.Strings" || len(rest) != 1 || rest[0] != "Builder" {
		t.Fatalf("resolved %s rest %v", ns.Sig, rest)
	}
	if _, _, err := r.Resolve(project.MustSignature("Nope.Module")); !errors.Is(err, ErrNoNamespace) {
		t.Fatalf("expected ErrNoNamespace, got %v", err)
	}
}

func TestFuncSignaturesComeFromReflect(t *testing.T) {
	r, _ := stdRegistry(t)
	fns, err := r.Funcs(project.MustSignature("System.Math"), "Max")
	if err != nil || len(fns) != 1 {
		t.Fatalf("Max lookup: %v %v", fns, err)
	}
	maxFn := fns[0]
	if len(maxFn.Params) != 2 || !types.Equal(maxFn.Params[0], types.I32) || !types.Equal(maxFn.Result, types.I32) {
		t.Fatalf("Max signature = %v -> %v", maxFn.Params, maxFn.Result)
	}
	got, err := maxFn.Call([]any{int32(3), int32(9)})
	if err != nil || got != int32(9) {
		t.Fatalf("Max(3, 9) = %v, %v", got, err)
	}
}

func TestCallConvertsNumbersAndReportsErrors(t *testing.T) {
	r, out := stdRegistry(t)
	fns, _ := r.Funcs(project.MustSignature("System.Console"), "WriteInt")
	if _, err := fns[0].Call([]any{int32(42)}); err != nil {
		t.Fatalf("WriteInt: %v", err)
	}
	if out.String() != "42\n" {
		t.Fatalf("console output = %q", out.String())
	}

	toInt, _ := r.Funcs(project.MustSignature("System.Strings"), "ToInt")
	if !types.Equal(toInt[0].Result, types.I32) {
		t.Fatalf("ToInt result = %s", toInt[0].Result)
	}
	if _, err := toInt[0].Call([]any{"abc"}); err == nil {
		t.Fatalf("ToInt(\"abc\") should fail")
	}
}

func TestMethodsIncludeReflectAndExtensions(t *testing.T) {
	r, _ := stdRegistry(t)
	builder := reflect.TypeFor[*StringBuilder]()
	appendFn := r.Methods(builder, "Append")
	if len(appendFn) != 1 || !appendFn[0].Method {
		t.Fatalf("Append methods = %v", appendFn)
	}
	if appendFn[0].Qualified != "System.Strings.Builder::Append" {
		t.Fatalf("qualified = %q", appendFn[0].Qualified)
	}
	if f, ok := r.ByName("System.Strings.Builder::String"); !ok || !types.Equal(f.Result, types.Str) {
		t.Fatalf("ByName String = %v %v", f, ok)
	}

	upper := r.Methods(reflect.TypeFor[string](), "upper")
	if len(upper) != 1 {
		t.Fatalf("str.upper not registered")
	}
	got, err := upper[0].Call([]any{"abc"})
	if err != nil || got != "ABC" {
		t.Fatalf("upper = %v, %v", got, err)
	}
	if f, ok := r.ByName("str::contains"); !ok || f.Arity() != 2 {
		t.Fatalf("ByName str::contains = %v %v", f, ok)
	}
}

func TestBuilderImplement(t *testing.T) {
	b := NewBuilder()
	sig := project.MustSignature("main")
	initH := b.DefineModule(sig)
	h, err := b.DefineFunction(sig, "add")
	if err != nil {
		t.Fatalf("DefineFunction: %v", err)
	}
	if initH == h {
		t.Fatalf("init and add share handle %d", h)
	}
	if _, err := b.DefineFunction(sig, "add"); err == nil {
		t.Fatalf("duplicate function should fail")
	}

	c := b.DefineClass("{a, b}", []string{"a", "b"})
	i := b.DefineInterface("{b}", []string{"b"})
	if err := b.Implement(c, i); err != nil {
		t.Fatalf("Implement: %v", err)
	}
	if !c.Implements(i.ID) || c.Impl[i.ID][0] != 1 {
		t.Fatalf("impl = %v", c.Impl)
	}
	missing := b.DefineInterface("{z}", []string{"z"})
	if err := b.Implement(c, missing); err == nil {
		t.Fatalf("Implement with missing field should fail")
	}
}
