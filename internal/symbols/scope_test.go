package symbols

import (
	"testing"

	"vsharp/internal/project"
)

func TestScopedNamesWalkParents(t *testing.T) {
	root := NewScope()
	root.Add("a")
	child := root.Child()
	child.Add("b")
	grandchild := child.Child()

	if !grandchild.Has("a") || !grandchild.Has("b") {
		t.Fatalf("lookup did not walk up the chain")
	}
	if root.Has("b") {
		t.Fatalf("child name leaked into parent")
	}
	if grandchild.HasLocal("a") {
		t.Fatalf("HasLocal walked up")
	}
	if grandchild.Parent() != child {
		t.Fatalf("Parent mismatch")
	}
}

func TestImportsRejectDuplicateAlias(t *testing.T) {
	im := NewImports()
	sys := Native{Sig: project.MustSignature("System")}
	if !im.Bind("Console", SymbolAccess{Name: "Console", Parent: sys}) {
		t.Fatalf("first bind failed")
	}
	if im.Bind("Console", Script{Path: "./console.vs"}) {
		t.Fatalf("duplicate alias accepted")
	}
	d, ok := im.Lookup("Console")
	if !ok || d.String() != "System::Console" {
		t.Fatalf("Lookup = %v, %v", d, ok)
	}
}

func TestScriptSignature(t *testing.T) {
	sig, err := ScriptSignature(Script{Path: "./lib/math.vs"})
	if err != nil || sig.String() != "lib.math" {
		t.Fatalf("ScriptSignature = %v, %v", sig, err)
	}
}
