package bytecode

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"vsharp/internal/host"
)

func sampleProgram(t *testing.T) *Program {
	t.Helper()
	b := NewFuncBuilder("main", "max", 2, 0)
	elseL, endL := b.NewLabel(), b.NewLabel()
	b.Emit(OpLoadArg, 0, 0)
	b.Emit(OpLoadArg, 1, 0)
	b.Emit(OpGt, 0, int32(KindI32))
	b.Jump(OpJumpIfFalse, elseL)
	b.Emit(OpLoadArg, 0, 0)
	b.Jump(OpJump, endL)
	b.Mark(elseL)
	b.Emit(OpLoadArg, 1, 0)
	b.Mark(endL)
	b.Emit(OpRet, 0, 0)
	maxFn, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	ib := NewFuncBuilder("main", host.InitName, 0, 1)
	c7, _ := ConstOf(int32(7))
	ib.Const(c7)
	ib.Const(c7)
	ib.Emit(OpCall, 1, 2)
	ib.Emit(OpStoreLocal, 0, 0)
	s, _ := ConstOf("done")
	ib.Const(s)
	ib.Emit(OpCallNative, 0, 1)
	ib.Emit(OpRetVoid, 0, 0)
	initFn, err := ib.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	p := NewProgram()
	p.Funcs = []*Function{initFn, maxFn}
	p.Modules = []Module{{Name: "main", Init: 0, Funcs: map[string]int32{"max": 1}}}
	p.Natives = []string{"System.Console.WriteLine"}
	p.Classes = []*host.Class{{ID: 0, Name: "[x: i32]", Fields: []string{"x"}, Impl: map[int][]int{0: {0}}}}
	p.Interfaces = []*host.Interface{{ID: 0, Name: "[x: i32]", Props: []string{"x"}}}
	return p
}

func TestBuilderPatchesLabels(t *testing.T) {
	fn := sampleProgram(t).Funcs[1]
	if got := fn.Code[3]; got.Op != OpJumpIfFalse || got.A != 6 {
		t.Fatalf("jump.false = %+v, want target 6", got)
	}
	if got := fn.Code[5]; got.Op != OpJump || got.A != 7 {
		t.Fatalf("jump = %+v, want target 7", got)
	}
	if len(fn.Spans) != len(fn.Code) {
		t.Fatalf("%d spans for %d instructions", len(fn.Spans), len(fn.Code))
	}
}

func TestBuilderUnplacedLabel(t *testing.T) {
	b := NewFuncBuilder("m", "f", 0, 0)
	b.Jump(OpJump, b.NewLabel())
	if _, err := b.Finish(); err == nil {
		t.Fatalf("expected error for unplaced label")
	}
}

func TestConstPoolIsShared(t *testing.T) {
	init := sampleProgram(t).Funcs[0]
	if len(init.Consts) != 2 {
		t.Fatalf("consts = %v", init.Consts)
	}
	if init.Code[0].A != init.Code[1].A {
		t.Fatalf("equal constants got different slots")
	}
	if _, err := ConstOf([]int{1}); err == nil {
		t.Fatalf("expected error for unsupported constant")
	}
}

func TestArtifactRoundTrip(t *testing.T) {
	p := sampleProgram(t)
	path := filepath.Join(t.TempDir(), "out", "demo.vsbc")
	if err := WriteFile(path, p); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got.BuildID != p.BuildID {
		t.Fatalf("build id = %s, want %s", got.BuildID, p.BuildID)
	}
	if len(got.Funcs) != 2 || got.Funcs[1].Code[3] != p.Funcs[1].Code[3] {
		t.Fatalf("functions not preserved")
	}
	if got.Funcs[0].Consts[1].Value() != "done" {
		t.Fatalf("const = %#v", got.Funcs[0].Consts[1])
	}
	m, ok := got.Module("main")
	if !ok || m.Funcs["max"] != 1 {
		t.Fatalf("module = %+v", m)
	}
	if got.Classes[0].Impl[0][0] != 0 {
		t.Fatalf("class impl not preserved: %+v", got.Classes[0])
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(strings.NewReader("nope, not bytecode"))
	if !errors.Is(err, ErrBadArtifact) {
		t.Fatalf("err = %v, want ErrBadArtifact", err)
	}
	p := sampleProgram(t)
	p.Funcs[1].Code[0] = Instr{Op: OpLoadArg, A: 9}
	var buf bytes.Buffer
	if err := Encode(&buf, p); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := Decode(&buf); !errors.Is(err, ErrBadArtifact) {
		t.Fatalf("err = %v, want invalid program", err)
	}
}

func TestDisasm(t *testing.T) {
	p := sampleProgram(t)
	var buf bytes.Buffer
	if err := Disasm(&buf, p); err != nil {
		t.Fatalf("Disasm: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"; build " + p.BuildID.String(),
		"module main init=#0",
		"func max = #1",
		"class 0 [x: i32] fields=(x) implements=[0]",
		"0002  gt i32",
		"0003  jump.false 0006",
		"call main.max/2",
		"call.native System.Console.WriteLine/1",
		`const "done"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("listing lacks %q:\n%s", want, out)
		}
	}
}

func TestDisasmYAML(t *testing.T) {
	p := sampleProgram(t)
	var buf bytes.Buffer
	if err := DisasmYAML(&buf, p); err != nil {
		t.Fatalf("DisasmYAML: %v", err)
	}
	var doc struct {
		BuildID string `yaml:"build_id"`
		Funcs   []struct {
			Name string   `yaml:"name"`
			Code []string `yaml:"code"`
		} `yaml:"funcs"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if doc.BuildID != p.BuildID.String() || len(doc.Funcs) != 2 {
		t.Fatalf("doc = %+v", doc)
	}
	if doc.Funcs[1].Name != "main.max" || doc.Funcs[1].Code[7] != "0007 ret" {
		t.Fatalf("max = %+v", doc.Funcs[1])
	}
}
