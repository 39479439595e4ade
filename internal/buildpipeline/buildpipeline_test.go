package buildpipeline

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"vsharp/internal/bytecode"
	"vsharp/internal/diag"
	"vsharp/internal/project"
	"vsharp/internal/trace"
)

func sources(files map[string]string) []Source {
	out := make([]Source, 0, len(files))
	for name, src := range files {
		out = append(out, Source{Sig: project.MustSignature(name), Content: []byte(src)})
	}
	return out
}

func compileFiles(t *testing.T, files map[string]string, sink ProgressSink) (*CompileResult, error) {
	t.Helper()
	return Compile(context.Background(), &CompileRequest{
		Sources:  sources(files),
		Stdout:   io.Discard,
		Progress: sink,
	})
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnEvent(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) has(module string, stage Stage, status Status) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.events {
		if ev.Module == module && ev.Stage == stage && ev.Status == status {
			return true
		}
	}
	return false
}

func TestCompileAcrossModules(t *testing.T) {
	res, err := compileFiles(t, map[string]string{
		"geo":  "func origin() { [x = 0, y = 0] }",
		"main": "import \"./geo.vs\" as geo\nfunc getX(o: [x: i32]) { o.x }\ngetX(geo.origin())",
	}, nil)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	p := res.Program
	if got := strings.Join(res.Modules, ","); got != "geo,main" {
		t.Fatalf("modules = %s", got)
	}
	if err := ValidateEntry(p, "main", "getX"); err != nil {
		t.Fatalf("entry: %v", err)
	}
	if len(p.Classes) != 1 {
		t.Fatalf("classes = %d", len(p.Classes))
	}
	m, _ := p.Module("main")
	get := p.Funcs[m.Funcs["getX"]]
	var prop *bytecode.Instr
	for i := range get.Code {
		if get.Code[i].Op == bytecode.OpGetProp {
			prop = &get.Code[i]
		}
	}
	if prop == nil {
		t.Fatalf("getX has no property read")
	}
	if !p.Classes[0].Implements(int(prop.A)) {
		t.Fatalf("class from geo does not implement the interface used by main")
	}
}

func TestProgressEvents(t *testing.T) {
	rec := &recorder{}
	if _, err := compileFiles(t, map[string]string{"a": "1", "b": "2"}, rec); err != nil {
		t.Fatalf("compile: %v", err)
	}
	for _, stage := range Stages {
		if !rec.has("", stage, StatusDone) {
			t.Errorf("stage %s never finished", stage)
		}
	}
	for _, mod := range []string{"a", "b"} {
		for _, stage := range []Stage{StageParse, StageCheck, StageInfer} {
			for _, st := range []Status{StatusQueued, StatusWorking, StatusDone} {
				if !rec.has(mod, stage, st) {
					t.Errorf("%s/%s: missing %s", mod, stage, st)
				}
			}
		}
	}
}

func TestTimings(t *testing.T) {
	res, err := compileFiles(t, map[string]string{"main": "func f() { 1 }"}, nil)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	for _, stage := range Stages {
		if !res.Timings.Has(stage) {
			t.Errorf("no timing for %s", stage)
		}
	}
	report := res.Timer.Report()
	if len(report.Phases) != len(Stages) {
		t.Fatalf("phases = %d", len(report.Phases))
	}
	for i, ph := range report.Phases {
		if ph.Name != string(Stages[i]) {
			t.Fatalf("phase %d = %s", i, ph.Name)
		}
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		stage Stage
		code  diag.Code
	}{
		{"syntax", "1 +", StageParse, diag.SynExpectExpression},
		{"unknown type", "func f(x: Widget) { x }", StageCheck, diag.ChkUnknownType},
		{"no native function", "import System.Math\nMath.Cube(2.0)", StageInfer, diag.TypNoFunction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			res, err := compileFiles(t, map[string]string{"main": tt.src}, rec)
			if !errors.Is(err, ErrCompile) {
				t.Fatalf("err = %v", err)
			}
			if res.Program != nil {
				t.Fatalf("program produced despite errors")
			}
			if !res.Bag.HasErrors() {
				t.Fatalf("bag is empty")
			}
			if code := res.Bag.Items()[0].Code; code != tt.code {
				t.Fatalf("code = %s, want %s", code, tt.code)
			}
			if !rec.has("main", tt.stage, StatusError) {
				t.Fatalf("no error event for %s", tt.stage)
			}
		})
	}
}

func TestDuplicateModule(t *testing.T) {
	_, err := Compile(context.Background(), &CompileRequest{
		Sources: []Source{
			{Sig: project.MustSignature("main"), Path: "a/main.vs", Content: []byte("1")},
			{Sig: project.MustSignature("main"), Path: "b/main.vs", Content: []byte("2")},
		},
		Stdout: io.Discard,
	})
	if err == nil || !strings.Contains(err.Error(), "defined by both") {
		t.Fatalf("err = %v", err)
	}
}

func TestCompileRoot(t *testing.T) {
	root := t.TempDir()
	write := func(rel, src string) {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	write("lib/math.vs", "func sq(n: i32) { n * n }")
	write("main.vs", "import { sq } from \"./lib/math.vs\"\nsq(4)")

	ring := trace.NewRingTracer(256, trace.LevelPhase)
	ctx := trace.WithTracer(context.Background(), ring)
	res, err := Compile(ctx, &CompileRequest{Root: root, Stdout: io.Discard, Jobs: 1})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if got := strings.Join(res.Modules, ","); got != "lib.math,main" {
		t.Fatalf("modules = %s", got)
	}
	names := map[string]bool{}
	for _, ev := range ring.Snapshot() {
		if ev.Kind == trace.KindSpanEnd {
			names[ev.Name] = true
		}
	}
	for _, want := range []string{"compile", "parse", "codegen", "link"} {
		if !names[want] {
			t.Errorf("span %q not traced", want)
		}
	}
}

func TestBuildWritesArtifact(t *testing.T) {
	out := filepath.Join(t.TempDir(), "main"+project.ArtifactExt)
	res, err := Build(context.Background(), &BuildRequest{
		CompileRequest: CompileRequest{
			Sources: sources(map[string]string{"main": "func add(a: i32, b: i32) { a + b }"}),
			Stdout:  io.Discard,
		},
		Output: out,
		Entry:  "main",
		Main:   "add",
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if res.OutputPath != out {
		t.Fatalf("output = %s", res.OutputPath)
	}
	p, err := bytecode.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := ValidateEntry(p, "main", "add"); err != nil {
		t.Fatalf("entry: %v", err)
	}
}

func TestValidateEntry(t *testing.T) {
	res, err := compileFiles(t, map[string]string{"main": "func run() { 0 }"}, nil)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	tests := []struct {
		module, fn string
		errPart    string
	}{
		{"main", "", ""},
		{"main", "run", ""},
		{"other", "", "entry module \"other\" not found"},
		{"main", "stop", "has no function \"stop\" (have run)"},
	}
	for _, tt := range tests {
		err := ValidateEntry(res.Program, tt.module, tt.fn)
		if tt.errPart == "" {
			if err != nil {
				t.Errorf("%s.%s: %v", tt.module, tt.fn, err)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), tt.errPart) {
			t.Errorf("%s.%s: err = %v, want %q", tt.module, tt.fn, err, tt.errPart)
		}
	}
}
