package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelFiltersScopes(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeModule, false},
		{LevelDetail, ScopeModule, true},
		{LevelDetail, ScopeNode, false},
		{LevelDebug, ScopeNode, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestStreamTracerText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)
	ctx := WithTracer(context.Background(), tr)

	pass := Begin(FromContext(ctx), ScopePass, "infer", 0)
	mod := Begin(FromContext(ctx), ScopeModule, "module:main", pass.ID())
	mod.WithExtra("funcs", "2").WithExtra("classes", "1").End("")
	Begin(FromContext(ctx), ScopeNode, "func:main.f", mod.ID()).End("")
	pass.End("ok")

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "[pass] -> infer") {
		t.Errorf("begin line = %q", lines[0])
	}
	if !strings.Contains(lines[2], "<- module:main {classes=1, funcs=2}") {
		t.Errorf("module end line = %q", lines[2])
	}
	if !strings.Contains(lines[3], "<- infer (ok)") {
		t.Errorf("end line = %q", lines[3])
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeStream, Format: FormatNDJSON, Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	Point(tr, ScopeDriver, "build", "start", 0)
	var ev map[string]any
	if err := json.Unmarshal(buf.Bytes(), &ev); err != nil {
		t.Fatalf("json: %v (%q)", err, buf.String())
	}
	if ev["kind"] != "point" || ev["name"] != "build" || ev["scope"] != "driver" {
		t.Fatalf("event = %v", ev)
	}
}

func TestRingKeepsNewest(t *testing.T) {
	r := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(r, ScopePass, name, "", 0)
	}
	snap := r.Snapshot()
	if len(snap) != 3 || snap[0].Name != "c" || snap[2].Name != "e" {
		t.Fatalf("snapshot = %+v", snap)
	}
	var buf bytes.Buffer
	if err := r.Dump(&buf, FormatText); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if strings.Count(buf.String(), "\n") != 3 {
		t.Fatalf("dump = %q", buf.String())
	}
}

func TestErrorLevelUsesRing(t *testing.T) {
	tr, err := New(Config{Level: LevelError, Mode: ModeStream})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r, ok := tr.(*RingTracer)
	if !ok {
		t.Fatalf("tracer = %T, want *RingTracer", tr)
	}
	Begin(r, ScopePass, "codegen", 0).End("")
	Begin(r, ScopeModule, "module:main", 0).End("")
	if n := len(r.Snapshot()); n != 2 {
		t.Fatalf("ring holds %d events, want 2", n)
	}
}

func TestNopIsDefault(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatalf("expected Nop tracer")
	}
	if s := Begin(Nop, ScopeDriver, "x", 0); s.ID() != 0 || s.End("") != 0 {
		t.Fatalf("nop span is not inert")
	}
}
