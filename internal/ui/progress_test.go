package ui

import (
	"strings"
	"testing"

	"vsharp/internal/buildpipeline"
)

func newModel(modules ...string) *progressModel {
	m, ok := NewProgressModel("build", modules, nil).(*progressModel)
	if !ok {
		panic("unexpected model type")
	}
	return m
}

func TestApplyEventTracksModules(t *testing.T) {
	m := newModel("main", "lib.math")
	m.applyEvent(buildpipeline.Event{Stage: buildpipeline.StageCheck, Status: buildpipeline.StatusWorking})
	m.applyEvent(buildpipeline.Event{Module: "lib.math", Stage: buildpipeline.StageCheck, Status: buildpipeline.StatusWorking})
	if m.stageLabel != "checking" {
		t.Fatalf("stage label = %q", m.stageLabel)
	}
	if got := m.items[1].status; got != "checking" {
		t.Fatalf("lib.math status = %q", got)
	}
	if got := m.items[0].status; got != "queued" {
		t.Fatalf("main status = %q", got)
	}
	m.applyEvent(buildpipeline.Event{Module: "unknown", Stage: buildpipeline.StageCheck, Status: buildpipeline.StatusDone})
	m.applyEvent(buildpipeline.Event{Module: "main", Stage: buildpipeline.StageCheck, Status: buildpipeline.StatusError})
	if !m.failed || m.items[0].status != "error" {
		t.Fatalf("error event not applied: failed=%v status=%q", m.failed, m.items[0].status)
	}
}

func TestPercentReachesOneAfterLink(t *testing.T) {
	m := newModel("main")
	if p := m.percent(); p != 0 {
		t.Fatalf("initial percent = %v", p)
	}
	m.applyEvent(buildpipeline.Event{Stage: buildpipeline.StageInfer, Status: buildpipeline.StatusWorking})
	mid := m.percent()
	if mid <= 0 || mid >= 1 {
		t.Fatalf("percent during infer = %v", mid)
	}
	m.applyEvent(buildpipeline.Event{Stage: buildpipeline.StageLink, Status: buildpipeline.StatusDone})
	if p := m.percent(); p != 1 {
		t.Fatalf("percent after link = %v", p)
	}
}

func TestViewShowsModules(t *testing.T) {
	m := newModel("main", "geo.shapes")
	m.done = true
	view := m.View()
	for _, want := range []string{"done: build", "main", "geo.shapes"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"main", 10, "main"},
		{"very.long.module.name", 10, "very.lo..."},
		{"abcdef", 3, "abc"},
		{"abc", 0, "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
