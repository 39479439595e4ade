package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, src := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// runCLI executes the root command and returns stdout and stderr.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--color", "off"}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

var demo = map[string]string{
	"lib/math.vs": "func sq(n: i32) { n * n }",
	"main.vs":     "import { sq } from \"./lib/math.vs\"\nfunc twice(n: i32) { n + n }\nfunc answer() { twice(21) }\nsq(4)",
}

func TestCheckCommand(t *testing.T) {
	root := writeTree(t, demo)
	stdout, _, err := runCLI(t, "check", root)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if stdout != "ok: 2 modules checked\n" {
		t.Fatalf("stdout = %q", stdout)
	}
}

func TestCheckReportsDiagnostics(t *testing.T) {
	root := writeTree(t, map[string]string{"main.vs": "func f(x: Widget) { x }"})
	_, stderr, err := runCLI(t, "check", root)
	if !errors.Is(err, errReported) {
		t.Fatalf("err = %v, want reported failure", err)
	}
	for _, want := range []string{"main.vs:1:", "CHK", "compilation failed (1 error)"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr missing %q:\n%s", want, stderr)
		}
	}
}

func TestCheckJSON(t *testing.T) {
	root := writeTree(t, map[string]string{"main.vs": "1 +"})
	stdout, _, err := runCLI(t, "check", "--format", "json", root)
	if !errors.Is(err, errReported) {
		t.Fatalf("err = %v", err)
	}
	var doc struct {
		Diagnostics []struct {
			Severity string `json:"severity"`
			Code     string `json:"code"`
		} `json:"diagnostics"`
	}
	if err := json.Unmarshal([]byte(stdout), &doc); err != nil {
		t.Fatalf("json: %v\n%s", err, stdout)
	}
	if len(doc.Diagnostics) != 1 || !strings.HasPrefix(doc.Diagnostics[0].Code, "SYN") {
		t.Fatalf("diagnostics = %+v", doc.Diagnostics)
	}
}

func TestBuildAndRunArtifact(t *testing.T) {
	root := writeTree(t, demo)
	out := filepath.Join(root, "out", "demo.vsbc")
	stdout, _, err := runCLI(t, "build", "--ui", "off", "-o", out, root)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.HasPrefix(stdout, "built out/demo.vsbc (2 modules") {
		t.Fatalf("stdout = %q", stdout)
	}
	stdout, _, err = runCLI(t, "run", "--artifact", out, "--main", "answer")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stdout != "16\n42\n" {
		t.Fatalf("run output = %q", stdout)
	}
}

func TestRunFromManifest(t *testing.T) {
	files := map[string]string{
		"vsharp.toml": "[package]\nname = \"demo\"\n[build]\nroot = \"src\"\n[run]\nmain = \"answer\"\n",
	}
	for rel, src := range demo {
		files[filepath.Join("src", rel)] = src
	}
	root := writeTree(t, files)
	stdout, _, err := runCLI(t, "run", root)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stdout != "16\n42\n" {
		t.Fatalf("run output = %q", stdout)
	}
}

func TestRunPanicIsReported(t *testing.T) {
	root := writeTree(t, map[string]string{"main.vs": "func div(a: i32, b: i32) { a / b }\ndiv(1, 0)"})
	_, stderr, err := runCLI(t, "run", filepath.Join(root, "main.vs"))
	if !errors.Is(err, errReported) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(stderr, "panic VM1007") {
		t.Fatalf("stderr = %q", stderr)
	}
}

func TestDisasmFormats(t *testing.T) {
	root := writeTree(t, demo)
	text, _, err := runCLI(t, "disasm", root)
	if err != nil {
		t.Fatalf("disasm: %v", err)
	}
	if !strings.Contains(text, "; build ") || !strings.Contains(text, "twice") {
		t.Fatalf("text disasm:\n%s", text)
	}
	yml, _, err := runCLI(t, "disasm", "--format", "yaml", root)
	if err != nil {
		t.Fatalf("disasm yaml: %v", err)
	}
	if !strings.Contains(yml, "build_id:") {
		t.Fatalf("yaml disasm:\n%s", yml)
	}
	if _, _, err := runCLI(t, "disasm", "--format", "xml", root); err == nil {
		t.Fatalf("xml format accepted")
	}
}

func TestVersionJSON(t *testing.T) {
	stdout, _, err := runCLI(t, "version", "--format", "json", "--hash")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatalf("json: %v", err)
	}
	if payload.Tool != "vsharp" || payload.Version == "" || payload.GitCommit == "" {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestReadUIMode(t *testing.T) {
	tests := []struct {
		in      string
		want    uiMode
		wantErr bool
	}{
		{"", uiModeAuto, false},
		{" ON ", uiModeOn, false},
		{"off", uiModeOff, false},
		{"sometimes", "", true},
	}
	for _, tt := range tests {
		got, err := readUIMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("readUIMode(%q) = %q, %v", tt.in, got, err)
		}
	}
	if shouldUseTUI(uiModeAuto, true) {
		t.Errorf("quiet auto mode enabled the TUI")
	}
}

func TestResolveTarget(t *testing.T) {
	root := writeTree(t, map[string]string{"tool.vs": "1", "pkg/main.vs": "2"})

	tgt, err := resolveTarget([]string{filepath.Join(root, "tool.vs")})
	if err != nil {
		t.Fatalf("file target: %v", err)
	}
	if tgt.entry != "tool" || len(tgt.sources) != 1 || tgt.output != filepath.Join(root, "tool.vsbc") {
		t.Fatalf("file target = %+v", tgt)
	}

	tgt, err = resolveTarget([]string{filepath.Join(root, "pkg")})
	if err != nil {
		t.Fatalf("dir target: %v", err)
	}
	if tgt.entry != "main" || tgt.output != filepath.Join(root, "pkg", "build", "pkg.vsbc") {
		t.Fatalf("dir target = %+v", tgt)
	}
	if got := strings.Join(tgt.modules(), ","); got != "main" {
		t.Fatalf("modules = %s", got)
	}

	if _, err := resolveTarget([]string{filepath.Join(root, "missing.vs")}); err == nil {
		t.Fatalf("missing file accepted")
	}
}

func TestDisplayPath(t *testing.T) {
	tests := []struct{ path, base, want string }{
		{"/p/build/a.vsbc", "/p", "build/a.vsbc"},
		{"/q/a.vsbc", "/p", "/q/a.vsbc"},
		{"/q/a.vsbc", "", "/q/a.vsbc"},
	}
	for _, tt := range tests {
		if got := displayPath(tt.path, tt.base); got != tt.want {
			t.Errorf("displayPath(%q, %q) = %q, want %q", tt.path, tt.base, got, tt.want)
		}
	}
}
