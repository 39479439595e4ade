package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"vsharp/internal/diag"
	"vsharp/internal/source"
)

func sampleBag(t *testing.T) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("/home/user/project/src/main.vs", []byte("set a = 1\nfunc f(x: Widget) { x }\nset b = 2\n"))
	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.ChkUnknownType, source.Span{File: id, Start: 20, End: 26}, "unknown type Widget").
		WithNote(source.Span{File: id, Start: 0, End: 3}, "declared here"))
	return bag, fs
}

func TestPrettyCaret(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{Context: 1, ShowNotes: true}); err != nil {
		t.Fatalf("pretty: %v", err)
	}
	want := strings.Join([]string{
		"/home/user/project/src/main.vs:2:11: ERROR CHK3005: unknown type Widget",
		"1 | set a = 1",
		"2 | func f(x: Widget) { x }",
		"  |           ^~~~~~",
		"3 | set b = 2",
		"  note: declared here (/home/user/project/src/main.vs:1:1)",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Fatalf("output:\n%s\nwant:\n%s", got, want)
	}
}

func TestPathModes(t *testing.T) {
	bag, fs := sampleBag(t)
	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"relative", PathModeRelative, "src/main.vs:2:11"},
		{"basename", PathModeBasename, "main.vs:2:11"},
		{"auto outside base", PathModeAuto, "/home/user/project/src/main.vs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := "/home/user/project"
			if tt.mode == PathModeAuto {
				base = "/elsewhere"
			}
			var buf bytes.Buffer
			if err := Pretty(&buf, bag, fs, PrettyOpts{PathMode: tt.mode, BaseDir: base}); err != nil {
				t.Fatalf("pretty: %v", err)
			}
			if first, _, _ := strings.Cut(buf.String(), "\n"); !strings.HasPrefix(first, tt.contains) {
				t.Errorf("header = %q, want prefix %q", first, tt.contains)
			}
		})
	}
}

func TestUnderlineWideRunes(t *testing.T) {
	text := `set s = "日本" + x`
	// "x" starts at byte 19, column 20.
	got := underline(text, source.LineCol{Line: 1, Col: 20}, source.LineCol{Line: 1, Col: 21})
	if want := strings.Repeat(" ", 17) + "^"; got != want {
		t.Fatalf("underline = %q, want %q", got, want)
	}
}

func TestBuildDiagnosticHasNoLocation(t *testing.T) {
	fs := source.NewFileSet()
	fs.AddVirtual("main.vs", []byte("1\n"))
	bag := diag.NewBag(10)
	bag.AddError(errString("link failed"))
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{}); err != nil {
		t.Fatalf("pretty: %v", err)
	}
	if got := buf.String(); got != "ERROR BLD6002: link failed\n" {
		t.Fatalf("output = %q", got)
	}
}

type errString string

func (e errString) Error() string { return string(e) }

func TestJSON(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, IncludeNotes: true, PathMode: PathModeBasename})
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Count != 1 {
		t.Fatalf("count = %d", out.Count)
	}
	d := out.Diagnostics[0]
	if d.Code != "CHK3005" || d.Title != "Unknown type" || d.Severity != "ERROR" {
		t.Fatalf("diagnostic = %+v", d)
	}
	if d.Location == nil || d.Location.File != "main.vs" || d.Location.StartLine != 2 || d.Location.StartCol != 11 {
		t.Fatalf("location = %+v", d.Location)
	}
	if len(d.Notes) != 1 || d.Notes[0].Message != "declared here" {
		t.Fatalf("notes = %+v", d.Notes)
	}
}

func TestColorEnabled(t *testing.T) {
	for _, tt := range []struct {
		mode string
		want bool
	}{{"on", true}, {"off", false}, {"auto", false}} {
		got, err := ColorEnabled(tt.mode, nil)
		if err != nil || got != tt.want {
			t.Errorf("%s: %v, %v", tt.mode, got, err)
		}
	}
	if _, err := ColorEnabled("sometimes", nil); err == nil {
		t.Fatalf("bad mode accepted")
	}
}
