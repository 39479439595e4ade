package source

import "testing"

func TestResolveCountsNewlines(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("main.vs", []byte("set a = 1\nset b = a + x\n"))

	start, end := fs.Resolve(Span{File: id, Start: 22, End: 23})
	if start.Line != 2 || start.Col != 13 {
		t.Fatalf("start = %+v, want 2:13", start)
	}
	if end.Line != 2 || end.Col != 14 {
		t.Fatalf("end = %+v, want 2:14", end)
	}

	first, _ := fs.Resolve(Span{File: id, Start: 0, End: 3})
	if first.Line != 1 || first.Col != 1 {
		t.Fatalf("first = %+v, want 1:1", first)
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("x.vs", []byte("one\ntwo\nthree"))
	f := fs.Get(id)
	cases := map[uint32]string{1: "one", 2: "two", 3: "three", 4: "", 0: ""}
	for line, want := range cases {
		if got := f.GetLine(line); got != want {
			t.Errorf("GetLine(%d) = %q, want %q", line, got, want)
		}
	}
}

func TestNormalizeCRLF(t *testing.T) {
	out, changed := normalizeCRLF([]byte("a\r\nb\rc"))
	if !changed || string(out) != "a\nb\rc" {
		t.Fatalf("got %q changed=%v", out, changed)
	}
	in := []byte("plain")
	out, changed = normalizeCRLF(in)
	if changed || string(out) != "plain" {
		t.Fatalf("got %q changed=%v", out, changed)
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 8}
	b := Span{File: 1, Start: 2, End: 6}
	if got := a.Cover(b); got.Start != 2 || got.End != 8 {
		t.Fatalf("Cover = %v", got)
	}
	c := Span{File: 2, Start: 0, End: 100}
	if got := a.Cover(c); got != a {
		t.Fatalf("cross-file Cover changed span: %v", got)
	}
}

func TestLookupLatest(t *testing.T) {
	fs := NewFileSet()
	fs.AddVirtual("./a.vs", []byte("1"))
	second := fs.AddVirtual("a.vs", []byte("2"))
	id, ok := fs.Lookup("a.vs")
	if !ok || id != second {
		t.Fatalf("Lookup = %d,%v want %d", id, ok, second)
	}
}
