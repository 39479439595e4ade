package lexer

import (
	"testing"

	"vsharp/internal/diag"
	"vsharp/internal/source"
	"vsharp/internal/token"
)

func lex(t *testing.T, src string) []token.Token {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.vs", []byte(src))
	toks, err := Tokenize(fs.Get(id))
	if err != nil {
		t.Fatalf("Tokenize(%q): %v", src, err)
	}
	return toks
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestTokenizeStatement(t *testing.T) {
	toks := lex(t, `set add = func(a: i32): i32 { return a + 1.5 } // trailing`)
	want := []token.Kind{
		token.KwSet, token.Ident, token.Assign, token.KwFunc, token.LParen, token.Ident,
		token.Colon, token.Ident, token.RParen, token.Colon, token.Ident, token.LBrace,
		token.KwReturn, token.Ident, token.Plus, token.FloatLit, token.RBrace, token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestOperatorsAndNewlines(t *testing.T) {
	toks := lex(t, "a <= b\n/* block\ncomment */ c != d")
	if toks[1].Kind != token.LtEq || toks[4].Kind != token.BangEq {
		t.Fatalf("two-byte operators not recognised: %v", kinds(toks))
	}
	if toks[2].NewlineBefore || !toks[3].NewlineBefore {
		t.Fatalf("newline flags wrong: b=%v c=%v", toks[2].NewlineBefore, toks[3].NewlineBefore)
	}
}

func TestStringEscapesAndNormalization(t *testing.T) {
	// "e" followed by a combining acute accent normalizes to U+00E9.
	toks := lex(t, "\"tab\\tquote\\\"\" cafe\u0301")
	if toks[0].Text != "tab\tquote\"" {
		t.Fatalf("string value %q", toks[0].Text)
	}
	if toks[1].Text != "caf\u00e9" {
		t.Fatalf("identifier not NFC-normalized: %q", toks[1].Text)
	}
}

func TestNumbers(t *testing.T) {
	toks := lex(t, "42 3.25 1e3 1_000")
	want := []token.Kind{token.IntLit, token.FloatLit, token.FloatLit, token.IntLit}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Fatalf("token %d (%q): %v want %v", i, toks[i].Text, toks[i].Kind, k)
		}
	}
}

func TestLexErrors(t *testing.T) {
	cases := map[string]diag.Code{
		`"open`: diag.LexUnterminatedString,
		"a # b": diag.LexUnknownChar,
		"12ab":  diag.LexBadNumber,
		"/* x":  diag.SynUnclosedDelimiter,
	}
	for src, code := range cases {
		fs := source.NewFileSet()
		id := fs.AddVirtual("bad.vs", []byte(src))
		_, err := Tokenize(fs.Get(id))
		de, ok := diag.AsError(err)
		if !ok || de.Code != code || de.Kind != diag.KindParse {
			t.Errorf("%q: got %v, want code %s", src, err, code.ID())
		}
	}
}
