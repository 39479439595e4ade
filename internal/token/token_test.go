package token

import "testing"

func TestKeywordsRoundTrip(t *testing.T) {
	for text, kind := range keywords {
		if kind.String() != text {
			t.Errorf("%v.String() = %q, want %q", kind, kind.String(), text)
		}
		if !kind.IsKeyword() {
			t.Errorf("%q not reported as keyword", text)
		}
	}
	if Ident.IsKeyword() || Plus.IsKeyword() {
		t.Fatalf("non-keyword reported as keyword")
	}
}
