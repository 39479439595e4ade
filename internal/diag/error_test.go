package diag

import (
	"errors"
	"fmt"
	"testing"

	"vsharp/internal/source"
)

func TestErrorUnwrapsThroughWrap(t *testing.T) {
	base := TypeErrorf(TypArgCount, source.Span{Start: 3, End: 7}, "expected %d arguments, got %d", 2, 1)
	wrapped := fmt.Errorf("module main: %w", base)

	de, ok := AsError(wrapped)
	if !ok {
		t.Fatalf("AsError failed on %v", wrapped)
	}
	if de.Kind != KindType || de.Code != TypArgCount {
		t.Fatalf("unexpected error %+v", de)
	}
	if !IsKind(wrapped, KindType) || IsKind(wrapped, KindCompile) {
		t.Fatalf("IsKind mismatch")
	}
	if _, ok := AsError(errors.New("plain")); ok {
		t.Fatalf("plain error must not convert")
	}
}

func TestCodeID(t *testing.T) {
	cases := map[Code]string{
		LexUnknownChar:     "LEX1001",
		SynUnexpectedToken: "SYN2001",
		ChkUnresolvedIdent: "CHK3001",
		TypMismatch:        "TYP4002",
		ConstNonNumeric:    "CEV5001",
		BldInternal:        "BLD6002",
	}
	for code, want := range cases {
		if got := code.ID(); got != want {
			t.Errorf("%d.ID() = %s, want %s", code, got, want)
		}
	}
}

func TestBagLimitSortDedup(t *testing.T) {
	b := NewBag(3)
	b.Add(NewError(TypMismatch, source.Span{Start: 9, End: 10}, "late"))
	b.Add(NewError(TypMismatch, source.Span{Start: 1, End: 2}, "early"))
	b.Add(NewError(TypMismatch, source.Span{Start: 1, End: 2}, "early again"))
	if b.Add(NewError(TypMismatch, source.Span{}, "dropped")) {
		t.Fatalf("bag accepted item beyond limit")
	}
	b.Sort()
	b.Dedup()
	if b.Len() != 2 || b.Items()[0].Message != "early" {
		t.Fatalf("unexpected bag contents %+v", b.Items())
	}
	if !b.HasErrors() {
		t.Fatalf("HasErrors = false")
	}
}

func TestOnlyErrorsFailTheBag(t *testing.T) {
	b := NewBag(10)
	b.Add(New(SevWarning, BldInternal, source.Span{}, "note"))
	if b.HasErrors() {
		t.Fatalf("warning counted as error")
	}
	b.Add(New(SevError, BldInternal, source.Span{}, "boom"))
	if !b.HasErrors() {
		t.Fatalf("error not counted")
	}
	if SevInfo.IsError() || !SevError.IsError() {
		t.Fatalf("IsError mismatch")
	}
}
