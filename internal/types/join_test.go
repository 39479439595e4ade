package types

import "testing"

func TestJoinFlattensAndDedups(t *testing.T) {
	u := Join(Join(I32, Str), Join(Str, Bool))
	un, ok := u.(Union)
	if !ok || len(un.Members()) != 3 {
		t.Fatalf("Join = %s", u)
	}
	for _, m := range un.Members() {
		if _, nested := m.(Union); nested {
			t.Fatalf("nested union member %s", m)
		}
	}
	if !Equal(Join(I32, I32), I32) {
		t.Fatalf("Join(a, a) != a")
	}
	if !Equal(Join(Str, I32), Join(I32, Str)) {
		t.Fatalf("Join is not symmetric")
	}
	if !Equal(Join(Never, Str), Str) || !Equal(Join(Str, nil), Str) {
		t.Fatalf("Never/nil are not identities")
	}
}

func TestIntersectFlattens(t *testing.T) {
	a := NewObject(Field{Name: "a", Type: I32})
	b := NewObject(Field{Name: "b", Type: I32})
	c := NewObject(Field{Name: "c", Type: I32})
	x := Intersect(Intersect(a, b), Intersect(b, c))
	in, ok := x.(Intersection)
	if !ok || len(in.Members()) != 3 {
		t.Fatalf("Intersect = %s", x)
	}
	if !Equal(Intersect(a, b), Intersect(b, a)) {
		t.Fatalf("Intersect is not symmetric")
	}
}

func TestWithTypeArguments(t *testing.T) {
	tp := NewObject(
		Field{Name: "item", Type: Generic{Index: 0}},
		Field{Name: "rest", Type: Array{Item: Join(Generic{Index: 1}, Null)}},
	)
	got := WithTypeArguments(tp, []Tp{I32, Str})
	want := NewObject(
		Field{Name: "item", Type: I32},
		Field{Name: "rest", Type: Array{Item: Join(Str, Null)}},
	)
	if !Equal(got, want) {
		t.Fatalf("WithTypeArguments = %s, want %s", got, want)
	}
	if !Equal(WithTypeArguments(I32, []Tp{Str}), I32) || !Equal(WithTypeArguments(Void, []Tp{Str}), Void) {
		t.Fatalf("substitution changed a closed type")
	}
	partial := WithTypeArguments(Join(Generic{Index: 0}, Generic{Index: 1}), []Tp{I32, nil})
	if !Equal(partial, Join(I32, Generic{Index: 1})) {
		t.Fatalf("unbound parameter replaced: %s", partial)
	}
	collapsed := WithTypeArguments(Join(Generic{Index: 0}, I32), []Tp{I32})
	if !Equal(collapsed, I32) {
		t.Fatalf("substituted union did not collapse: %s", collapsed)
	}
}

func TestKeyIsCanonical(t *testing.T) {
	a := NewObject(Field{Name: "b", Type: Str}, Field{Name: "a", Type: I32})
	b := ObjectFromMap(map[string]Tp{"a": I32, "b": Str})
	if Key(a) != Key(b) {
		t.Fatalf("keys differ: %s vs %s", Key(a), Key(b))
	}
	if a.String() != "[a: i32, b: str]" {
		t.Fatalf("String = %s", a.String())
	}
	if Key(Join(I32, Str)) == Key(Intersect(I32, Str)) {
		t.Fatalf("union and intersection share a key")
	}
}
