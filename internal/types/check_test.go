package types

import (
	"reflect"
	"testing"
)

type point struct{ X, Y int32 }

func sampleTypes() []Tp {
	obj := NewObject(Field{Name: "a", Type: I32}, Field{Name: "b", Type: Str})
	gen := NewObject(Field{Name: "v", Type: Generic{Index: 0}})
	return []Tp{
		I32, I64, F32, F64, Bool, Str, Any,
		Void, Null, Never,
		Generic{Index: 0},
		Generic{Index: 3},
		NominalOf(reflect.TypeFor[point]()),
		NominalOf(reflect.TypeFor[[]int32](), Generic{Index: 1}),
		Array{Item: I32},
		Array{Item: Generic{Index: 0}},
		obj,
		gen,
		Join(I32, Str),
		Join(Join(I32, Str), Array{Item: Bool}),
		Join(Generic{Index: 0}, I64),
		Intersect(obj, NewObject(Field{Name: "c", Type: Bool})),
		Intersect(Join(I32, Str), Bool),
		Intersect(gen, NewObject(Field{Name: "w", Type: Join(Generic{Index: 1}, Null)})),
		Array{Item: Intersect(obj, gen)},
	}
}

func TestSubtypingIsReflexive(t *testing.T) {
	for _, tp := range sampleTypes() {
		if !CheckAndExtract(tp, tp, nil) {
			t.Errorf("%s does not accept itself (nil out)", tp)
		}
		out := make([]Tp, 4)
		if !CheckAndExtract(tp, tp, out) {
			t.Errorf("%s does not accept itself", tp)
		}
	}
}

func TestObjectWidthSubtyping(t *testing.T) {
	narrow := NewObject(Field{Name: "a", Type: I32})
	wide := NewObject(Field{Name: "a", Type: I32}, Field{Name: "b", Type: Str})
	if !Assignable(narrow, wide) {
		t.Fatalf("%s should accept %s", narrow, wide)
	}
	if Assignable(wide, narrow) {
		t.Fatalf("%s must not accept %s", wide, narrow)
	}
	mismatched := NewObject(Field{Name: "a", Type: Str})
	if Assignable(narrow, mismatched) {
		t.Fatalf("field types must match")
	}
}

func TestObjectAgainstIntersectionTakesFieldsFromAnyMember(t *testing.T) {
	expected := NewObject(Field{Name: "a", Type: I32}, Field{Name: "b", Type: Str})
	actual := Intersect(
		NewObject(Field{Name: "a", Type: I32}),
		NewObject(Field{Name: "b", Type: Str}),
	)
	if !Assignable(expected, actual) {
		t.Fatalf("fields split across members should satisfy %s", expected)
	}
	missing := Intersect(NewObject(Field{Name: "a", Type: I32}), NewObject(Field{Name: "c", Type: Str}))
	if Assignable(expected, missing) {
		t.Fatalf("missing field b accepted")
	}
}

func TestGenericBindingJoinsUsages(t *testing.T) {
	// [x: T, y: T] against [x: i32, y: str] binds T to i32 | str.
	expected := NewObject(Field{Name: "x", Type: Generic{Index: 0}}, Field{Name: "y", Type: Generic{Index: 0}})
	actual := NewObject(Field{Name: "x", Type: I32}, Field{Name: "y", Type: Str})
	out := make([]Tp, 1)
	if !CheckAndExtract(expected, actual, out) {
		t.Fatalf("check failed")
	}
	if !Equal(out[0], Join(I32, Str)) {
		t.Fatalf("T bound to %s, want %s", out[0], Join(I32, Str))
	}
}

func TestUnionExpectedCommitsFirstSuccess(t *testing.T) {
	// [a: T] | [a: i32] against [a: i32]: the first member in canonical
	// order that succeeds decides the binding.
	withGeneric := NewObject(Field{Name: "a", Type: Generic{Index: 0}})
	concrete := NewObject(Field{Name: "a", Type: I32})
	expected := Join(withGeneric, concrete)
	u, ok := expected.(Union)
	if !ok {
		t.Fatalf("expected a union, got %s", expected)
	}
	out := make([]Tp, 1)
	if !CheckAndExtract(expected, concrete, out) {
		t.Fatalf("union rejected a member")
	}
	first := u.Members()[0]
	if Equal(first, withGeneric) && !Equal(out[0], I32) {
		t.Fatalf("generic branch came first but T = %v", out[0])
	}
	if Equal(first, concrete) && out[0] != nil {
		t.Fatalf("concrete branch came first but T was bound to %s", out[0])
	}

	failing := Join(Str, Array{Item: Generic{Index: 0}})
	out = make([]Tp, 1)
	if CheckAndExtract(failing, Bool, out) {
		t.Fatalf("bool accepted by %s", failing)
	}
	if out[0] != nil {
		t.Fatalf("failed union check leaked binding %s", out[0])
	}
}

func TestActualUnionRequiresEveryMember(t *testing.T) {
	if Assignable(I32, Join(I32, Str)) {
		t.Fatalf("i32 accepted i32 | str")
	}
	if !Assignable(Join(I32, Join(Str, Bool)), Join(I32, Str)) {
		t.Fatalf("wider union rejected narrower union")
	}
}

func TestNominalArguments(t *testing.T) {
	list := reflect.TypeFor[[]any]()
	a := NominalOf(list, I32)
	b := NominalOf(list, Str)
	if Assignable(a, b) {
		t.Fatalf("different type arguments accepted")
	}
	out := make([]Tp, 1)
	if !CheckAndExtract(NominalOf(list, Generic{Index: 0}), a, out) || !Equal(out[0], I32) {
		t.Fatalf("type argument not extracted: %v", out[0])
	}
}

func TestArrayFallsBackToIntersectionMember(t *testing.T) {
	actual := Intersect(Array{Item: I32}, NewObject(Field{Name: "len", Type: I32}))
	if !Assignable(Array{Item: I32}, actual) {
		t.Fatalf("array member of intersection not found")
	}
}

func TestNeverAndAny(t *testing.T) {
	if !Assignable(I32, Never) {
		t.Fatalf("never must be assignable everywhere")
	}
	if !Assignable(Any, NewObject(Field{Name: "x", Type: I32})) {
		t.Fatalf("any must accept objects")
	}
	if Assignable(I32, Any) {
		t.Fatalf("any must not narrow to i32")
	}
}
