package types

import (
	"reflect"
	"sort"
)

// Tp is the closed set of static types: Nominal, Generic, Union,
// Intersection, Object, Array and Special.
type Tp interface {
	isTp()
	String() string
}

// Nominal is a host type plus type arguments.
type Nominal struct {
	Host reflect.Type
	Args []Tp
}

// Generic is the index-th type parameter of the enclosing declaration.
type Generic struct {
	Index int
}

// Union holds at least two distinct non-union members in canonical order.
// Build it with Join or NewUnion.
type Union struct {
	members []Tp
}

// Intersection holds at least two distinct non-intersection members in
// canonical order. Build it with Intersect or NewIntersection.
type Intersection struct {
	members []Tp
}

// Field is one named member of an Object.
type Field struct {
	Name string
	Type Tp
}

// Object is a structural record type; fields are kept sorted by name.
type Object struct {
	fields []Field
}

// Array is a homogeneous sequence.
type Array struct {
	Item Tp
}

type SpecialKind uint8

const (
	KindVoid SpecialKind = iota + 1
	KindNull
	KindNever
)

// Special covers Void, Null and Never.
type Special struct {
	Kind SpecialKind
}

func (Nominal) isTp()      {}
func (Generic) isTp()      {}
func (Union) isTp()        {}
func (Intersection) isTp() {}
func (Object) isTp()       {}
func (Array) isTp()        {}
func (Special) isTp()      {}

var (
	I32  Tp = Nominal{Host: reflect.TypeFor[int32]()}
	I64  Tp = Nominal{Host: reflect.TypeFor[int64]()}
	F32  Tp = Nominal{Host: reflect.TypeFor[float32]()}
	F64  Tp = Nominal{Host: reflect.TypeFor[float64]()}
	Bool Tp = Nominal{Host: reflect.TypeFor[bool]()}
	Str  Tp = Nominal{Host: reflect.TypeFor[string]()}
	// Any is the host top type; every value is assignable to it.
	Any Tp = Nominal{Host: reflect.TypeFor[any]()}

	Void  Tp = Special{Kind: KindVoid}
	Null  Tp = Special{Kind: KindNull}
	Never Tp = Special{Kind: KindNever}
)

// Primitives are the aliases every module starts with.
var Primitives = map[string]Tp{
	"int":  I32,
	"bool": Bool,
	"i32":  I32,
	"i64":  I64,
	"f32":  F32,
	"f64":  F64,
	"str":  Str,
}

var hostNames = map[reflect.Type]string{
	reflect.TypeFor[int32]():   "i32",
	reflect.TypeFor[int64]():   "i64",
	reflect.TypeFor[float32](): "f32",
	reflect.TypeFor[float64](): "f64",
	reflect.TypeFor[bool]():    "bool",
	reflect.TypeFor[string]():  "str",
	reflect.TypeFor[any]():     "any",
}

// NominalOf wraps a host type.
func NominalOf(host reflect.Type, args ...Tp) Tp {
	return Nominal{Host: host, Args: args}
}

// NewObject builds an Object; a repeated name keeps the last type.
func NewObject(fields ...Field) Object {
	byName := make(map[string]Tp, len(fields))
	for _, f := range fields {
		byName[f.Name] = f.Type
	}
	return ObjectFromMap(byName)
}

// ObjectFromMap builds an Object from a name to type map.
func ObjectFromMap(fields map[string]Tp) Object {
	out := make([]Field, 0, len(fields))
	for name, tp := range fields {
		out = append(out, Field{Name: name, Type: tp})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return Object{fields: out}
}

// Fields returns the fields in name order. The slice must not be modified.
func (o Object) Fields() []Field { return o.fields }

// Len is the number of fields.
func (o Object) Len() int { return len(o.fields) }

// Field looks a field up by name.
func (o Object) Field(name string) (Tp, bool) {
	i := sort.Search(len(o.fields), func(i int) bool { return o.fields[i].Name >= name })
	if i < len(o.fields) && o.fields[i].Name == name {
		return o.fields[i].Type, true
	}
	return nil, false
}

// FieldIndex returns the position of name in Fields.
func (o Object) FieldIndex(name string) int {
	i := sort.Search(len(o.fields), func(i int) bool { return o.fields[i].Name >= name })
	if i < len(o.fields) && o.fields[i].Name == name {
		return i
	}
	return -1
}

// Members returns the union members. The slice must not be modified.
func (u Union) Members() []Tp { return u.members }

// Members returns the intersection members. The slice must not be modified.
func (x Intersection) Members() []Tp { return x.members }

// NewUnion joins all ts; it may return a non-union when they collapse.
func NewUnion(ts ...Tp) Tp {
	var acc Tp
	for _, t := range ts {
		acc = Join(acc, t)
	}
	if acc == nil {
		return Never
	}
	return acc
}

// NewIntersection intersects all ts.
func NewIntersection(ts ...Tp) Tp {
	var acc Tp
	for _, t := range ts {
		acc = Intersect(acc, t)
	}
	if acc == nil {
		return Any
	}
	return acc
}

// IsVoid reports whether t is Special(Void).
func IsVoid(t Tp) bool { return isSpecial(t, KindVoid) }

// IsNever reports whether t is Special(Never).
func IsNever(t Tp) bool { return isSpecial(t, KindNever) }

// IsAny reports whether t is the host top type.
func IsAny(t Tp) bool {
	n, ok := t.(Nominal)
	return ok && n.Host == reflect.TypeFor[any]() && len(n.Args) == 0
}

func isSpecial(t Tp, k SpecialKind) bool {
	s, ok := t.(Special)
	return ok && s.Kind == k
}

// HasValue reports whether an expression of type t leaves a value on the stack.
func HasValue(t Tp) bool {
	return t != nil && !IsVoid(t) && !IsNever(t)
}
