package host

import (
	"errors"
	"fmt"
	"reflect"

	"vsharp/internal/types"
)

var errorType = reflect.TypeFor[error]()

// Func is a host function callable from scripts. For methods the receiver
// is the first parameter.
type Func struct {
	Name      string
	Qualified string
	Params    []types.Tp
	Result    types.Tp
	Method    bool

	fn        reflect.Value
	errResult bool
}

func newFunc(name, qualified string, fn reflect.Value, method bool) (*Func, error) {
	if fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s: %s is not a function", qualified, fn.Type())
	}
	ft := fn.Type()
	if ft.IsVariadic() {
		return nil, fmt.Errorf("%s: variadic host functions are not supported", qualified)
	}
	f := &Func{Name: name, Qualified: qualified, Method: method, fn: fn, Result: types.Void}
	for i := range ft.NumIn() {
		f.Params = append(f.Params, TypeOf(ft.In(i)))
	}
	switch {
	case ft.NumOut() == 0:
	case ft.NumOut() == 1 && ft.Out(0) == errorType:
		f.errResult = true
	case ft.NumOut() == 1:
		f.Result = TypeOf(ft.Out(0))
	case ft.NumOut() == 2 && ft.Out(1) == errorType:
		f.Result = TypeOf(ft.Out(0))
		f.errResult = true
	default:
		return nil, fmt.Errorf("%s: unsupported result list %s", qualified, ft)
	}
	return f, nil
}

// Arity counts the parameters, receiver included.
func (f *Func) Arity() int { return len(f.Params) }

// Call invokes the function. A nil argument becomes the parameter's zero
// value; numeric arguments are converted to the parameter's width.
func (f *Func) Call(args []any) (any, error) {
	ft := f.fn.Type()
	if len(args) != ft.NumIn() {
		return nil, fmt.Errorf("%s: expected %d arguments, got %d", f.Qualified, ft.NumIn(), len(args))
	}
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		pt := ft.In(i)
		if a == nil {
			in[i] = reflect.Zero(pt)
			continue
		}
		v := reflect.ValueOf(a)
		if !v.Type().AssignableTo(pt) {
			if !isNumber(v.Kind()) || !isNumber(pt.Kind()) {
				return nil, fmt.Errorf("%s: argument %d: cannot use %s as %s", f.Qualified, i, v.Type(), pt)
			}
			v = v.Convert(pt)
		}
		in[i] = v
	}
	out := f.fn.Call(in)
	if f.errResult {
		if errv := out[len(out)-1]; !errv.IsNil() {
			err, _ := errv.Interface().(error)
			return nil, fmt.Errorf("%s: %w", f.Qualified, err)
		}
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0].Interface(), nil
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// TypeOf maps a host type to its static type.
func TypeOf(rt reflect.Type) types.Tp {
	switch rt.Kind() {
	case reflect.Int32:
		return types.I32
	case reflect.Int64, reflect.Int:
		return types.I64
	case reflect.Float32:
		return types.F32
	case reflect.Float64:
		return types.F64
	case reflect.Bool:
		return types.Bool
	case reflect.String:
		return types.Str
	case reflect.Interface:
		if rt.NumMethod() == 0 {
			return types.Any
		}
	}
	return types.NominalOf(rt)
}

// ErrNoNamespace is returned when no registered namespace prefixes a name.
var ErrNoNamespace = errors.New("no such native namespace")
