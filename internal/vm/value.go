package vm

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"vsharp/internal/host"
)

// Values on the operand stack are plain Go values: int32, int64, float32,
// float64, bool, string, nil, *Object, *Array, or any host value returned
// by a native function.

// Object is an instance of a synthesized class.
type Object struct {
	Class  *host.Class
	Fields []any
}

// Array is a mutable sequence shared by reference.
type Array struct {
	Items []any
}

// describe names the runtime kind of v for error messages.
func describe(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case *Object:
		return "object " + x.Class.Name
	case *Array:
		return "array"
	}
	return reflect.TypeOf(v).String()
}

// Format renders a value the way the CLI prints results.
func Format(v any) string {
	var sb strings.Builder
	writeValue(&sb, v, 0)
	return sb.String()
}

const maxFormatDepth = 8

func writeValue(sb *strings.Builder, v any, depth int) {
	if depth > maxFormatDepth {
		sb.WriteString("...")
		return
	}
	switch x := v.(type) {
	case nil:
		sb.WriteString("null")
	case string:
		sb.WriteString(strconv.Quote(x))
	case float32:
		sb.WriteString(strconv.FormatFloat(float64(x), 'g', -1, 32))
	case float64:
		sb.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	case *Array:
		sb.WriteByte('[')
		for i, it := range x.Items {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeValue(sb, it, depth+1)
		}
		sb.WriteByte(']')
	case *Object:
		sb.WriteByte('[')
		for i, name := range x.Class.Fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(name)
			sb.WriteString(" = ")
			writeValue(sb, x.Fields[i], depth+1)
		}
		sb.WriteByte(']')
	default:
		fmt.Fprint(sb, x)
	}
}

// equal compares scalars by value and objects and arrays by identity.
// Numbers of different widths compare after widening.
func equal(a, b any) bool {
	if ka, kb := numKind(a), numKind(b); ka != 0 && kb != 0 {
		k := widen(ka, kb)
		return compareNum(convert(a, k), convert(b, k), k) == 0
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
