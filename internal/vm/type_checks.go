package vm

import (
	"reflect"
	"strings"
	"sync"

	"vsharp/internal/bytecode"
	"vsharp/internal/types"
)

var hostKeys sync.Map // reflect.Type -> string

// hostKey is the canonical key of a host value's type without arguments,
// the form codegen records in PatHost patterns.
func hostKey(v any) string {
	rt := reflect.TypeOf(v)
	if k, ok := hostKeys.Load(rt); ok {
		return k.(string)
	}
	k := types.Key(types.NominalOf(rt))
	hostKeys.Store(rt, k)
	return k
}

// matches evaluates an `is` test against the value's runtime shape.
func matches(v any, p *bytecode.TypePattern) bool {
	switch p.Kind {
	case bytecode.PatAny:
		return true
	case bytecode.PatNever:
		return false
	case bytecode.PatNull:
		return v == nil
	case bytecode.PatHost:
		switch v.(type) {
		case nil, *Object, *Array:
			return false
		}
		return hostKey(v) == p.Host
	case bytecode.PatObject:
		o, ok := v.(*Object)
		if !ok {
			return false
		}
		impl, ok := o.Class.Impl[int(p.Iface)]
		if !ok || len(impl) < len(p.Items) {
			return false
		}
		for i := range p.Items {
			if !matches(o.Fields[impl[i]], &p.Items[i]) {
				return false
			}
		}
		return true
	case bytecode.PatArray:
		a, ok := v.(*Array)
		if !ok || len(p.Items) != 1 {
			return false
		}
		for _, it := range a.Items {
			if !matches(it, &p.Items[0]) {
				return false
			}
		}
		return true
	case bytecode.PatUnion:
		for i := range p.Items {
			if matches(v, &p.Items[i]) {
				return true
			}
		}
		return false
	case bytecode.PatIntersection:
		for i := range p.Items {
			if !matches(v, &p.Items[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// contains implements `item in container` for arrays and strings.
func (m *Machine) contains(container, item any) (bool, *VMError) {
	switch c := container.(type) {
	case *Array:
		for _, it := range c.Items {
			if equal(it, item) {
				return true, nil
			}
		}
		return false, nil
	case string:
		s, ok := item.(string)
		if !ok {
			return false, m.typeMismatch("str", item)
		}
		return strings.Contains(c, s), nil
	case nil:
		return false, m.makeError(PanicNullAccess, "membership test on null")
	}
	return false, m.typeMismatch("array or str", container)
}
