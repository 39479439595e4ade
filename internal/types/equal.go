package types

// Equal is structural equality; Nominal compares host identity and arguments.
func Equal(a, b Tp) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case Nominal:
		y, ok := b.(Nominal)
		return ok && x.Host == y.Host && equalList(x.Args, y.Args)
	case Generic:
		y, ok := b.(Generic)
		return ok && x.Index == y.Index
	case Union:
		y, ok := b.(Union)
		return ok && equalList(x.members, y.members)
	case Intersection:
		y, ok := b.(Intersection)
		return ok && equalList(x.members, y.members)
	case Object:
		y, ok := b.(Object)
		if !ok || len(x.fields) != len(y.fields) {
			return false
		}
		for i := range x.fields {
			if x.fields[i].Name != y.fields[i].Name || !Equal(x.fields[i].Type, y.fields[i].Type) {
				return false
			}
		}
		return true
	case Array:
		y, ok := b.(Array)
		return ok && Equal(x.Item, y.Item)
	case Special:
		y, ok := b.(Special)
		return ok && x.Kind == y.Kind
	}
	return false
}

func equalList(a, b []Tp) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// HasGenerics reports whether any Generic leaf occurs in t.
func HasGenerics(t Tp) bool {
	switch v := t.(type) {
	case Generic:
		return true
	case Nominal:
		return anyGeneric(v.Args)
	case Union:
		return anyGeneric(v.members)
	case Intersection:
		return anyGeneric(v.members)
	case Object:
		for _, f := range v.fields {
			if HasGenerics(f.Type) {
				return true
			}
		}
	case Array:
		return HasGenerics(v.Item)
	}
	return false
}

func anyGeneric(ts []Tp) bool {
	for _, t := range ts {
		if HasGenerics(t) {
			return true
		}
	}
	return false
}

// MaxGeneric returns one past the highest Generic index in t.
func MaxGeneric(t Tp) int {
	n := 0
	walk(t, func(x Tp) {
		if g, ok := x.(Generic); ok && g.Index+1 > n {
			n = g.Index + 1
		}
	})
	return n
}

func walk(t Tp, fn func(Tp)) {
	fn(t)
	switch v := t.(type) {
	case Nominal:
		for _, a := range v.Args {
			walk(a, fn)
		}
	case Union:
		for _, m := range v.members {
			walk(m, fn)
		}
	case Intersection:
		for _, m := range v.members {
			walk(m, fn)
		}
	case Object:
		for _, f := range v.fields {
			walk(f.Type, fn)
		}
	case Array:
		walk(v.Item, fn)
	}
}

// Objects returns every Object type occurring in t, outermost first.
func Objects(t Tp) []Object {
	var out []Object
	walk(t, func(x Tp) {
		if o, ok := x.(Object); ok {
			out = append(out, o)
		}
	})
	return out
}
