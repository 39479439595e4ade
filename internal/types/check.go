package types

// CheckAndExtract reports whether a value of type actual may be used where
// expected is required. Generic leaves of expected bind into out by Join, so
// a parameter used twice unifies to a common supertype. Indices beyond
// len(out) are accepted without recording a binding.
func CheckAndExtract(expected, actual Tp, out []Tp) bool {
	if g, ok := expected.(Generic); ok {
		bind(out, g.Index, actual)
		return true
	}
	if actual == nil {
		return false
	}
	if IsNever(actual) || IsAny(expected) {
		return true
	}
	if !HasGenerics(expected) && Equal(expected, actual) {
		return true
	}

	switch e := expected.(type) {
	case Union:
		if a, ok := actual.(Union); ok {
			return everyMember(expected, a.members, out)
		}
		// First successful member wins; its bindings are committed and the
		// remaining members are not consulted.
		for _, m := range e.members {
			scratch := cloneArgs(out)
			if CheckAndExtract(m, actual, scratch) {
				copy(out, scratch)
				return true
			}
		}
		return false
	case Intersection:
		for _, m := range e.members {
			if !CheckAndExtract(m, actual, out) {
				return false
			}
		}
		return true
	}

	if a, ok := actual.(Union); ok {
		return everyMember(expected, a.members, out)
	}

	switch e := expected.(type) {
	case Nominal:
		switch a := actual.(type) {
		case Nominal:
			if e.Host != a.Host || len(e.Args) != len(a.Args) {
				return false
			}
			for i := range e.Args {
				if !CheckAndExtract(e.Args[i], a.Args[i], out) {
					return false
				}
			}
			return true
		case Intersection:
			return anyMember(expected, a.members, out)
		}
	case Object:
		switch a := actual.(type) {
		case Object:
			for _, f := range e.fields {
				at, ok := a.Field(f.Name)
				if !ok || !CheckAndExtract(f.Type, at, out) {
					return false
				}
			}
			return true
		case Intersection:
			for _, f := range e.fields {
				if !fieldFromAnyMember(f, a.members, out) {
					return false
				}
			}
			return true
		}
	case Array:
		switch a := actual.(type) {
		case Array:
			return CheckAndExtract(e.Item, a.Item, out)
		case Intersection:
			return anyMember(expected, a.members, out)
		}
	case Special:
		if a, ok := actual.(Intersection); ok {
			return anyMember(expected, a.members, out)
		}
	}
	return false
}

// Assignable is CheckAndExtract without generic bookkeeping.
func Assignable(expected, actual Tp) bool {
	return CheckAndExtract(expected, actual, make([]Tp, MaxGeneric(expected)))
}

func bind(out []Tp, i int, t Tp) {
	if i < 0 || i >= len(out) {
		return
	}
	out[i] = Join(out[i], t)
}

func everyMember(expected Tp, members []Tp, out []Tp) bool {
	for _, m := range members {
		if !CheckAndExtract(expected, m, out) {
			return false
		}
	}
	return true
}

func anyMember(expected Tp, members []Tp, out []Tp) bool {
	for _, m := range members {
		scratch := cloneArgs(out)
		if CheckAndExtract(expected, m, scratch) {
			copy(out, scratch)
			return true
		}
	}
	return false
}

func fieldFromAnyMember(f Field, members []Tp, out []Tp) bool {
	for _, m := range members {
		obj, ok := m.(Object)
		if !ok {
			continue
		}
		at, ok := obj.Field(f.Name)
		if !ok {
			continue
		}
		scratch := cloneArgs(out)
		if CheckAndExtract(f.Type, at, scratch) {
			copy(out, scratch)
			return true
		}
	}
	return false
}

func cloneArgs(out []Tp) []Tp {
	if out == nil {
		return nil
	}
	c := make([]Tp, len(out))
	copy(c, out)
	return c
}
