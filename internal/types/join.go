package types

import "sort"

// Join returns the least union covering a and b. Unions are flattened,
// duplicates dropped, and Never is the identity. A nil operand yields the
// other one so Join can seed accumulators.
func Join(a, b Tp) Tp {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case IsNever(a):
		return b
	case IsNever(b):
		return a
	case Equal(a, b):
		return a
	}
	members := collect(nil, a, func(t Tp) ([]Tp, bool) {
		u, ok := t.(Union)
		return u.members, ok
	})
	members = collect(members, b, func(t Tp) ([]Tp, bool) {
		u, ok := t.(Union)
		return u.members, ok
	})
	if len(members) == 1 {
		return members[0]
	}
	return Union{members: members}
}

// Intersect is the symmetric counterpart of Join for intersections.
func Intersect(a, b Tp) Tp {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case IsNever(a) || IsNever(b):
		return Never
	case Equal(a, b):
		return a
	}
	members := collect(nil, a, func(t Tp) ([]Tp, bool) {
		x, ok := t.(Intersection)
		return x.members, ok
	})
	members = collect(members, b, func(t Tp) ([]Tp, bool) {
		x, ok := t.(Intersection)
		return x.members, ok
	})
	if len(members) == 1 {
		return members[0]
	}
	return Intersection{members: members}
}

// collect flattens t into acc (using split for same-kind composites),
// dropping duplicates and keeping the result sorted by Key.
func collect(acc []Tp, t Tp, split func(Tp) ([]Tp, bool)) []Tp {
	parts, ok := split(t)
	if !ok {
		parts = []Tp{t}
	}
	for _, p := range parts {
		if IsNever(p) {
			continue
		}
		dup := false
		for _, m := range acc {
			if Equal(m, p) {
				dup = true
				break
			}
		}
		if !dup {
			acc = append(acc, p)
		}
	}
	sort.SliceStable(acc, func(i, j int) bool { return Key(acc[i]) < Key(acc[j]) })
	return acc
}
