package types

// WithTypeArguments replaces Generic(i) with args[i]. Unbound (nil or out of
// range) parameters are left in place.
func WithTypeArguments(t Tp, args []Tp) Tp {
	if len(args) == 0 || !HasGenerics(t) {
		return t
	}
	switch v := t.(type) {
	case Generic:
		if v.Index < len(args) && args[v.Index] != nil {
			return args[v.Index]
		}
		return v
	case Nominal:
		return Nominal{Host: v.Host, Args: substList(v.Args, args)}
	case Union:
		var acc Tp
		for _, m := range v.members {
			acc = Join(acc, WithTypeArguments(m, args))
		}
		return acc
	case Intersection:
		var acc Tp
		for _, m := range v.members {
			acc = Intersect(acc, WithTypeArguments(m, args))
		}
		return acc
	case Object:
		fields := make([]Field, len(v.fields))
		for i, f := range v.fields {
			fields[i] = Field{Name: f.Name, Type: WithTypeArguments(f.Type, args)}
		}
		return Object{fields: fields}
	case Array:
		return Array{Item: WithTypeArguments(v.Item, args)}
	}
	return t
}

func substList(ts []Tp, args []Tp) []Tp {
	out := make([]Tp, len(ts))
	for i, t := range ts {
		out[i] = WithTypeArguments(t, args)
	}
	return out
}

// FillUnbound replaces nil entries with Any.
func FillUnbound(args []Tp) []Tp {
	out := make([]Tp, len(args))
	for i, a := range args {
		if a == nil {
			a = Any
		}
		out[i] = a
	}
	return out
}
