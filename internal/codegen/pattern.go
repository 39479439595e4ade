package codegen

import (
	"vsharp/internal/bytecode"
	"vsharp/internal/types"
)

// pattern lowers the target of an `is` test. Host types are matched by
// their canonical key without type arguments. Objects are matched by
// interface and then field by field, since a class built from a generic
// shape implements interfaces whose field types it only agrees with for
// some instantiations.
func (e *emitter) pattern(t types.Tp) (bytecode.TypePattern, error) {
	switch x := t.(type) {
	case types.Special:
		if x.Kind == types.KindNever {
			return bytecode.TypePattern{Kind: bytecode.PatNever}, nil
		}
		return bytecode.TypePattern{Kind: bytecode.PatNull}, nil
	case types.Generic:
		return bytecode.TypePattern{Kind: bytecode.PatAny}, nil
	case types.Nominal:
		if types.IsAny(x) {
			return bytecode.TypePattern{Kind: bytecode.PatAny}, nil
		}
		return bytecode.TypePattern{Kind: bytecode.PatHost, Host: types.Key(types.NominalOf(x.Host))}, nil
	case types.Object:
		iface, err := e.g.classes.Interface(x)
		if err != nil {
			return bytecode.TypePattern{}, err
		}
		out := bytecode.TypePattern{
			Kind:  bytecode.PatObject,
			Iface: int32Of(iface.ID, "interface"),
			Items: make([]bytecode.TypePattern, len(iface.Props)),
		}
		for i, prop := range iface.Props {
			ft, ok := x.Field(prop)
			if !ok {
				return bytecode.TypePattern{}, internalf(e.b.Span(), "interface %s has no field %q in %s", iface.Name, prop, x)
			}
			sub, err := e.pattern(ft)
			if err != nil {
				return bytecode.TypePattern{}, err
			}
			out.Items[i] = sub
		}
		return out, nil
	case types.Array:
		item, err := e.pattern(x.Item)
		if err != nil {
			return bytecode.TypePattern{}, err
		}
		return bytecode.TypePattern{Kind: bytecode.PatArray, Items: []bytecode.TypePattern{item}}, nil
	case types.Union:
		return e.patterns(bytecode.PatUnion, x.Members())
	case types.Intersection:
		return e.patterns(bytecode.PatIntersection, x.Members())
	}
	return bytecode.TypePattern{}, internalf(e.b.Span(), "no runtime test for %s", t)
}

func (e *emitter) patterns(kind bytecode.PatternKind, members []types.Tp) (bytecode.TypePattern, error) {
	out := bytecode.TypePattern{Kind: kind, Items: make([]bytecode.TypePattern, len(members))}
	for i, m := range members {
		p, err := e.pattern(m)
		if err != nil {
			return bytecode.TypePattern{}, err
		}
		out.Items[i] = p
	}
	return out, nil
}
