package types

import (
	"reflect"
	"strconv"
	"strings"
)

func (n Nominal) String() string {
	var sb strings.Builder
	writeType(&sb, n, false)
	return sb.String()
}

func (g Generic) String() string { return "T" + strconv.Itoa(g.Index) }

func (u Union) String() string {
	var sb strings.Builder
	writeType(&sb, u, false)
	return sb.String()
}

func (x Intersection) String() string {
	var sb strings.Builder
	writeType(&sb, x, false)
	return sb.String()
}

func (o Object) String() string {
	var sb strings.Builder
	writeType(&sb, o, false)
	return sb.String()
}

func (a Array) String() string {
	var sb strings.Builder
	writeType(&sb, a, false)
	return sb.String()
}

func (s Special) String() string {
	switch s.Kind {
	case KindVoid:
		return "void"
	case KindNull:
		return "null"
	case KindNever:
		return "never"
	}
	return "special?"
}

// Key is a canonical rendering usable as a map key: structurally equal
// types have equal keys and host types are spelled with their package path.
func Key(t Tp) string {
	var sb strings.Builder
	writeType(&sb, t, true)
	return sb.String()
}

func hostName(h reflect.Type, canonical bool) string {
	if name, ok := hostNames[h]; ok {
		return name
	}
	if canonical && h.PkgPath() != "" {
		return h.PkgPath() + "." + h.Name()
	}
	return h.String()
}

func writeType(sb *strings.Builder, t Tp, canonical bool) {
	switch v := t.(type) {
	case nil:
		sb.WriteString("<nil>")
	case Nominal:
		sb.WriteString(hostName(v.Host, canonical))
		if len(v.Args) > 0 {
			sb.WriteByte('<')
			for i, a := range v.Args {
				if i > 0 {
					sb.WriteString(", ")
				}
				writeType(sb, a, canonical)
			}
			sb.WriteByte('>')
		}
	case Generic:
		sb.WriteString(v.String())
	case Union:
		writeMembers(sb, v.members, " | ", canonical)
	case Intersection:
		writeMembers(sb, v.members, " & ", canonical)
	case Object:
		sb.WriteByte('[')
		for i, f := range v.fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(f.Name)
			sb.WriteString(": ")
			writeType(sb, f.Type, canonical)
		}
		sb.WriteByte(']')
	case Array:
		sb.WriteByte('[')
		writeType(sb, v.Item, canonical)
		sb.WriteByte(']')
	case Special:
		sb.WriteString(v.String())
	}
}

func writeMembers(sb *strings.Builder, members []Tp, sep string, canonical bool) {
	sb.WriteByte('(')
	for i, m := range members {
		if i > 0 {
			sb.WriteString(sep)
		}
		writeType(sb, m, canonical)
	}
	sb.WriteByte(')')
}
