package bytecode

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Disasm writes a human readable listing of p.
func Disasm(w io.Writer, p *Program) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "; build %s (schema %d)\n", p.BuildID, p.Schema)
	for _, m := range p.Modules {
		fmt.Fprintf(&sb, "module %s init=#%d\n", m.Name, m.Init)
		for _, name := range sortedNames(m.Funcs) {
			fmt.Fprintf(&sb, "  func %s = #%d\n", name, m.Funcs[name])
		}
	}
	for _, c := range p.Classes {
		ifaces := make([]int, 0, len(c.Impl))
		for id := range c.Impl {
			ifaces = append(ifaces, id)
		}
		sort.Ints(ifaces)
		fmt.Fprintf(&sb, "class %d %s fields=(%s) implements=%v\n", c.ID, c.Name, strings.Join(c.Fields, ", "), ifaces)
	}
	for _, i := range p.Interfaces {
		fmt.Fprintf(&sb, "interface %d %s props=(%s)\n", i.ID, i.Name, strings.Join(i.Props, ", "))
	}
	for i, n := range p.Natives {
		fmt.Fprintf(&sb, "native %d %s\n", i, n)
	}
	for h, fn := range p.Funcs {
		fmt.Fprintf(&sb, "\nfunc #%d %s arity=%d locals=%d\n", h, fn.Qualified(), fn.Arity, fn.Locals)
		for pc, in := range fn.Code {
			fmt.Fprintf(&sb, "  %04d  %s\n", pc, formatInstr(p, fn, in))
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func formatInstr(p *Program, fn *Function, in Instr) string {
	switch in.Op {
	case OpConst:
		return fmt.Sprintf("%s %s", in.Op, fn.Consts[in.A])
	case OpLoadArg, OpLoadLocal, OpStoreLocal:
		return fmt.Sprintf("%s %d", in.Op, in.A)
	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpNeg, OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return fmt.Sprintf("%s %s", in.Op, Kind(in.B))
	case OpConv:
		return fmt.Sprintf("%s %s -> %s", in.Op, Kind(in.A), Kind(in.B))
	case OpJump, OpJumpIfFalse, OpJumpIfTrue:
		return fmt.Sprintf("%s %04d", in.Op, in.A)
	case OpCall:
		name := fmt.Sprintf("#%d", in.A)
		if int(in.A) < len(p.Funcs) && p.Funcs[in.A] != nil {
			name = p.Funcs[in.A].Qualified()
		}
		return fmt.Sprintf("%s %s/%d", in.Op, name, in.B)
	case OpCallNative:
		name := fmt.Sprintf("native#%d", in.A)
		if int(in.A) < len(p.Natives) {
			name = p.Natives[in.A]
		}
		return fmt.Sprintf("%s %s/%d", in.Op, name, in.B)
	case OpNewObject:
		return fmt.Sprintf("%s class=%d n=%d", in.Op, in.A, in.B)
	case OpGetProp, OpSetProp:
		prop := fmt.Sprintf("%d", in.B)
		if int(in.A) < len(p.Interfaces) && int(in.B) < len(p.Interfaces[in.A].Props) {
			prop = p.Interfaces[in.A].Props[in.B]
		}
		return fmt.Sprintf("%s iface=%d .%s", in.Op, in.A, prop)
	case OpNewArray:
		return fmt.Sprintf("%s n=%d", in.Op, in.B)
	case OpTypeTest:
		return fmt.Sprintf("%s %s", in.Op, formatPattern(fn.Patterns[in.A]))
	}
	return in.Op.String()
}

func formatPattern(p TypePattern) string {
	switch p.Kind {
	case PatAny:
		return "any"
	case PatNever:
		return "never"
	case PatNull:
		return "null"
	case PatHost:
		return p.Host
	case PatObject:
		if len(p.Items) == 0 {
			return fmt.Sprintf("iface#%d", p.Iface)
		}
		fields := make([]string, len(p.Items))
		for i, it := range p.Items {
			fields[i] = formatPattern(it)
		}
		return fmt.Sprintf("iface#%d{%s}", p.Iface, strings.Join(fields, ", "))
	case PatArray:
		return "[" + formatPattern(p.Items[0]) + "]"
	}
	sep := " | "
	if p.Kind == PatIntersection {
		sep = " & "
	}
	parts := make([]string, len(p.Items))
	for i, it := range p.Items {
		parts[i] = formatPattern(it)
	}
	return "(" + strings.Join(parts, sep) + ")"
}

type yamlProgram struct {
	BuildID    string         `yaml:"build_id"`
	Schema     uint16         `yaml:"schema"`
	Modules    []Module       `yaml:"modules"`
	Natives    []string       `yaml:"natives,omitempty"`
	Classes    any            `yaml:"classes,omitempty"`
	Interfaces any            `yaml:"interfaces,omitempty"`
	Funcs      []yamlFunction `yaml:"funcs"`
}

type yamlFunction struct {
	Handle int      `yaml:"handle"`
	Name   string   `yaml:"name"`
	Arity  int      `yaml:"arity"`
	Locals int      `yaml:"locals"`
	Code   []string `yaml:"code"`
}

// DisasmYAML writes the listing as a YAML document.
func DisasmYAML(w io.Writer, p *Program) error {
	doc := yamlProgram{
		BuildID:    p.BuildID.String(),
		Schema:     p.Schema,
		Modules:    p.Modules,
		Natives:    p.Natives,
		Classes:    p.Classes,
		Interfaces: p.Interfaces,
	}
	for h, fn := range p.Funcs {
		yf := yamlFunction{Handle: h, Name: fn.Qualified(), Arity: fn.Arity, Locals: fn.Locals}
		for pc, in := range fn.Code {
			yf.Code = append(yf.Code, fmt.Sprintf("%04d %s", pc, formatInstr(p, fn, in)))
		}
		doc.Funcs = append(doc.Funcs, yf)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func sortedNames(m map[string]int32) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
