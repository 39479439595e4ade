package bytecode

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"vsharp/internal/host"
	"vsharp/internal/source"
)

// SchemaVersion is bumped whenever the artifact layout changes.
const SchemaVersion uint16 = 1

// ConstKind tags a constant pool entry.
type ConstKind uint8

const (
	ConstNull ConstKind = iota
	ConstI32
	ConstI64
	ConstF32
	ConstF64
	ConstBool
	ConstStr
)

// Const is a constant pool entry. Only the field selected by Kind is set.
type Const struct {
	Kind ConstKind `msgpack:"k"`
	I    int64     `msgpack:"i,omitempty"`
	F    float64   `msgpack:"f,omitempty"`
	S    string    `msgpack:"s,omitempty"`
	B    bool      `msgpack:"b,omitempty"`
}

// ConstOf converts a literal value to a pool entry.
func ConstOf(v any) (Const, error) {
	switch x := v.(type) {
	case nil:
		return Const{Kind: ConstNull}, nil
	case int32:
		return Const{Kind: ConstI32, I: int64(x)}, nil
	case int64:
		return Const{Kind: ConstI64, I: x}, nil
	case float32:
		return Const{Kind: ConstF32, F: float64(x)}, nil
	case float64:
		return Const{Kind: ConstF64, F: x}, nil
	case bool:
		return Const{Kind: ConstBool, B: x}, nil
	case string:
		return Const{Kind: ConstStr, S: x}, nil
	}
	return Const{}, fmt.Errorf("unsupported constant %T", v)
}

// Value returns the runtime value of the constant.
func (c Const) Value() any {
	switch c.Kind {
	case ConstI32:
		return int32(c.I)
	case ConstI64:
		return c.I
	case ConstF32:
		return float32(c.F)
	case ConstF64:
		return c.F
	case ConstBool:
		return c.B
	case ConstStr:
		return c.S
	}
	return nil
}

func (c Const) String() string {
	switch c.Kind {
	case ConstStr:
		return fmt.Sprintf("%q", c.S)
	case ConstNull:
		return "null"
	}
	return fmt.Sprintf("%v", c.Value())
}

// PatternKind tags a runtime type test.
type PatternKind uint8

const (
	PatAny PatternKind = iota
	PatNever
	PatNull // Void and Null
	PatHost
	PatObject
	PatArray
	PatUnion
	PatIntersection
)

// TypePattern is the runtime form of the target of an `is` test.
type TypePattern struct {
	Kind  PatternKind   `msgpack:"k" yaml:"kind"`
	Host  string        `msgpack:"h,omitempty" yaml:"host,omitempty"`
	Iface int32         `msgpack:"i,omitempty" yaml:"iface,omitempty"`
	Items []TypePattern `msgpack:"items,omitempty" yaml:"items,omitempty"`
}

// Function is one compiled function body.
type Function struct {
	Name     string        `msgpack:"name"`
	Module   string        `msgpack:"module"`
	Arity    int           `msgpack:"arity"`
	Locals   int           `msgpack:"locals"`
	Code     []Instr       `msgpack:"code"`
	Spans    []source.Span `msgpack:"spans"`
	Consts   []Const       `msgpack:"consts"`
	Patterns []TypePattern `msgpack:"patterns,omitempty"`
}

// Qualified returns "module.name".
func (f *Function) Qualified() string {
	return f.Module + "." + f.Name
}

// Module is the entry table of one source module.
type Module struct {
	Name  string           `msgpack:"name" yaml:"name"`
	Init  int32            `msgpack:"init" yaml:"init"`
	Funcs map[string]int32 `msgpack:"funcs" yaml:"funcs"`
}

// Program is a linked build. Funcs is indexed by function handle; native
// calls index Natives, which holds qualified host function names.
type Program struct {
	Schema     uint16            `msgpack:"schema"`
	BuildID    uuid.UUID         `msgpack:"build_id"`
	Modules    []Module          `msgpack:"modules"`
	Funcs      []*Function       `msgpack:"funcs"`
	Natives    []string          `msgpack:"natives"`
	Classes    []*host.Class     `msgpack:"classes"`
	Interfaces []*host.Interface `msgpack:"interfaces"`
}

// NewProgram returns an empty program with a fresh build ID.
func NewProgram() *Program {
	return &Program{Schema: SchemaVersion, BuildID: uuid.New()}
}

// Module finds a module by name.
func (p *Program) Module(name string) (*Module, bool) {
	i := sort.Search(len(p.Modules), func(i int) bool { return p.Modules[i].Name >= name })
	if i < len(p.Modules) && p.Modules[i].Name == name {
		return &p.Modules[i], true
	}
	return nil, false
}

// SortModules orders Modules by name so Module can search them.
func (p *Program) SortModules() {
	sort.Slice(p.Modules, func(i, j int) bool { return p.Modules[i].Name < p.Modules[j].Name })
}

// Validate checks that every reference inside the program resolves.
func (p *Program) Validate() error {
	for h, fn := range p.Funcs {
		if fn == nil {
			return fmt.Errorf("function handle %d has no body", h)
		}
		if len(fn.Spans) != len(fn.Code) {
			return fmt.Errorf("%s: %d spans for %d instructions", fn.Qualified(), len(fn.Spans), len(fn.Code))
		}
		for pc, in := range fn.Code {
			if err := p.validateInstr(fn, pc, in); err != nil {
				return err
			}
		}
	}
	for _, m := range p.Modules {
		if int(m.Init) >= len(p.Funcs) {
			return fmt.Errorf("module %s: initializer handle %d out of range", m.Name, m.Init)
		}
		for name, h := range m.Funcs {
			if int(h) >= len(p.Funcs) {
				return fmt.Errorf("module %s: function %s handle %d out of range", m.Name, name, h)
			}
		}
	}
	return nil
}

func (p *Program) validateInstr(fn *Function, pc int, in Instr) error {
	bad := func(what string) error {
		return fmt.Errorf("%s@%d: %s %s %d out of range", fn.Qualified(), pc, in.Op, what, in.A)
	}
	switch {
	case in.A < 0 || in.B < 0:
		return fmt.Errorf("%s@%d: %s has a negative operand", fn.Qualified(), pc, in.Op)
	case in.Op == OpConst && int(in.A) >= len(fn.Consts):
		return bad("constant")
	case in.Op.IsJump() && (in.A < 0 || int(in.A) > len(fn.Code)):
		return bad("target")
	case in.Op == OpCall && int(in.A) >= len(p.Funcs):
		return bad("function")
	case in.Op == OpCallNative && int(in.A) >= len(p.Natives):
		return bad("native")
	case in.Op == OpNewObject && int(in.A) >= len(p.Classes):
		return bad("class")
	case (in.Op == OpGetProp || in.Op == OpSetProp) && int(in.A) >= len(p.Interfaces):
		return bad("interface")
	case in.Op == OpTypeTest && int(in.A) >= len(fn.Patterns):
		return bad("pattern")
	case (in.Op == OpLoadLocal || in.Op == OpStoreLocal) && int(in.A) >= fn.Locals:
		return bad("slot")
	case in.Op == OpLoadArg && int(in.A) >= fn.Arity:
		return bad("argument")
	}
	return nil
}
