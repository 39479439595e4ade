package ir

import (
	"vsharp/internal/host"
	"vsharp/internal/project"
	"vsharp/internal/source"
	"vsharp/internal/types"
)

type Param struct {
	Name string
	Type types.Tp // nil when not annotated
}

// Function is a declared function whose body has not been inferred yet.
// Generic parameters appear as types.Generic in Params and Result.
type Function struct {
	Name     string
	Module   project.Signature
	Span     source.Span
	Params   []Param
	Generics int
	Result   types.Tp // nil when inferred
	Body     *Block
	Handle   host.FuncHandle
}

// Qualified returns "module.name".
func (f *Function) Qualified() string {
	return f.Module.Join(f.Name).String()
}

// ParamTypes returns the declared parameter types; unannotated ones are Any.
func (f *Function) ParamTypes() []types.Tp {
	out := make([]types.Tp, len(f.Params))
	for i, p := range f.Params {
		if p.Type == nil {
			out[i] = types.Any
			continue
		}
		out[i] = p.Type
	}
	return out
}

// TypeDef is a `type Name<G> = T` alias.
type TypeDef struct {
	Type     types.Tp
	Generics int
}

// Module is the checker's output for one source file.
type Module struct {
	Sig       project.Signature
	Functions map[string]*Function
	Order     []string // declaration order of Functions
	Types     map[string]*TypeDef
	Init      *Block
	InitFn    *Function
}

func NewModule(sig project.Signature) *Module {
	return &Module{
		Sig:       sig,
		Functions: make(map[string]*Function),
		Types:     make(map[string]*TypeDef),
	}
}

// Function looks up a declared function by name.
func (m *Module) Function(name string) (*Function, bool) {
	fn, ok := m.Functions[name]
	return fn, ok
}

// VarFrame maps each local slot to its static type.
type VarFrame struct {
	Slots []types.Tp
}

func (f VarFrame) Count() int { return len(f.Slots) }

// TypedFunction is a fully inferred function.
type TypedFunction struct {
	Source *Function
	Params []types.Tp
	Result types.Tp
	Body   Typed
	Frame  VarFrame
}

// TypedModule is the inference output for one module.
type TypedModule struct {
	Sig       project.Signature
	Init      *TypedFunction
	Functions []*TypedFunction
}
