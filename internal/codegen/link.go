package codegen

import (
	"vsharp/internal/bytecode"
	"vsharp/internal/host"
	"vsharp/internal/source"
)

// Link assembles a program from generated functions, indexed by the handle
// the builder reserved for each of them.
func Link(b *host.Builder, funcs []*bytecode.Function, natives *Natives) (*bytecode.Program, error) {
	decls := b.Funcs()
	if len(funcs) != len(decls) {
		return nil, internalf(source.Span{}, "%d functions generated for %d reserved handles", len(funcs), len(decls))
	}
	for h, fn := range funcs {
		if fn == nil {
			return nil, internalf(source.Span{}, "function %s.%s was never generated", decls[h].Module, decls[h].Name)
		}
	}
	p := bytecode.NewProgram()
	p.Funcs = funcs
	p.Natives = natives.Names()
	p.Classes = b.Classes()
	p.Interfaces = b.Interfaces()
	for _, m := range b.Modules() {
		entries := make(map[string]int32, len(m.Funcs))
		for name, h := range m.Funcs {
			entries[name] = int32(h)
		}
		p.Modules = append(p.Modules, bytecode.Module{Name: m.Name, Init: int32(m.Init), Funcs: entries})
	}
	p.SortModules()
	if err := p.Validate(); err != nil {
		return nil, internalf(source.Span{}, "%v", err)
	}
	return p, nil
}
