package buildpipeline

import (
	"fmt"
	"sort"
	"strings"

	"vsharp/internal/bytecode"
)

// ValidateEntry checks that module exists in p and, when fn is set, that
// it declares fn.
func ValidateEntry(p *bytecode.Program, module, fn string) error {
	if p == nil {
		return fmt.Errorf("missing program")
	}
	m, ok := p.Module(module)
	if !ok {
		names := make([]string, len(p.Modules))
		for i, m := range p.Modules {
			names[i] = m.Name
		}
		return fmt.Errorf("entry module %q not found (have %s)", module, strings.Join(names, ", "))
	}
	if fn == "" {
		return nil
	}
	if _, ok := m.Funcs[fn]; !ok {
		funcs := make([]string, 0, len(m.Funcs))
		for name := range m.Funcs {
			funcs = append(funcs, name)
		}
		sort.Strings(funcs)
		return fmt.Errorf("module %s has no function %q (have %s)", module, fn, strings.Join(funcs, ", "))
	}
	return nil
}
