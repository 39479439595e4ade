package host

import (
	"fmt"
	"sort"
	"sync"

	"fortio.org/safecast"

	"vsharp/internal/project"
)

// FuncHandle identifies a script function reserved in a Builder.
type FuncHandle int32

// InitName is the reserved name of a module initializer.
const InitName = "<init>"

// FuncDecl is a reserved function slot.
type FuncDecl struct {
	Module string
	Name   string
}

// ModuleDef is a defined module with its initializer and entry functions.
type ModuleDef struct {
	Name  string
	Init  FuncHandle
	Funcs map[string]FuncHandle
}

// Builder defines modules, function slots, classes and interfaces. Every
// method takes the lock for the duration of the call only.
type Builder struct {
	mu      sync.Mutex
	funcs   []FuncDecl
	modules map[string]*ModuleDef
	classes []*Class
	ifaces  []*Interface
}

func NewBuilder() *Builder {
	return &Builder{modules: make(map[string]*ModuleDef)}
}

// DefineModule registers sig and reserves its initializer. Defining the
// same module twice returns the existing initializer handle.
func (b *Builder) DefineModule(sig project.Signature) FuncHandle {
	b.mu.Lock()
	defer b.mu.Unlock()
	if m, ok := b.modules[sig.String()]; ok {
		return m.Init
	}
	m := &ModuleDef{Name: sig.String(), Funcs: make(map[string]FuncHandle)}
	m.Init = b.reserveLocked(m.Name, InitName)
	b.modules[m.Name] = m
	return m.Init
}

// DefineFunction reserves a function slot in module sig.
func (b *Builder) DefineFunction(sig project.Signature, name string) (FuncHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, ok := b.modules[sig.String()]
	if !ok {
		return 0, fmt.Errorf("module %s is not defined", sig)
	}
	if _, dup := m.Funcs[name]; dup {
		return 0, fmt.Errorf("function %s.%s is already defined", sig, name)
	}
	h := b.reserveLocked(m.Name, name)
	m.Funcs[name] = h
	return h, nil
}

func (b *Builder) reserveLocked(module, name string) FuncHandle {
	n, err := safecast.Conv[int32](len(b.funcs))
	if err != nil {
		panic(fmt.Errorf("function handle overflow: %w", err))
	}
	h := FuncHandle(n)
	b.funcs = append(b.funcs, FuncDecl{Module: module, Name: name})
	return h
}

// DefineClass creates a class with one backing field per name.
func (b *Builder) DefineClass(name string, fields []string) *Class {
	b.mu.Lock()
	defer b.mu.Unlock()
	c := &Class{
		ID:     len(b.classes),
		Name:   name,
		Fields: append([]string(nil), fields...),
		Impl:   make(map[int][]int),
	}
	b.classes = append(b.classes, c)
	return c
}

// DefineInterface creates an interface with one property per name.
func (b *Builder) DefineInterface(name string, props []string) *Interface {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := &Interface{ID: len(b.ifaces), Name: name, Props: append([]string(nil), props...)}
	b.ifaces = append(b.ifaces, i)
	return i
}

// Implement makes c implement i by mapping each property to the backing
// field of the same name.
func (b *Builder) Implement(c *Class, i *Interface) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := c.Impl[i.ID]; ok {
		return nil
	}
	slots := make([]int, len(i.Props))
	for p, prop := range i.Props {
		idx := c.FieldIndex(prop)
		if idx < 0 {
			return fmt.Errorf("class %s has no field %q required by %s", c.Name, prop, i.Name)
		}
		slots[p] = idx
	}
	c.Impl[i.ID] = slots
	return nil
}

// FuncCount is the number of reserved function slots.
func (b *Builder) FuncCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.funcs)
}

// Funcs returns a copy of the reserved slots indexed by handle.
func (b *Builder) Funcs() []FuncDecl {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]FuncDecl(nil), b.funcs...)
}

// Modules returns the defined modules sorted by name.
func (b *Builder) Modules() []ModuleDef {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]ModuleDef, 0, len(b.modules))
	for _, m := range b.modules {
		funcs := make(map[string]FuncHandle, len(m.Funcs))
		for k, v := range m.Funcs {
			funcs[k] = v
		}
		out = append(out, ModuleDef{Name: m.Name, Init: m.Init, Funcs: funcs})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (b *Builder) Classes() []*Class {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Class(nil), b.classes...)
}

func (b *Builder) Interfaces() []*Interface {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Interface(nil), b.ifaces...)
}
