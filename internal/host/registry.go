package host

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"vsharp/internal/project"
)

// Namespace is one importable native module.
type Namespace struct {
	Sig   project.Signature
	funcs map[string][]*Func
	types map[string]reflect.Type
	reg   *Registry
}

// Registry holds every native namespace plus extension methods on host types.
type Registry struct {
	mu         sync.RWMutex
	namespaces map[string]*Namespace
	extensions map[reflect.Type]map[string][]*Func
	methods    map[reflect.Type]map[string]*Func
	byName     map[string]*Func
	typeNames  map[reflect.Type]string
}

func NewRegistry() *Registry {
	return &Registry{
		namespaces: make(map[string]*Namespace),
		extensions: make(map[reflect.Type]map[string][]*Func),
		methods:    make(map[reflect.Type]map[string]*Func),
		byName:     make(map[string]*Func),
		typeNames:  make(map[reflect.Type]string),
	}
}

// Namespace returns the namespace for sig, creating it on first use.
func (r *Registry) Namespace(sig project.Signature) *Namespace {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ns, ok := r.namespaces[sig.String()]; ok {
		return ns
	}
	ns := &Namespace{
		Sig:   sig,
		funcs: make(map[string][]*Func),
		types: make(map[string]reflect.Type),
		reg:   r,
	}
	r.namespaces[sig.String()] = ns
	return ns
}

// Func registers fn under name. Registering a name twice adds an overload.
func (ns *Namespace) Func(name string, fn any) error {
	qualified := ns.Sig.Join(name).String()
	ns.reg.mu.Lock()
	defer ns.reg.mu.Unlock()
	if n := len(ns.funcs[name]); n > 0 {
		qualified = fmt.Sprintf("%s#%d", qualified, n)
	}
	f, err := newFunc(name, qualified, reflect.ValueOf(fn), false)
	if err != nil {
		return err
	}
	ns.funcs[name] = append(ns.funcs[name], f)
	ns.reg.byName[qualified] = f
	return nil
}

// Type registers a host type usable in annotations as Namespace.name.
func (ns *Namespace) Type(name string, rt reflect.Type) {
	ns.reg.mu.Lock()
	defer ns.reg.mu.Unlock()
	ns.types[name] = rt
	ns.reg.typeNames[rt] = ns.Sig.Join(name).String()
}

// Extend registers fn as a method named name on the type of its first parameter.
func (r *Registry) Extend(name string, fn any) error {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.Type().NumIn() == 0 {
		return fmt.Errorf("extension %s needs a receiver parameter", name)
	}
	recv := v.Type().In(0)
	r.mu.Lock()
	defer r.mu.Unlock()
	qualified := r.typeNameLocked(recv) + "::" + name
	f, err := newFunc(name, qualified, v, true)
	if err != nil {
		return err
	}
	if r.extensions[recv] == nil {
		r.extensions[recv] = make(map[string][]*Func)
	}
	r.extensions[recv][name] = append(r.extensions[recv][name], f)
	r.byName[qualified] = f
	return nil
}

func (r *Registry) typeNameLocked(rt reflect.Type) string {
	if name, ok := r.typeNames[rt]; ok {
		return name
	}
	return TypeOf(rt).String()
}

// Resolve finds the longest registered namespace that prefixes sig and
// returns it with the remaining segments.
func (r *Registry) Resolve(sig project.Signature) (*Namespace, []string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	segs := sig.Segments()
	for n := len(segs); n > 0; n-- {
		if ns, ok := r.namespaces[strings.Join(segs[:n], ".")]; ok {
			return ns, segs[n:], nil
		}
	}
	return nil, nil, fmt.Errorf("%w: %s", ErrNoNamespace, sig)
}

// Funcs returns the overloads of member in the native module sig. A
// remainder left by Resolve prefixes the member name.
func (r *Registry) Funcs(sig project.Signature, member string) ([]*Func, error) {
	ns, rest, err := r.Resolve(sig)
	if err != nil {
		return nil, err
	}
	key := strings.Join(append(append([]string(nil), rest...), member), ".")
	r.mu.RLock()
	defer r.mu.RUnlock()
	return ns.funcs[key], nil
}

// LookupType resolves path (namespace segments then a type name) to a host type.
func (r *Registry) LookupType(sig project.Signature, path []string) (reflect.Type, bool) {
	ns, rest, err := r.Resolve(sig)
	if err != nil {
		return nil, false
	}
	name := strings.Join(append(append([]string(nil), rest...), path...), ".")
	r.mu.RLock()
	defer r.mu.RUnlock()
	rt, ok := ns.types[name]
	return rt, ok
}

// Methods returns the capability set entries called name for receivers of
// type rt: its reflect methods followed by registered extensions.
func (r *Registry) Methods(rt reflect.Type, name string) []*Func {
	var out []*Func
	if m, ok := r.method(rt, name); ok {
		out = append(out, m)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append(out, r.extensions[rt][name]...)
}

func (r *Registry) method(rt reflect.Type, name string) (*Func, bool) {
	r.mu.RLock()
	f, ok := r.methods[rt][name]
	r.mu.RUnlock()
	if ok {
		return f, true
	}
	m, ok := rt.MethodByName(name)
	if !ok || rt.Kind() == reflect.Interface {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.methods[rt][name]; ok {
		return f, true
	}
	qualified := r.typeNameLocked(rt) + "::" + name
	f, err := newFunc(name, qualified, m.Func, true)
	if err != nil {
		return nil, false
	}
	if r.methods[rt] == nil {
		r.methods[rt] = make(map[string]*Func)
	}
	r.methods[rt][name] = f
	r.byName[qualified] = f
	return f, true
}

// ByName finds a function by its qualified name, as recorded in artifacts.
// Methods are resolved on demand from their type's registered name.
func (r *Registry) ByName(qualified string) (*Func, bool) {
	r.mu.RLock()
	f, ok := r.byName[qualified]
	r.mu.RUnlock()
	if ok {
		return f, true
	}
	typeName, method, found := strings.Cut(qualified, "::")
	if !found {
		return nil, false
	}
	r.mu.RLock()
	var rt reflect.Type
	for t, name := range r.typeNames {
		if name == typeName {
			rt = t
			break
		}
	}
	r.mu.RUnlock()
	if rt == nil {
		return nil, false
	}
	return r.method(rt, method)
}

// TypeByName finds a registered host type by its qualified name.
func (r *Registry) TypeByName(name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for rt, n := range r.typeNames {
		if n == name {
			return rt, true
		}
	}
	return nil, false
}

// TypeName returns the qualified name of a registered host type.
func (r *Registry) TypeName(rt reflect.Type) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.typeNames[rt]
	return name, ok
}

// Names lists registered namespaces in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.namespaces))
	for name := range r.namespaces {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
