package forge

import (
	"sort"
	"sync"

	"vsharp/internal/diag"
	"vsharp/internal/host"
	"vsharp/internal/source"
	"vsharp/internal/types"
)

// ClassForge synthesizes one class per concrete object shape and one
// interface per structural shape, each at most once.
type ClassForge struct {
	ifaces  *InterfaceForge
	builder *host.Builder

	mu         sync.RWMutex
	reserved   map[string]types.Object
	classes    map[string]*host.Class
	interfaces map[string]*host.Interface
}

func NewClassForge(ifaces *InterfaceForge, builder *host.Builder) *ClassForge {
	return &ClassForge{
		ifaces:     ifaces,
		builder:    builder,
		reserved:   make(map[string]types.Object),
		classes:    make(map[string]*host.Class),
		interfaces: make(map[string]*host.Interface),
	}
}

// Reserve records that an object literal of shape exists and reports the
// shape to the interface forge. Synthesis happens after Finalize.
func (c *ClassForge) Reserve(shape types.Object) error {
	if err := c.ifaces.Report(shape); err != nil {
		return err
	}
	c.mu.Lock()
	c.reserved[types.Key(shape)] = shape
	c.mu.Unlock()
	return nil
}

// SynthesizeReserved builds the classes of every reserved shape in key
// order so that class IDs do not depend on scheduling.
func (c *ClassForge) SynthesizeReserved() error {
	c.mu.RLock()
	keys := make([]string, 0, len(c.reserved))
	for k := range c.reserved {
		keys = append(keys, k)
	}
	c.mu.RUnlock()
	sort.Strings(keys)
	for _, k := range keys {
		c.mu.RLock()
		shape := c.reserved[k]
		c.mu.RUnlock()
		if _, err := c.Class(shape); err != nil {
			return err
		}
	}
	return nil
}

// Class returns the class backing shape, synthesizing it on first use
// together with an implementation of every interface shape satisfies.
func (c *ClassForge) Class(shape types.Object) (*host.Class, error) {
	if !c.ifaces.Finalized() {
		return nil, notFinalized("class synthesis")
	}
	key := types.Key(shape)
	c.mu.RLock()
	cls, ok := c.classes[key]
	c.mu.RUnlock()
	if ok {
		return cls, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cls, ok := c.classes[key]; ok {
		return cls, nil
	}
	supers, err := c.ifaces.FindSubsets(shape)
	if err != nil {
		return nil, err
	}
	cls = c.builder.DefineClass(key, fieldNames(shape))
	for _, super := range supers {
		iface := c.interfaceLocked(super)
		if err := c.builder.Implement(cls, iface); err != nil {
			return nil, diag.BuildErrorf(diag.BldInternal, source.Span{}, "%v", err)
		}
	}
	c.classes[key] = cls
	return cls, nil
}

// Interface returns the interface for shape, synthesizing it on first use.
func (c *ClassForge) Interface(shape types.Object) (*host.Interface, error) {
	if !c.ifaces.Finalized() {
		return nil, notFinalized("interface synthesis")
	}
	key := types.Key(shape)
	c.mu.RLock()
	iface, ok := c.interfaces[key]
	c.mu.RUnlock()
	if ok {
		return iface, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interfaceLocked(shape), nil
}

func (c *ClassForge) interfaceLocked(shape types.Object) *host.Interface {
	key := types.Key(shape)
	if iface, ok := c.interfaces[key]; ok {
		return iface
	}
	iface := c.builder.DefineInterface(key, fieldNames(shape))
	c.interfaces[key] = iface
	return iface
}

func fieldNames(shape types.Object) []string {
	names := make([]string, shape.Len())
	for i, f := range shape.Fields() {
		names[i] = f.Name
	}
	return names
}
