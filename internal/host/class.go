package host

// Class is a synthesized record type. Impl maps an interface ID to the
// backing field index of each of its properties.
type Class struct {
	ID     int           `msgpack:"id" yaml:"id"`
	Name   string        `msgpack:"name" yaml:"name"`
	Fields []string      `msgpack:"fields" yaml:"fields"`
	Impl   map[int][]int `msgpack:"impl" yaml:"impl"`
}

func (c *Class) FieldIndex(name string) int {
	for i, f := range c.Fields {
		if f == name {
			return i
		}
	}
	return -1
}

// Implements reports whether c implements the interface with the given ID.
func (c *Class) Implements(iface int) bool {
	_, ok := c.Impl[iface]
	return ok
}

// Interface is a synthesized structural interface with one property per
// field of its shape.
type Interface struct {
	ID    int      `msgpack:"id" yaml:"id"`
	Name  string   `msgpack:"name" yaml:"name"`
	Props []string `msgpack:"props" yaml:"props"`
}

func (i *Interface) PropIndex(name string) int {
	for p, prop := range i.Props {
		if prop == name {
			return p
		}
	}
	return -1
}
