package symbols

// ScopedNames is one lexical scope; lookups walk up through parents.
type ScopedNames struct {
	parent *ScopedNames
	names  map[string]struct{}
}

// NewScope creates a root scope.
func NewScope() *ScopedNames {
	return &ScopedNames{names: make(map[string]struct{})}
}

// Child opens a nested scope.
func (s *ScopedNames) Child() *ScopedNames {
	return &ScopedNames{parent: s, names: make(map[string]struct{})}
}

// Parent returns the enclosing scope, nil for the root.
func (s *ScopedNames) Parent() *ScopedNames { return s.parent }

// Add declares name in this scope.
func (s *ScopedNames) Add(name string) {
	s.names[name] = struct{}{}
}

// Has reports whether name is declared here or in any enclosing scope.
func (s *ScopedNames) Has(name string) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if _, ok := cur.names[name]; ok {
			return true
		}
	}
	return false
}

// HasLocal ignores enclosing scopes.
func (s *ScopedNames) HasLocal(name string) bool {
	_, ok := s.names[name]
	return ok
}
