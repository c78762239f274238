package slumber

import "sort"

// Scope is one frame of the lexical binding chain. Lookups walk
// outward; Define always binds in this frame; Assign rebinds in the
// frame that already owns the name, else binds here. Sealed frames are
// never the target of Assign, so their names can only be shadowed.
type Scope struct {
	parent *Scope
	values map[string]*Object
	sealed bool
}

func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent, values: make(map[string]*Object)}
}

func (s *Scope) NewChild() *Scope {
	return NewScope(s)
}

func (s *Scope) Parent() *Scope {
	return s.parent
}

func (s *Scope) Get(name string) (*Object, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if val, ok := scope.values[name]; ok {
			return val, true
		}
	}
	return nil, false
}

func (s *Scope) Define(name string, val *Object) {
	s.values[name] = val
}

func (s *Scope) Assign(name string, val *Object) {
	for scope := s; scope != nil && !scope.sealed; scope = scope.parent {
		if _, ok := scope.values[name]; ok {
			scope.values[name] = val
			return
		}
	}
	s.values[name] = val
}

// Seal stops Assign from rebinding names owned by s or its ancestors.
func (s *Scope) Seal() {
	s.sealed = true
}

// Names lists the bindings owned by this frame, sorted.
func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.values))
	for name := range s.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
