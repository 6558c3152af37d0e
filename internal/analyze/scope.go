package analyze

import (
	"nesc/internal/binding"
	"nesc/internal/types"
)

// EnterScope opens a variable scope of the given kind.
func (s *Stack) EnterScope(kind binding.ScopeKind) {
	s.scopes = append(s.scopes, scope{kind: kind, names: make(map[string]binding.BindingID)})
}

// LeaveScope closes the innermost scope, which must be of kind.
func (s *Stack) LeaveScope(kind binding.ScopeKind) {
	n := len(s.scopes)
	if n == 0 || s.scopes[n-1].kind != kind {
		got := "none"
		if n > 0 {
			got = s.scopes[n-1].kind.String()
		}
		panic(&StackError{Op: "leave scope", Want: NewFlag(kind.String()), Got: NewFlag(got), Depth: n})
	}
	s.scopes = s.scopes[:n-1]
}

// WithScope runs fn inside a fresh scope of kind.
func (s *Stack) WithScope(kind binding.ScopeKind, fn func()) {
	s.EnterScope(kind)
	depth := len(s.scopes)
	defer func() {
		if len(s.scopes) >= depth {
			s.scopes = s.scopes[:depth-1]
		}
	}()
	fn()
}

// ScopeKind returns the innermost scope kind, ScopeFile outside any scope.
func (s *Stack) ScopeKind() binding.ScopeKind {
	if len(s.scopes) == 0 {
		return binding.ScopeFile
	}
	return s.scopes[len(s.scopes)-1].kind
}

// Declare binds name in the innermost scope. When name is already
// declared at that level the previous binding is returned with false.
func (s *Stack) Declare(name string, id binding.BindingID) (binding.BindingID, bool) {
	if len(s.scopes) == 0 {
		s.EnterScope(binding.ScopeFile)
	}
	top := s.scopes[len(s.scopes)-1]
	if prev, ok := top.names[name]; ok {
		return prev, false
	}
	top.names[name] = id
	return id, true
}

// DeclaredHere looks name up in the innermost scope only.
func (s *Stack) DeclaredHere(name string) (binding.BindingID, bool) {
	if len(s.scopes) == 0 {
		return binding.NoBindingID, false
	}
	id, ok := s.scopes[len(s.scopes)-1].names[name]
	return id, ok
}

// Lookup searches the scopes innermost first.
func (s *Stack) Lookup(name string) (binding.BindingID, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if id, ok := s.scopes[i].names[name]; ok {
			return id, true
		}
	}
	return binding.NoBindingID, false
}

// Shadows reports whether name is bound in a scope enclosing the innermost one.
func (s *Stack) Shadows(name string) bool {
	for i := len(s.scopes) - 2; i >= 0; i-- {
		if _, ok := s.scopes[i].names[name]; ok {
			return true
		}
	}
	return false
}

// ExpectType pushes the type an initializer is being matched against.
func (s *Stack) ExpectType(ty types.TypeID) {
	s.expected = append(s.expected, ty)
}

// DoneExpecting pops the innermost expected type.
func (s *Stack) DoneExpecting() {
	n := len(s.expected)
	if n == 0 {
		panic(&StackError{Op: "pop expected type", Want: NewFlag("expected-type")})
	}
	s.expected = s.expected[:n-1]
}

// Expected returns the innermost expected type.
func (s *Stack) Expected() (types.TypeID, bool) {
	if len(s.expected) == 0 {
		return types.NoTypeID, false
	}
	return s.expected[len(s.expected)-1], true
}

// WithExpected runs fn with ty as the expected initializer type.
func (s *Stack) WithExpected(ty types.TypeID, fn func()) {
	s.ExpectType(ty)
	depth := len(s.expected)
	defer func() {
		if len(s.expected) >= depth {
			s.expected = s.expected[:depth-1]
		}
	}()
	fn()
}
