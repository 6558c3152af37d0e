package binding

import (
	"nesc/internal/ast"
	"nesc/internal/types"
)

// ScopeKind tells where a declaration lives inside its unit.
type ScopeKind uint8

const (
	ScopeInvalid        ScopeKind = iota
	ScopeFile                     // outside any unit
	ScopeSpecification            // uses/provides section
	ScopeImplementation           // module implementation body
	ScopeWiring                   // configuration implementation body
	ScopeFunction                 // parameters and top block of a function
	ScopeBlock                    // nested compound statement
	ScopeInterface                // interface definition body
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeFile:
		return "file"
	case ScopeSpecification:
		return "specification"
	case ScopeImplementation:
		return "implementation"
	case ScopeWiring:
		return "wiring"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	case ScopeInterface:
		return "interface"
	default:
		return "invalid"
	}
}

// BindingID addresses a binding in Bindings; 0 means none.
type BindingID uint32

const NoBindingID BindingID = 0

// Binding is a resolved declaration.
type Binding struct {
	ID        BindingID
	Namespace Namespace
	Decl      Identifier
	Global    string // target of a local alias; equals Decl.Name otherwise
	Unit      string // enclosing component or interface, "" at file scope
	Scope     ScopeKind
	Type      types.TypeID
}

// ImplementationLocal reports whether b is a variable declared inside a
// module implementation (body or function).
func (b Binding) ImplementationLocal() bool {
	if b.Namespace != NSVariable {
		return false
	}
	switch b.Scope {
	case ScopeImplementation, ScopeFunction, ScopeBlock:
		return true
	}
	return false
}

// Resolver answers name lookups during and after resolution.
type Resolver interface {
	Lookup(ns Namespace, name string) (Binding, bool)
	BindingOf(node ast.NodeID) (Binding, bool)
}

type nameKey struct {
	ns   Namespace
	name string
}

// Bindings is the default Resolver, filled by the resolution pass.
type Bindings struct {
	items  *ast.Arena[Binding]
	byNode map[ast.NodeID]BindingID
	byName map[nameKey][]BindingID
	occurs map[BindingID][]ast.NodeID
}

func NewBindings() *Bindings {
	return &Bindings{
		items:  ast.NewArena[Binding](64),
		byNode: make(map[ast.NodeID]BindingID),
		byName: make(map[nameKey][]BindingID),
		occurs: make(map[BindingID][]ast.NodeID),
	}
}

// Declare records b and binds its declaring node.
func (bs *Bindings) Declare(b Binding) BindingID {
	id := BindingID(bs.items.Allocate(b))
	bs.items.Get(uint32(id)).ID = id
	key := nameKey{ns: b.Namespace, name: b.Decl.Name}
	bs.byName[key] = append(bs.byName[key], id)
	if b.Decl.Node.IsValid() {
		bs.byNode[b.Decl.Node] = id
		bs.occurs[id] = append(bs.occurs[id], b.Decl.Node)
	}
	return id
}

// Refer binds a reference occurrence to an existing binding.
func (bs *Bindings) Refer(node ast.NodeID, id BindingID) {
	if !node.IsValid() || bs.items.Get(uint32(id)) == nil {
		return
	}
	if _, dup := bs.byNode[node]; dup {
		return
	}
	bs.byNode[node] = id
	bs.occurs[id] = append(bs.occurs[id], node)
}

func (bs *Bindings) Get(id BindingID) (Binding, bool) {
	if b := bs.items.Get(uint32(id)); b != nil {
		return *b, true
	}
	return Binding{}, false
}

// SetType records the declared type of a binding.
func (bs *Bindings) SetType(id BindingID, ty types.TypeID) {
	if b := bs.items.Get(uint32(id)); b != nil {
		b.Type = ty
	}
}

// Lookup returns the first binding declared under name.
func (bs *Bindings) Lookup(ns Namespace, name string) (Binding, bool) {
	ids := bs.byName[nameKey{ns: ns, name: name}]
	if len(ids) == 0 {
		return Binding{}, false
	}
	return bs.Get(ids[0])
}

// LookupAll returns every binding declared under name, in order.
func (bs *Bindings) LookupAll(ns Namespace, name string) []Binding {
	ids := bs.byName[nameKey{ns: ns, name: name}]
	out := make([]Binding, 0, len(ids))
	for _, id := range ids {
		b, _ := bs.Get(id)
		out = append(out, b)
	}
	return out
}

func (bs *Bindings) BindingOf(node ast.NodeID) (Binding, bool) {
	id, ok := bs.byNode[node]
	if !ok {
		return Binding{}, false
	}
	return bs.Get(id)
}

// Occurrences lists the declaring node followed by every reference.
func (bs *Bindings) Occurrences(id BindingID) []ast.NodeID {
	return append([]ast.NodeID(nil), bs.occurs[id]...)
}

func (bs *Bindings) Len() int { return int(bs.items.Len()) }

// All returns every binding in declaration order.
func (bs *Bindings) All() []Binding {
	return append([]Binding(nil), bs.items.Slice()...)
}
