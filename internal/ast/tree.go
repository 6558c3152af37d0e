package ast

import (
	"fmt"

	"nesc/internal/source"
	"nesc/internal/tags"
	"nesc/internal/types"
)

// Node is one arena slot. Leaves keep their spelling in Name; IntLit
// additionally stores the parsed value in Value.
type Node struct {
	Kind     Kind
	Span     source.Span
	Name     source.StringID
	Op       string
	Value    int64
	Children []NodeID
	Tags     *tags.Set
	Type     types.TypeID

	attached bool // already some node's child
}

// ChildError is raised when a child violates its parent's contract or
// would break the tree shape. Reason is empty for contract violations.
type ChildError struct {
	Parent NodeID
	Kind   Kind
	Child  Kind
	Index  int
	Reason string
}

func (e *ChildError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("ast: %s node %d cannot take %s as child #%d: %s", e.Kind, e.Parent, e.Child, e.Index, e.Reason)
	}
	return fmt.Sprintf("ast: %s node %d does not accept %s as child #%d", e.Kind, e.Parent, e.Child, e.Index)
}

// ResolveError reports misuse of the per-node resolution state.
type ResolveError struct {
	Node NodeID
	Kind Kind
	Msg  string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("ast: %s node %d: %s", e.Kind, e.Node, e.Msg)
}

// Tree owns every node of one parsed file.
type Tree struct {
	File    source.FileID
	Strings *source.Interner

	nodes  *Arena[Node]
	root   NodeID
	sealed bool
}

// NewTree creates an empty tree. strs may be shared between trees.
func NewTree(file source.FileID, strs *source.Interner) *Tree {
	if strs == nil {
		strs = source.NewInterner()
	}
	return &Tree{
		File:    file,
		Strings: strs,
		nodes:   NewArena[Node](256),
	}
}

func (t *Tree) mutable(id NodeID, what string) {
	if t.sealed {
		panic(&ResolveError{Node: id, Kind: t.Kind(id), Msg: what + " on sealed tree"})
	}
}

// New allocates a childless node.
func (t *Tree) New(kind Kind, span source.Span) NodeID {
	t.mutable(NoNodeID, "allocate")
	return NodeID(t.nodes.Allocate(Node{Kind: kind, Span: span, Tags: tags.Empty}))
}

// NewLeaf allocates a leaf carrying text.
func (t *Tree) NewLeaf(kind Kind, text string, span source.Span) NodeID {
	id := t.New(kind, span)
	t.nodes.Get(uint32(id)).Name = t.Strings.Intern(text)
	return id
}

func (t *Tree) NewIdent(name string, span source.Span) NodeID {
	return t.NewLeaf(KindIdent, name, span)
}

// Add appends child to parent after validating it. A child has at most one
// parent and may not be an ancestor of parent. A rejected child leaves the
// parent untouched.
func (t *Tree) Add(parent, child NodeID) error {
	t.mutable(parent, "add")
	p := t.Get(parent)
	c := t.Get(child)
	if p == nil || c == nil {
		return &ChildError{Parent: parent, Kind: t.Kind(parent), Child: t.Kind(child), Index: t.NumChildren(parent)}
	}
	shape := func(reason string) error {
		return &ChildError{Parent: parent, Kind: p.Kind, Child: c.Kind, Index: len(p.Children), Reason: reason}
	}
	switch {
	case child == parent:
		return shape("node cannot be its own child")
	case c.attached:
		return shape("node already has a parent")
	case t.contains(child, parent):
		return shape("node is an ancestor of the parent")
	}
	existing := make([]Kind, len(p.Children))
	for i, id := range p.Children {
		existing[i] = t.Kind(id)
	}
	if !accepts(p.Kind, existing, c.Kind) {
		return &ChildError{Parent: parent, Kind: p.Kind, Child: c.Kind, Index: len(p.Children)}
	}
	p.Children = append(p.Children, child)
	c.attached = true
	return nil
}

// contains reports whether target lies in the subtree rooted at root.
func (t *Tree) contains(root, target NodeID) bool {
	for _, c := range t.Children(root) {
		if c == target || t.contains(c, target) {
			return true
		}
	}
	return false
}

// MustAdd appends children in order and panics with *ChildError on the
// first rejected one.
func (t *Tree) MustAdd(parent NodeID, children ...NodeID) {
	for _, c := range children {
		if err := t.Add(parent, c); err != nil {
			panic(err)
		}
	}
}

// Build allocates kind and attaches children; nil entries (NoNodeID) are skipped.
func (t *Tree) Build(kind Kind, span source.Span, children ...NodeID) (NodeID, error) {
	id := t.New(kind, span)
	for _, c := range children {
		if !c.IsValid() {
			continue
		}
		if err := t.Add(id, c); err != nil {
			return id, err
		}
	}
	return id, nil
}

func (t *Tree) SetOp(id NodeID, op string) {
	t.mutable(id, "set op")
	if n := t.Get(id); n != nil {
		n.Op = op
	}
}

func (t *Tree) SetValue(id NodeID, v int64) {
	t.mutable(id, "set value")
	if n := t.Get(id); n != nil {
		n.Value = v
	}
}

// SetSpan widens or replaces a node's span; parsers fix spans up once the
// closing token is known.
func (t *Tree) SetSpan(id NodeID, sp source.Span) {
	t.mutable(id, "set span")
	if n := t.Get(id); n != nil {
		n.Span = sp
	}
}

func (t *Tree) SetRoot(id NodeID) { t.root = id }

func (t *Tree) Root() NodeID { return t.root }

func (t *Tree) Get(id NodeID) *Node {
	return t.nodes.Get(uint32(id))
}

func (t *Tree) Kind(id NodeID) Kind {
	if n := t.Get(id); n != nil {
		return n.Kind
	}
	return KindInvalid
}

func (t *Tree) Span(id NodeID) source.Span {
	if n := t.Get(id); n != nil {
		return n.Span
	}
	return source.Span{}
}

// Len reports the number of allocated nodes.
func (t *Tree) Len() int { return int(t.nodes.Len()) }

func (t *Tree) Children(id NodeID) []NodeID {
	if n := t.Get(id); n != nil {
		return n.Children
	}
	return nil
}

func (t *Tree) NumChildren(id NodeID) int { return len(t.Children(id)) }

// Child returns the i-th child or NoNodeID.
func (t *Tree) Child(id NodeID, i int) NodeID {
	ch := t.Children(id)
	if i < 0 || i >= len(ch) {
		return NoNodeID
	}
	return ch[i]
}

// ChildOf returns the first child of the given kind.
func (t *Tree) ChildOf(id NodeID, kind Kind) (NodeID, bool) {
	for _, c := range t.Children(id) {
		if t.Kind(c) == kind {
			return c, true
		}
	}
	return NoNodeID, false
}

// ChildrenOf returns every child of the given kind in order.
func (t *Tree) ChildrenOf(id NodeID, kind Kind) []NodeID {
	var out []NodeID
	for _, c := range t.Children(id) {
		if t.Kind(c) == kind {
			out = append(out, c)
		}
	}
	return out
}

// Name returns the interned text of a leaf or "" for nodes without one.
func (t *Tree) Name(id NodeID) string {
	n := t.Get(id)
	if n == nil || n.Name == source.NoStringID {
		return ""
	}
	s, _ := t.Strings.Lookup(n.Name)
	return s
}

func (t *Tree) Op(id NodeID) string {
	if n := t.Get(id); n != nil {
		return n.Op
	}
	return ""
}

// SetType caches the resolved type. Setting it a second time is a fault.
func (t *Tree) SetType(id NodeID, ty types.TypeID) {
	t.mutable(id, "set type")
	n := t.Get(id)
	if n == nil {
		panic(&ResolveError{Node: id, Kind: KindInvalid, Msg: "set type on unknown node"})
	}
	if n.Type.IsValid() {
		panic(&ResolveError{Node: id, Kind: n.Kind, Msg: "type cached twice"})
	}
	n.Type = ty
}

func (t *Tree) Type(id NodeID) types.TypeID {
	if n := t.Get(id); n != nil {
		return n.Type
	}
	return types.NoTypeID
}

// Tags returns the node's set; the shared tags.Empty when nothing was added.
// Callers must not mutate the result.
func (t *Tree) Tags(id NodeID) *tags.Set {
	if n := t.Get(id); n != nil && n.Tags != nil {
		return n.Tags
	}
	return tags.Empty
}

// Tag adds tags to a node, allocating its own set on first write.
func (t *Tree) Tag(id NodeID, tt ...tags.Tag) {
	t.mutable(id, "tag")
	n := t.Get(id)
	if n == nil || len(tt) == 0 {
		return
	}
	if n.Tags == nil || n.Tags.Frozen() {
		n.Tags = tags.NewSet(len(tt))
	}
	for _, tag := range tt {
		n.Tags.Add(tag)
	}
}

func (t *Tree) Untag(id NodeID, tag tags.Tag) {
	t.mutable(id, "untag")
	n := t.Get(id)
	if n == nil || n.Tags == nil || n.Tags.Frozen() {
		return
	}
	n.Tags.Remove(tag)
}

func (t *Tree) HasTag(id NodeID, tag tags.Tag) bool {
	return t.Tags(id).Contains(tag)
}

// Seal makes the tree read-only; concurrent readers are safe afterwards.
func (t *Tree) Seal() { t.sealed = true }

func (t *Tree) Sealed() bool { return t.sealed }

// Parent finds id's parent by walking down from the root.
func (t *Tree) Parent(id NodeID) (NodeID, bool) {
	path := t.PathTo(id)
	if len(path) < 2 {
		return NoNodeID, false
	}
	return path[len(path)-2], true
}

// PathTo returns the chain root..id, or nil when id is not under the root.
func (t *Tree) PathTo(id NodeID) []NodeID {
	if !t.root.IsValid() || !id.IsValid() {
		return nil
	}
	var path []NodeID
	var found bool
	var down func(cur NodeID)
	down = func(cur NodeID) {
		path = append(path, cur)
		if cur == id {
			found = true
			return
		}
		for _, c := range t.Children(cur) {
			down(c)
			if found {
				return
			}
		}
		path = path[:len(path)-1]
	}
	down(t.root)
	if !found {
		return nil
	}
	return path
}

// NodeAt returns the innermost node whose span contains off.
func (t *Tree) NodeAt(off uint32) (NodeID, bool) {
	best := NoNodeID
	cur := t.root
	for cur.IsValid() && t.Span(cur).Contains(off) {
		best = cur
		next := NoNodeID
		for _, c := range t.Children(cur) {
			if t.Span(c).Contains(off) {
				next = c
				break
			}
		}
		cur = next
	}
	return best, best.IsValid()
}
