package ast

// Visitor receives nodes in depth-first order. Visit is called before the
// children and returns whether to descend; EndVisit runs after the children
// only when Visit returned true.
type Visitor interface {
	Visit(t *Tree, id NodeID) bool
	EndVisit(t *Tree, id NodeID)
}

// Walk traverses the subtree rooted at root.
func Walk(t *Tree, root NodeID, v Visitor) {
	n := t.Get(root)
	if n == nil {
		return
	}
	if !v.Visit(t, root) {
		return
	}
	for _, c := range n.Children {
		Walk(t, c, v)
	}
	v.EndVisit(t, root)
}

// VisitorFuncs adapts a pair of functions; nil funcs descend and do nothing.
type VisitorFuncs struct {
	Pre  func(t *Tree, id NodeID) bool
	Post func(t *Tree, id NodeID)
}

func (f VisitorFuncs) Visit(t *Tree, id NodeID) bool {
	if f.Pre == nil {
		return true
	}
	return f.Pre(t, id)
}

func (f VisitorFuncs) EndVisit(t *Tree, id NodeID) {
	if f.Post != nil {
		f.Post(t, id)
	}
}

// Inspect calls fn for every node in pre-order; returning false prunes.
func Inspect(t *Tree, root NodeID, fn func(id NodeID) bool) {
	Walk(t, root, VisitorFuncs{Pre: func(_ *Tree, id NodeID) bool { return fn(id) }})
}

// Collect returns every node of kind under root in pre-order.
func Collect(t *Tree, root NodeID, kind Kind) []NodeID {
	var out []NodeID
	Inspect(t, root, func(id NodeID) bool {
		if t.Kind(id) == kind {
			out = append(out, id)
		}
		return true
	})
	return out
}
