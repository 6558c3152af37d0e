package sema

import (
	"nesc/internal/analyze"
	"nesc/internal/ast"
	"nesc/internal/diag"
	"nesc/internal/tags"
	"nesc/internal/types"
)

// initializerList matches "{ entries }" against the expected type.
func (r *resolver) initializerList(id ast.NodeID) {
	r.tree.Tag(id, tags.Initializer)
	outer, ok := r.st.Expected()
	if !ok || !outer.IsValid() {
		outer = r.in.Unknown
	}
	r.tree.SetType(id, outer)
	pos := 0
	for _, e := range r.tree.Children(id) {
		r.enter(e)
		pos = r.initEntry(e, outer, pos)
	}
}

// initEntry resolves one "[designators =] value" and returns the next
// positional index.
func (r *resolver) initEntry(id ast.NodeID, outer types.TypeID, pos int) int {
	children := r.tree.Children(id)
	value := children[len(children)-1]
	target := types.NoTypeID
	next := pos + 1
	if r.tree.Kind(children[0]) == ast.KindDesignatorList && len(children) > 1 {
		dl := children[0]
		r.enter(dl)
		r.st.WithExpected(outer, func() { target = r.designatorList(dl) })
		next = r.designatedPosition(dl, outer, pos) + 1
	} else {
		target = r.positional(outer, pos)
	}
	r.st.WithExpected(target, func() { r.resolve(value) })
	return next
}

// positional is the type of the pos-th element of outer.
func (r *resolver) positional(outer types.TypeID, pos int) types.TypeID {
	t := r.in.Get(outer)
	if t == nil {
		return r.in.Unknown
	}
	switch t.Kind {
	case types.KindArray:
		return t.Elem
	case types.KindStruct:
		if pos < len(t.Fields) {
			return t.Fields[pos].Type
		}
		return r.in.Unknown
	case types.KindUnion:
		if len(t.Fields) > 0 {
			return t.Fields[0].Type
		}
		return r.in.Unknown
	default:
		return outer
	}
}

// designatedPosition is the position the first designator selects, so that
// following positional entries continue after it.
func (r *resolver) designatedPosition(dl ast.NodeID, outer types.TypeID, pos int) int {
	first := r.tree.Child(dl, 0)
	key := r.tree.Child(first, 0)
	switch r.tree.Op(first) {
	case "[":
		if r.tree.Kind(key) == ast.KindIntLit {
			return int(r.tree.Get(key).Value)
		}
	case ".":
		if t := r.in.Get(outer); t != nil {
			name := r.tree.Name(key)
			for i, f := range t.Fields {
				if f.Name == name {
					return i
				}
			}
		}
	}
	return pos
}

// designatorList walks ".field" and "[index]" steps from the expected type
// and caches the designated type on the list.
func (r *resolver) designatorList(id ast.NodeID) types.TypeID {
	cur, ok := r.st.Expected()
	if !ok || !cur.IsValid() {
		cur = r.in.Unknown
	}
	r.tree.Tag(id, tags.Designator)
	r.st.With(analyze.InDesignatorList, func() {
		for _, d := range r.tree.Children(id) {
			r.enter(d)
			cur = r.designatorStep(d, cur)
		}
	})
	r.tree.SetType(id, cur)
	return cur
}

func (r *resolver) designatorStep(id ast.NodeID, cur types.TypeID) types.TypeID {
	r.tree.Tag(id, tags.Designator)
	key := r.tree.Child(id, 0)
	t := r.in.Get(cur)
	unknown := t == nil || t.Kind == types.KindUnknown || t.Kind == types.KindInvalid

	if r.tree.Op(id) == "." {
		r.enter(key)
		name := r.tree.Name(key)
		r.tree.Tag(key, tags.Reference, tags.Field, tags.Designator)
		switch {
		case unknown:
			return r.in.Unknown
		case t.Kind == types.KindStruct || t.Kind == types.KindUnion:
			if f, ok := r.in.Member(cur, name); ok {
				return f.Type
			}
			r.tree.Tag(key, tags.Unresolved)
			r.st.Errorf(diag.SemaUnknownField, r.tree.Span(key), "%s has no field %q", r.in.String(cur), name).Emit()
		default:
			r.st.Errorf(diag.SemaDesignatorNoField, r.tree.Span(id), "field designator %q on non-aggregate type %s", name, r.in.String(cur)).Emit()
		}
		return r.in.Unknown
	}

	r.resolve(key)
	switch {
	case unknown:
		return r.in.Unknown
	case t.Kind == types.KindArray:
		if r.tree.Kind(key) == ast.KindIntLit && t.Len >= 0 {
			if v := r.tree.Get(key).Value; v < 0 || v >= int64(t.Len) {
				r.st.Errorf(diag.SemaIndexOutOfRange, r.tree.Span(key), "array index %d is outside %s", v, r.in.String(cur)).Emit()
			}
		}
		return t.Elem
	default:
		r.st.Errorf(diag.SemaDesignatorNoArray, r.tree.Span(id), "array designator on non-array type %s", r.in.String(cur)).Emit()
		return r.in.Unknown
	}
}
