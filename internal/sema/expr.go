package sema

import (
	"nesc/internal/analyze"
	"nesc/internal/ast"
	"nesc/internal/binding"
	"nesc/internal/diag"
	"nesc/internal/tags"
	"nesc/internal/types"
)

// predeclared are the constants every TinyOS build sees through its
// headers; they are never reported as undeclared.
var predeclared = map[string]bool{
	"SUCCESS": true, "FAIL": true, "ESIZE": true, "ECANCEL": true, "EOFF": true,
	"EBUSY": true, "EINVAL": true, "ERETRY": true, "ERESERVE": true, "EALREADY": true,
	"ENOMEM": true, "ENOACK": true, "ELAST": true, "TRUE": true, "FALSE": true, "NULL": true,
}

// truthOps yield int whatever their operand types are.
var truthOps = map[string]bool{
	"<": true, ">": true, "<=": true, ">=": true, "==": true, "!=": true, "&&": true, "||": true,
}

// identRef resolves an identifier in expression position.
func (r *resolver) identRef(id ast.NodeID) {
	name := r.tree.Name(id)
	if b, ok := r.lookupName(name); ok {
		r.bindRef(id, b)
		return
	}
	if predeclared[name] {
		r.tree.Tag(id, tags.Reference, tags.Constant, tags.Global)
		r.tree.SetType(id, r.in.Int)
		return
	}
	quiet := r.st.Active(analyze.InDesignatorList) || r.st.Active(analyze.InAttribute)
	if r.st.Active(analyze.InImplementation) {
		r.pending = append(r.pending, pendingRef{node: id, name: name, quiet: quiet})
		return
	}
	r.unresolved(id, name, quiet)
}

func (r *resolver) lookupName(name string) (binding.Binding, bool) {
	if bid, ok := r.st.Lookup(name); ok {
		return r.bs.Get(bid)
	}
	if r.unit == nil {
		return binding.Binding{}, false
	}
	for _, table := range []*binding.Table{r.unit.InterfaceLocalNames(), r.unit.ComponentLocalNames()} {
		if local, ok := binding.ExistsLocalName(table, name); ok {
			return r.bs.BindingOf(local.Node)
		}
	}
	return binding.Binding{}, false
}

func (r *resolver) bindRef(id ast.NodeID, b binding.Binding) {
	r.bs.Refer(id, b.ID)
	r.tree.Tag(id, tags.Reference)
	switch b.Namespace {
	case binding.NSVariable:
		r.tree.Tag(id, tags.Variable)
		if b.ImplementationLocal() {
			r.tree.Tag(id, tags.Local)
		}
	case binding.NSFunction:
		r.tree.Tag(id, tags.Function)
	case binding.NSInterfaceLocal:
		r.tree.Tag(id, tags.Interface)
	case binding.NSComponentLocal:
		r.tree.Tag(id, tags.Component)
	case binding.NSType:
		r.tree.Tag(id, tags.TypeTag)
	}
	if b.Type.IsValid() && !r.tree.Type(id).IsValid() {
		r.tree.SetType(id, b.Type)
	}
}

func (r *resolver) unresolved(id ast.NodeID, name string, quiet bool) {
	r.tree.Tag(id, tags.Unresolved)
	if quiet {
		return
	}
	r.st.Errorf(diag.SemaUnresolvedSymbol, r.tree.Span(id), "undeclared identifier %q", name).Emit()
}

// flushPending retries forward references once the implementation-level
// declarations are all known.
func (r *resolver) flushPending() {
	pending := r.pending
	r.pending = nil
	for _, p := range pending {
		if b, ok := r.lookupName(p.name); ok {
			r.bindRef(p.node, b)
			continue
		}
		r.unresolved(p.node, p.name, p.quiet)
	}
}

// member resolves "base.name" and "base->name". When base is an interface
// alias the member is a command or event of that interface.
func (r *resolver) member(id ast.NodeID) {
	baseID, fieldID := r.tree.Child(id, 0), r.tree.Child(id, 1)
	r.resolve(baseID)
	r.enter(fieldID)
	name := r.tree.Name(fieldID)
	r.tree.Tag(fieldID, tags.Reference)

	if b, ok := r.bs.BindingOf(baseID); ok && b.Namespace == binding.NSInterfaceLocal {
		r.tree.Tag(fieldID, tags.Function)
		r.interfaceMember(fieldID, b.Global, name)
		return
	}

	r.tree.Tag(fieldID, tags.Field)
	bt := r.tree.Type(baseID)
	if r.tree.Op(id) == "->" && r.in.Kind(bt) == types.KindPointer {
		bt = r.in.Get(bt).Elem
	}
	switch r.in.Kind(bt) {
	case types.KindStruct, types.KindUnion:
		if f, ok := r.in.Member(bt, name); ok {
			r.tree.SetType(id, f.Type)
			return
		}
		if len(r.in.Get(bt).Fields) == 0 {
			// opaque or header-defined aggregate
			return
		}
		r.tree.Tag(fieldID, tags.Unresolved)
		r.st.Errorf(diag.SemaUnknownField, r.tree.Span(fieldID), "%s has no field %q", r.in.String(bt), name).Emit()
	}
}

// interfaceMember binds a command or event name when the interface is
// defined in this file.
func (r *resolver) interfaceMember(fieldID ast.NodeID, iface, name string) {
	u, ok := r.res.Unit(iface)
	if !ok {
		return
	}
	for _, fb := range r.bs.LookupAll(binding.NSFunction, name) {
		if fb.Unit != u.Name.Name {
			continue
		}
		r.bs.Refer(fieldID, fb.ID)
		decl := r.tree.Tags(fb.Decl.Node)
		for _, t := range []tags.Tag{tags.Command, tags.Event} {
			if decl.Contains(t) {
				r.tree.Tag(fieldID, t)
			}
		}
		return
	}
	r.tree.Tag(fieldID, tags.Unresolved)
	r.st.Errorf(diag.SemaUnresolvedSymbol, r.tree.Span(fieldID), "interface %s has no command or event %q", iface, name).
		WithNote(u.Name.Span, "interface defined here").
		Emit()
}

func (r *resolver) index(id ast.NodeID) {
	r.children(id)
	bt := r.tree.Type(r.tree.Child(id, 0))
	switch r.in.Kind(bt) {
	case types.KindArray, types.KindPointer:
		r.tree.SetType(id, r.in.Get(bt).Elem)
	}
}

func (r *resolver) unary(id ast.NodeID) {
	r.children(id)
	operand := r.tree.Type(r.tree.Child(id, 0))
	if !operand.IsValid() {
		return
	}
	switch r.tree.Op(id) {
	case "&":
		r.tree.SetType(id, r.in.Pointer(operand))
	case "*":
		if r.in.Kind(operand) == types.KindPointer {
			r.tree.SetType(id, r.in.Get(operand).Elem)
		}
	case "!":
		r.tree.SetType(id, r.in.Int)
	default:
		r.tree.SetType(id, operand)
	}
}

// invoke handles "call", "signal" and "post".
func (r *resolver) invoke(id ast.NodeID) {
	switch r.tree.Op(id) {
	case "call":
		r.tree.Tag(id, tags.Command)
	case "signal":
		r.tree.Tag(id, tags.Event)
	case "post":
		r.tree.Tag(id, tags.Task)
	}
	r.children(id)
}

func (r *resolver) cast(id ast.NodeID) {
	specsID, exprID := r.tree.Child(id, 0), r.tree.Child(id, 1)
	r.enter(specsID)
	ty := r.specsOf(specsID).base
	for i := int64(0); i < r.tree.Get(id).Value; i++ {
		ty = r.in.Pointer(ty)
	}
	r.resolve(exprID)
	r.tree.SetType(id, ty)
}

func (r *resolver) sizeof(id ast.NodeID) {
	operand := r.tree.Child(id, 0)
	if r.tree.Kind(operand) == ast.KindDeclSpecs {
		r.enter(operand)
		r.specsOf(operand)
	} else {
		r.resolve(operand)
	}
	r.tree.SetType(id, r.in.Scalar(types.KindInt, "size_t"))
}
