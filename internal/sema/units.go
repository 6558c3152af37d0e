package sema

import (
	"nesc/internal/analyze"
	"nesc/internal/ast"
	"nesc/internal/binding"
	"nesc/internal/diag"
	"nesc/internal/tags"
	"nesc/internal/trace"
)

// declareUnit registers u in the result and as a file-level name.
func (r *resolver) declareUnit(u *binding.Unit) {
	if prev, dup := r.res.Unit(u.Name.Name); dup {
		r.st.Errorf(diag.SemaDuplicateSymbol, u.Name.Span, "%s %q is already defined", prev.Kind, u.Name.Name).
			WithNote(prev.Name.Span, "previous definition").
			Emit()
	}
	r.res.Units = append(r.res.Units, u)
	r.res.unitByNode[u.Node] = u
	r.bs.Declare(binding.Binding{
		Namespace: binding.NSUnit,
		Decl:      u.Name,
		Global:    u.Name.Name,
		Scope:     binding.ScopeFile,
	})
}

// withUnit runs fn with u as the current unit.
func (r *resolver) withUnit(u *binding.Unit, fn func()) {
	var span *trace.Span
	if r.tracer.Level().ShouldEmit(trace.ScopeFile) {
		span = trace.Begin(r.tracer, trace.ScopeFile, u.Kind.String()+":"+u.Name.Name, 0)
		defer span.End("")
	}
	prev := r.unit
	r.unit = u
	defer func() { r.unit = prev }()
	fn()
}

func (r *resolver) interfaceDef(id ast.NodeID) {
	nameID, bodyID := r.tree.Child(id, 0), r.tree.Child(id, 1)
	r.enter(nameID)
	name := r.ident(nameID)
	r.tree.Tag(nameID, tags.Declaration, tags.Definition, tags.Interface)
	r.tree.Tag(id, tags.Definition, tags.Interface)
	if r.tree.Op(id) == "generic" {
		r.tree.Tag(id, tags.Generic)
	}
	u := binding.NewUnit(binding.UnitInterface, name, id)
	r.declareUnit(u)
	r.withUnit(u, func() {
		r.st.With(analyze.InInterface, func() {
			r.st.WithScope(binding.ScopeInterface, func() { r.resolve(bodyID) })
		})
	})
}

func (r *resolver) component(id ast.NodeID) {
	kind, kindTag := binding.UnitModule, tags.Module
	if r.tree.Kind(id) == ast.KindConfiguration {
		kind, kindTag = binding.UnitConfiguration, tags.Configuration
	}
	nameID := r.tree.Child(id, 0)
	r.enter(nameID)
	name := r.ident(nameID)
	r.tree.Tag(nameID, tags.Declaration, tags.Definition, tags.Component, kindTag)
	r.tree.Tag(id, tags.Definition, tags.Component, kindTag)
	if r.tree.Op(id) == "generic" {
		r.tree.Tag(id, tags.Generic)
	}
	u := binding.NewUnit(kind, name, id)
	r.declareUnit(u)
	r.withUnit(u, func() {
		body := func() {
			for _, c := range r.tree.Children(id)[1:] {
				r.resolve(c)
			}
		}
		if kind == binding.UnitConfiguration {
			r.st.With(analyze.InConfiguration, body)
			return
		}
		body()
	})
}

func (r *resolver) usesProvides(id ast.NodeID) {
	dir := tags.Provides
	if r.tree.Op(id) == "uses" {
		dir = tags.Uses
	}
	prev := r.dir
	r.dir = dir
	defer func() { r.dir = prev }()
	for _, c := range r.tree.Children(id) {
		if r.tree.Kind(c) == ast.KindInterfaceRef {
			r.enter(c)
			r.interfaceRef(c, dir)
			continue
		}
		r.resolve(c)
	}
}

// interfaceRef handles "interface Name [as Alias]". The local name goes
// into the unit's interface table; the interface name is a reference.
func (r *resolver) interfaceRef(id ast.NodeID, dir tags.Tag) {
	ifaceID, aliasID := r.tree.Child(id, 0), r.tree.Child(id, 1)
	r.enter(ifaceID)
	r.enter(aliasID)
	iface := r.ident(ifaceID)
	r.tree.Tag(ifaceID, tags.Reference, tags.Interface)
	if dir.IsValid() {
		r.tree.Tag(id, dir)
	}

	localID := ifaceID
	if aliasID.IsValid() {
		localID = aliasID
		r.tree.Tag(aliasID, tags.Declaration, tags.Alias, tags.Interface)
	}
	local := r.ident(localID)
	r.tree.Tag(localID, tags.Declaration, tags.Local)
	if dir.IsValid() {
		r.tree.Tag(localID, dir)
	}

	if r.unit != nil {
		table := r.unit.InterfaceLocalNames()
		if prev, dup := binding.ExistsLocalName(table, local.Name); dup {
			r.st.Errorf(diag.SemaDuplicateSymbol, local.Span, "interface name %q is already used in %s", local.Name, r.unitName()).
				WithNote(prev.Span, "previous use").
				Emit()
		}
		table.Put(local, iface.Name)
	}
	r.bs.Declare(binding.Binding{
		Namespace: binding.NSInterfaceLocal,
		Decl:      local,
		Global:    iface.Name,
		Unit:      r.unitName(),
		Scope:     binding.ScopeSpecification,
	})
	r.refUnit(ifaceID, iface.Name, diag.SemaUnknownInterface, binding.UnitInterface)
}

// refUnit binds a reference to an interface or component name.
func (r *resolver) refUnit(node ast.NodeID, name string, code diag.Code, kinds ...binding.UnitKind) {
	u, ok := r.res.Unit(name)
	if ok {
		if b, found := r.bs.BindingOf(u.Name.Node); found {
			r.bs.Refer(node, b.ID)
		}
	} else if r.opts.Globals != nil {
		u, ok = r.opts.Globals.Unit(name)
		if ok {
			r.tree.Tag(node, tags.Global)
		}
	}
	if !ok {
		r.tree.Tag(node, tags.Unresolved)
		if r.opts.Globals != nil {
			r.st.Errorf(code, r.tree.Span(node), "unknown %s %q", kinds[0], name).Emit()
		}
		return
	}
	for _, k := range kinds {
		if u.Kind == k {
			return
		}
	}
	r.st.Errorf(code, r.tree.Span(node), "%q is a %s, not a %s", name, u.Kind, kinds[0]).
		WithNote(u.Name.Span, "defined here").
		Emit()
}

func (r *resolver) lookupUnit(name string) (*binding.Unit, bool) {
	if u, ok := r.res.Unit(name); ok {
		return u, true
	}
	if r.opts.Globals != nil {
		return r.opts.Globals.Unit(name)
	}
	return nil, false
}

func (r *resolver) implementation(id ast.NodeID) {
	r.st.With(analyze.InImplementation, func() {
		r.st.WithScope(binding.ScopeImplementation, func() {
			r.children(id)
			r.flushPending()
		})
	})
}

// componentRef handles one entry of a components clause:
// "[new] Name[(args)] [as Alias]".
func (r *resolver) componentRef(id ast.NodeID) {
	children := r.tree.Children(id)
	compID := children[0]
	r.enter(compID)
	comp := r.ident(compID)
	r.tree.Tag(compID, tags.Reference, tags.Component)
	if r.tree.Op(id) == "new" {
		r.tree.Tag(id, tags.Generic)
	}
	localID := compID
	for _, c := range children[1:] {
		switch r.tree.Kind(c) {
		case ast.KindArgList:
			r.resolve(c)
		case ast.KindIdent:
			r.enter(c)
			localID = c
			r.tree.Tag(c, tags.Declaration, tags.Alias, tags.Component)
		}
	}
	local := r.ident(localID)
	r.tree.Tag(localID, tags.Declaration, tags.Local)

	if r.unit != nil {
		table := r.unit.ComponentLocalNames()
		if prev, dup := binding.ExistsLocalName(table, local.Name); dup {
			r.st.Errorf(diag.SemaDuplicateSymbol, local.Span, "component name %q is already used in %s", local.Name, r.unitName()).
				WithNote(prev.Span, "previous use").
				Emit()
		}
		table.Put(local, comp.Name)
	}
	r.bs.Declare(binding.Binding{
		Namespace: binding.NSComponentLocal,
		Decl:      local,
		Global:    comp.Name,
		Unit:      r.unitName(),
		Scope:     binding.ScopeWiring,
	})
	r.refUnit(compID, comp.Name, diag.SemaUnknownComponent, binding.UnitModule, binding.UnitConfiguration)
}

func (r *resolver) connection(id ast.NodeID) {
	r.tree.Tag(id, tags.Wiring)
	r.children(id)
}

// endpoint resolves "Local[.Name]" against the configuration's component
// and interface tables.
func (r *resolver) endpoint(id ast.NodeID) {
	firstID, secondID := r.tree.Child(id, 0), r.tree.Child(id, 1)
	r.enter(firstID)
	r.enter(secondID)
	r.tree.Tag(id, tags.Wiring)
	r.tree.Tag(firstID, tags.Reference)
	if secondID.IsValid() {
		r.tree.Tag(secondID, tags.Reference)
	}
	first := r.ident(firstID)
	if r.unit == nil {
		return
	}

	if local, ok := binding.ExistsLocalName(r.unit.ComponentLocalNames(), first.Name); ok {
		r.referLocal(firstID, local)
		r.tree.Tag(firstID, tags.Component)
		if !secondID.IsValid() {
			return
		}
		r.tree.Tag(secondID, tags.Interface)
		global, _ := r.unit.ComponentLocalNames().Global(first.Name)
		target, known := r.lookupUnit(global)
		if !known {
			return
		}
		second := r.ident(secondID)
		if ref, ok := binding.ExistsLocalName(target.InterfaceLocalNames(), second.Name); ok {
			// ref.Node belongs to another tree when target came from Globals.
			if _, local := r.res.Unit(global); !local {
				r.tree.Tag(secondID, tags.Global)
			} else if b, found := r.bs.BindingOf(ref.Node); found {
				r.bs.Refer(secondID, b.ID)
			}
			return
		}
		r.tree.Tag(secondID, tags.Unresolved)
		r.st.Errorf(diag.SemaBadWiring, second.Span, "component %s has no interface %q", global, second.Name).
			WithNote(target.Name.Span, "component defined here").
			Emit()
		return
	}

	if local, ok := binding.ExistsLocalName(r.unit.InterfaceLocalNames(), first.Name); ok {
		r.referLocal(firstID, local)
		r.tree.Tag(firstID, tags.Interface)
		if secondID.IsValid() {
			r.tree.Tag(secondID, tags.Function)
		}
		return
	}

	r.tree.Tag(firstID, tags.Unresolved)
	r.st.Errorf(diag.SemaBadWiring, first.Span, "unknown wiring endpoint %q in %s", first.Name, r.unitName()).Emit()
}

func (r *resolver) referLocal(node ast.NodeID, local binding.Identifier) {
	if b, ok := r.bs.BindingOf(local.Node); ok {
		r.bs.Refer(node, b.ID)
	}
}
