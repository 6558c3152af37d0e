package rename

import (
	"nesc/internal/ast"
	"nesc/internal/binding"
	"nesc/internal/sema"
)

// SelectionKind classifies the identifier a rename starts from.
type SelectionKind uint8

const (
	SelectOther SelectionKind = iota
	SelectComponentAlias
	SelectInterfaceAlias
	SelectVariable
)

func (k SelectionKind) String() string {
	switch k {
	case SelectComponentAlias:
		return "component alias"
	case SelectInterfaceAlias:
		return "interface alias"
	case SelectVariable:
		return "implementation variable"
	default:
		return "other"
	}
}

// Selection is a classified identifier together with what it resolves to.
type Selection struct {
	Kind    SelectionKind
	Node    ast.NodeID
	Binding binding.Binding
	Unit    *binding.Unit
}

// Select classifies node. Only identifiers bound to a local alias or to an
// implementation-local variable are renameable.
func Select(res *sema.Result, node ast.NodeID) Selection {
	sel := Selection{Node: node}
	if res.Tree.Kind(node) != ast.KindIdent {
		return sel
	}
	b, ok := res.Bindings.BindingOf(node)
	if !ok {
		return sel
	}
	sel.Binding = b
	sel.Unit, _ = res.Unit(b.Unit)
	if sel.Unit == nil {
		return sel
	}
	switch b.Namespace {
	case binding.NSComponentLocal:
		if b.Global != b.Decl.Name {
			sel.Kind = SelectComponentAlias
		}
	case binding.NSInterfaceLocal:
		if b.Global != b.Decl.Name {
			sel.Kind = SelectInterfaceAlias
		}
	case binding.NSVariable:
		if b.ImplementationLocal() {
			sel.Kind = SelectVariable
		}
	}
	return sel
}

// CanRename reports whether a rename of the given kind applies to sel.
func CanRename(kind SelectionKind, sel Selection) bool {
	if kind == SelectOther || sel.Kind != kind || sel.Unit == nil {
		return false
	}
	switch kind {
	case SelectComponentAlias:
		return sel.Unit.Kind == binding.UnitConfiguration
	case SelectInterfaceAlias:
		return sel.Unit.Kind == binding.UnitModule || sel.Unit.Kind == binding.UnitConfiguration
	case SelectVariable:
		return sel.Unit.Kind == binding.UnitModule
	}
	return false
}
