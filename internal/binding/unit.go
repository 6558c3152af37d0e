package binding

import "nesc/internal/ast"

// UnitKind is the kind of a top-level nesC unit.
type UnitKind uint8

const (
	UnitInvalid UnitKind = iota
	UnitInterface
	UnitModule
	UnitConfiguration
)

func (k UnitKind) String() string {
	switch k {
	case UnitInterface:
		return "interface"
	case UnitModule:
		return "module"
	case UnitConfiguration:
		return "configuration"
	default:
		return "invalid"
	}
}

// ComponentAnalyzer exposes the interface-local names declared in a
// component specification.
type ComponentAnalyzer interface {
	InterfaceLocalNames() *Table
}

// ConfigurationAnalyzer adds the component-local names introduced by the
// components clauses of a configuration.
type ConfigurationAnalyzer interface {
	ComponentAnalyzer
	ComponentLocalNames() *Table
}

// ModuleAnalyzer adds the variables declared in a module implementation.
type ModuleAnalyzer interface {
	ComponentAnalyzer
	ImplementationVariables() *Table
}

// Unit is the analysis result of one interface, module or configuration.
type Unit struct {
	Kind UnitKind
	Name Identifier
	Node ast.NodeID

	interfaces *Table
	components *Table
	variables  *Table
	functions  *Table
}

func NewUnit(kind UnitKind, name Identifier, node ast.NodeID) *Unit {
	return &Unit{
		Kind:       kind,
		Name:       name,
		Node:       node,
		interfaces: NewTable(NSInterfaceLocal),
		components: NewTable(NSComponentLocal),
		variables:  NewTable(NSVariable),
		functions:  NewTable(NSFunction),
	}
}

func (u *Unit) InterfaceLocalNames() *Table { return u.interfaces }

func (u *Unit) ComponentLocalNames() *Table { return u.components }

func (u *Unit) ImplementationVariables() *Table { return u.variables }

// Functions lists commands, events, tasks and plain functions defined in
// the implementation.
func (u *Unit) Functions() *Table { return u.functions }

// TableFor returns the unit table that holds ns, or nil.
func (u *Unit) TableFor(ns Namespace) *Table {
	switch ns {
	case NSInterfaceLocal:
		return u.interfaces
	case NSComponentLocal:
		return u.components
	case NSVariable:
		return u.variables
	case NSFunction:
		return u.functions
	default:
		return nil
	}
}

var (
	_ ConfigurationAnalyzer = (*Unit)(nil)
	_ ModuleAnalyzer        = (*Unit)(nil)
)
