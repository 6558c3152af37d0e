// Package analyze holds the mutable context threaded through one
// resolution pass: the flag stack, the variable scopes, the expected
// initializer types, the diagnostics sink and the binding resolver.
package analyze

// Flag is an identity token pushed while a construct is being resolved.
// Two flags are equal only if they are the same pointer.
type Flag struct {
	label string
}

func NewFlag(label string) *Flag {
	return &Flag{label: label}
}

func (f *Flag) String() string {
	if f == nil {
		return "<nil flag>"
	}
	return f.label
}

var (
	InDesignatorList = NewFlag("designator-list")
	InAttribute      = NewFlag("attribute")
	InInitializer    = NewFlag("initializer")
	InSpecification  = NewFlag("specification")
	InImplementation = NewFlag("implementation")
	InConfiguration  = NewFlag("configuration")
	InFunctionBody   = NewFlag("function-body")
	InParameterList  = NewFlag("parameter-list")
	InWiring         = NewFlag("wiring")
	InInterface      = NewFlag("interface")
	InStruct         = NewFlag("struct")
)
