package tags

// Classification tags assigned by the resolution pass. Key tags are the ones
// outline filters and symbol indexes match on.
var (
	Declaration   = New("declaration", true)
	Definition    = New("definition", true)
	Reference     = New("reference", true)
	Component     = New("component", true)
	Module        = New("module", true)
	Configuration = New("configuration", true)
	Interface     = New("interface", true)
	Function      = New("function", true)
	Variable      = New("variable", true)
	TypeTag       = New("type", true)
	Field         = New("field", false)
	Parameter     = New("parameter", false)
	Command       = New("command", false)
	Event         = New("event", false)
	Task          = New("task", false)
	Uses          = New("uses", false)
	Provides      = New("provides", false)
	Wiring        = New("wiring", false)
	Initializer   = New("initializer", false)
	Designator    = New("designator", false)
	Attribute     = New("attribute", false)
	Alias         = New("alias", false)
	Generic       = New("generic", false)
	Unresolved    = New("unresolved", false)
	Local         = New("local", false)
	Global        = New("global", false)
	Constant      = New("constant", false)
)

// Builtin lists the predefined tags in order.
func Builtin() []Tag {
	return []Tag{
		Declaration, Definition, Reference, Component, Module, Configuration,
		Interface, Function, Variable, TypeTag, Field, Parameter, Command,
		Event, Task, Uses, Provides, Wiring, Initializer, Designator,
		Attribute, Alias, Generic, Unresolved, Local, Global, Constant,
	}
}

// ByLabel finds a predefined tag by label.
func ByLabel(label string) (Tag, bool) {
	for _, t := range Builtin() {
		if t.label == label {
			return t, true
		}
	}
	return Tag{}, false
}

// Outline is the set of tags that make a node show up in outline views.
func Outline() *Set {
	return Of(Component, Interface, Function, Variable, TypeTag)
}
