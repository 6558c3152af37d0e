package ast

// Kind is the closed set of node kinds. Adding a kind means adding an entry
// to kindSpecs; TestKindTableIsComplete fails otherwise.
type Kind uint8

const (
	KindInvalid Kind = iota

	// leaves
	KindIdent    // identifier occurrence, Name holds the text
	KindModifier // keyword marker: command, event, async, static, const, ...
	KindTypeName // base type spelling: int, uint8_t, error_t, typedef names
	KindIntLit
	KindStringLit

	// top level
	KindFile
	KindInterfaceDef   // interface Name { decls }
	KindInterfaceBody  // list of Declaration
	KindModule         // module Name spec implementation
	KindConfiguration  // configuration Name spec implementation
	KindSpecification  // list of UsesProvides
	KindUsesProvides   // Op "uses" | "provides"; list of InterfaceRef | Declaration
	KindInterfaceRef   // interface Name [as Alias]
	KindImplementation // module body: list of Declaration | FunctionDef
	KindWiring         // configuration body: list of ComponentList | Connection
	KindComponentList  // components A, B as C;
	KindComponentRef   // Name [as Alias]; Op "new" for generic instantiation
	KindConnection     // Op "->" | "<-" | "="; two Endpoints
	KindEndpoint       // one or two Idents: Component[.Interface]

	// declarations
	KindDeclaration
	KindDeclSpecs // list of Modifier | TypeName | StructSpec | Attribute
	KindStructSpec
	KindFieldList
	KindEnumSpec
	KindEnumeratorList
	KindEnumerator // Ident [= value]
	KindInitDeclaratorList
	KindInitDeclarator
	KindDeclarator // Value holds pointer depth
	KindQualifiedName
	KindArraySuffix
	KindParamList
	KindParamDecl
	KindInitializerList
	KindInitEntry
	KindDesignatorList
	KindDesignator // Op "." (field) or "[" (index)
	KindAttribute  // @name(args)
	KindFunctionDef

	// statements
	KindCompound
	KindExprStmt
	KindReturn
	KindIf
	KindLoop   // Op "while" | "do" | "for"; condition, clauses and body in source order
	KindJump   // Op "break" | "continue"
	KindAtomic // atomic { ... }

	// expressions
	KindCall
	KindArgList
	KindMember // Op "." or "->"
	KindIndex
	KindUnary
	KindBinary
	KindAssign
	KindInvoke      // Op "call" | "signal" | "post"
	KindConditional // c ? a : b
	KindCast        // (specs [*...]) expr; Value holds pointer depth
	KindSizeof      // sizeof expr | sizeof(specs)

	kindCount
)

// Shape tells how a kind constrains its children.
type Shape uint8

const (
	ShapeLeaf Shape = iota
	ShapeList
	ShapeComposite
)

func (s Shape) String() string {
	switch s {
	case ShapeLeaf:
		return "leaf"
	case ShapeList:
		return "list"
	default:
		return "composite"
	}
}

// class is a predicate over child kinds.
type class func(Kind) bool

func oneOf(kinds ...Kind) class {
	return func(k Kind) bool {
		for _, want := range kinds {
			if k == want {
				return true
			}
		}
		return false
	}
}

func isExpr(k Kind) bool {
	switch k {
	case KindIdent, KindIntLit, KindStringLit, KindCall, KindMember, KindIndex,
		KindUnary, KindBinary, KindAssign, KindInvoke, KindConditional, KindCast, KindSizeof:
		return true
	}
	return false
}

func isStmt(k Kind) bool {
	switch k {
	case KindCompound, KindExprStmt, KindReturn, KindIf, KindDeclaration,
		KindLoop, KindJump, KindAtomic:
		return true
	}
	return false
}

// isArg admits type names so generic components can be instantiated
// with type arguments: new QueueC(uint8_t, 4).
func isArg(k Kind) bool {
	return k == KindTypeName || isExpr(k)
}

func isInitializer(k Kind) bool {
	return k == KindInitializerList || isExpr(k)
}

func isLoopPart(k Kind) bool {
	return isExpr(k) || isStmt(k)
}

func isTopLevel(k Kind) bool {
	switch k {
	case KindInterfaceDef, KindModule, KindConfiguration, KindDeclaration, KindFunctionDef:
		return true
	}
	return false
}

// slot is one position of a composite node.
type slot struct {
	accept   class
	optional bool
	many     bool // repeats; only valid as the last slot
}

func req(c class) slot  { return slot{accept: c} }
func opt(c class) slot  { return slot{accept: c, optional: true} }
func rest(c class) slot { return slot{accept: c, optional: true, many: true} }

type kindSpec struct {
	name  string
	shape Shape
	elem  class  // list element contract
	slots []slot // composite layout
}

var kindSpecs = [kindCount]kindSpec{
	KindInvalid:   {name: "Invalid", shape: ShapeLeaf},
	KindIdent:     {name: "Ident", shape: ShapeLeaf},
	KindModifier:  {name: "Modifier", shape: ShapeLeaf},
	KindTypeName:  {name: "TypeName", shape: ShapeLeaf},
	KindIntLit:    {name: "IntLit", shape: ShapeLeaf},
	KindStringLit: {name: "StringLit", shape: ShapeLeaf},

	KindFile:          {name: "File", shape: ShapeList, elem: isTopLevel},
	KindInterfaceDef:  {name: "InterfaceDef", shape: ShapeComposite, slots: []slot{req(oneOf(KindIdent)), req(oneOf(KindInterfaceBody))}},
	KindInterfaceBody: {name: "InterfaceBody", shape: ShapeList, elem: oneOf(KindDeclaration)},
	KindModule: {name: "Module", shape: ShapeComposite, slots: []slot{
		req(oneOf(KindIdent)), req(oneOf(KindSpecification)), opt(oneOf(KindImplementation)),
	}},
	KindConfiguration: {name: "Configuration", shape: ShapeComposite, slots: []slot{
		req(oneOf(KindIdent)), req(oneOf(KindSpecification)), opt(oneOf(KindWiring)),
	}},
	KindSpecification:  {name: "Specification", shape: ShapeList, elem: oneOf(KindUsesProvides)},
	KindUsesProvides:   {name: "UsesProvides", shape: ShapeList, elem: oneOf(KindInterfaceRef, KindDeclaration)},
	KindInterfaceRef:   {name: "InterfaceRef", shape: ShapeComposite, slots: []slot{req(oneOf(KindIdent)), opt(oneOf(KindIdent))}},
	KindImplementation: {name: "Implementation", shape: ShapeList, elem: oneOf(KindDeclaration, KindFunctionDef)},
	KindWiring:         {name: "Wiring", shape: ShapeList, elem: oneOf(KindComponentList, KindConnection, KindDeclaration)},
	KindComponentList:  {name: "ComponentList", shape: ShapeList, elem: oneOf(KindComponentRef)},
	KindComponentRef: {name: "ComponentRef", shape: ShapeComposite, slots: []slot{
		req(oneOf(KindIdent)), opt(oneOf(KindArgList)), opt(oneOf(KindIdent)),
	}},
	KindConnection: {name: "Connection", shape: ShapeComposite, slots: []slot{req(oneOf(KindEndpoint)), req(oneOf(KindEndpoint))}},
	KindEndpoint:   {name: "Endpoint", shape: ShapeComposite, slots: []slot{req(oneOf(KindIdent)), opt(oneOf(KindIdent))}},

	KindDeclaration: {name: "Declaration", shape: ShapeComposite, slots: []slot{
		req(oneOf(KindDeclSpecs)), opt(oneOf(KindInitDeclaratorList)),
	}},
	KindDeclSpecs: {name: "DeclSpecs", shape: ShapeList, elem: oneOf(KindModifier, KindTypeName, KindStructSpec, KindEnumSpec, KindAttribute)},
	KindStructSpec: {name: "StructSpec", shape: ShapeComposite, slots: []slot{
		opt(oneOf(KindIdent)), opt(oneOf(KindFieldList)),
	}},
	KindFieldList:          {name: "FieldList", shape: ShapeList, elem: oneOf(KindDeclaration)},
	KindEnumSpec: {name: "EnumSpec", shape: ShapeComposite, slots: []slot{
		opt(oneOf(KindIdent)), opt(oneOf(KindEnumeratorList)),
	}},
	KindEnumeratorList:     {name: "EnumeratorList", shape: ShapeList, elem: oneOf(KindEnumerator)},
	KindEnumerator:         {name: "Enumerator", shape: ShapeComposite, slots: []slot{req(oneOf(KindIdent)), opt(isExpr)}},
	KindInitDeclaratorList: {name: "InitDeclaratorList", shape: ShapeList, elem: oneOf(KindInitDeclarator)},
	KindInitDeclarator: {name: "InitDeclarator", shape: ShapeComposite, slots: []slot{
		req(oneOf(KindDeclarator)), opt(oneOf(KindAttribute)), opt(isInitializer),
	}},
	KindDeclarator: {name: "Declarator", shape: ShapeComposite, slots: []slot{
		req(oneOf(KindIdent, KindQualifiedName)), rest(oneOf(KindArraySuffix, KindParamList)),
	}},
	KindQualifiedName:   {name: "QualifiedName", shape: ShapeComposite, slots: []slot{req(oneOf(KindIdent)), req(oneOf(KindIdent))}},
	KindArraySuffix:     {name: "ArraySuffix", shape: ShapeComposite, slots: []slot{opt(isExpr)}},
	KindParamList:       {name: "ParamList", shape: ShapeList, elem: oneOf(KindParamDecl)},
	KindParamDecl:       {name: "ParamDecl", shape: ShapeComposite, slots: []slot{req(oneOf(KindDeclSpecs)), opt(oneOf(KindDeclarator))}},
	KindInitializerList: {name: "InitializerList", shape: ShapeList, elem: oneOf(KindInitEntry)},
	KindInitEntry: {name: "InitEntry", shape: ShapeComposite, slots: []slot{
		opt(oneOf(KindDesignatorList)), req(isInitializer),
	}},
	KindDesignatorList: {name: "DesignatorList", shape: ShapeList, elem: oneOf(KindDesignator)},
	KindDesignator:     {name: "Designator", shape: ShapeComposite, slots: []slot{req(isExpr)}},
	KindAttribute:      {name: "Attribute", shape: ShapeComposite, slots: []slot{req(oneOf(KindIdent)), opt(oneOf(KindArgList))}},
	KindFunctionDef: {name: "FunctionDef", shape: ShapeComposite, slots: []slot{
		req(oneOf(KindDeclSpecs)), req(oneOf(KindDeclarator)), req(oneOf(KindCompound)),
	}},

	KindCompound: {name: "Compound", shape: ShapeList, elem: isStmt},
	KindExprStmt: {name: "ExprStmt", shape: ShapeComposite, slots: []slot{opt(isExpr)}},
	KindReturn:   {name: "Return", shape: ShapeComposite, slots: []slot{opt(isExpr)}},
	KindIf:       {name: "If", shape: ShapeComposite, slots: []slot{req(isExpr), req(isStmt), opt(isStmt)}},
	KindLoop:     {name: "Loop", shape: ShapeComposite, slots: []slot{rest(isLoopPart)}},
	KindJump:     {name: "Jump", shape: ShapeLeaf},
	KindAtomic:   {name: "Atomic", shape: ShapeComposite, slots: []slot{req(oneOf(KindCompound))}},

	KindCall:    {name: "Call", shape: ShapeComposite, slots: []slot{req(isExpr), req(oneOf(KindArgList))}},
	KindArgList: {name: "ArgList", shape: ShapeList, elem: isArg},
	KindMember:  {name: "Member", shape: ShapeComposite, slots: []slot{req(isExpr), req(oneOf(KindIdent))}},
	KindIndex:   {name: "Index", shape: ShapeComposite, slots: []slot{req(isExpr), req(isExpr)}},
	KindUnary:   {name: "Unary", shape: ShapeComposite, slots: []slot{req(isExpr)}},
	KindBinary:  {name: "Binary", shape: ShapeComposite, slots: []slot{req(isExpr), req(isExpr)}},
	KindAssign:  {name: "Assign", shape: ShapeComposite, slots: []slot{req(isExpr), req(isInitializer)}},
	KindInvoke:  {name: "Invoke", shape: ShapeComposite, slots: []slot{req(oneOf(KindCall))}},
	KindConditional: {name: "Conditional", shape: ShapeComposite, slots: []slot{
		req(isExpr), req(isExpr), req(isExpr),
	}},
	KindCast:   {name: "Cast", shape: ShapeComposite, slots: []slot{req(oneOf(KindDeclSpecs)), req(isExpr)}},
	KindSizeof: {name: "Sizeof", shape: ShapeComposite, slots: []slot{req(func(k Kind) bool { return k == KindDeclSpecs || isExpr(k) })}},
}

func (k Kind) spec() *kindSpec {
	if k >= kindCount {
		return &kindSpecs[KindInvalid]
	}
	return &kindSpecs[k]
}

func (k Kind) String() string { return k.spec().name }

func (k Kind) Shape() Shape { return k.spec().shape }

// IsExpr reports whether k can appear in expression position.
func (k Kind) IsExpr() bool { return isExpr(k) }

// IsStmt reports whether k can appear in a compound statement.
func (k Kind) IsStmt() bool { return isStmt(k) }

// Kinds lists every valid kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount-1)
	for k := KindInvalid + 1; k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// accepts checks child against the contract of parent given existing children.
func accepts(parent Kind, existing []Kind, child Kind) bool {
	spec := parent.spec()
	switch spec.shape {
	case ShapeLeaf:
		return false
	case ShapeList:
		return spec.elem != nil && spec.elem(child)
	}
	s := 0
	place := func(k Kind) bool {
		for s < len(spec.slots) {
			sl := spec.slots[s]
			if sl.accept(k) {
				if !sl.many {
					s++
				}
				return true
			}
			if !sl.optional {
				return false
			}
			s++
		}
		return false
	}
	for _, k := range existing {
		if !place(k) {
			return false
		}
	}
	return place(child)
}
