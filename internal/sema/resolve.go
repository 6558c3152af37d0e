// Package sema runs the resolution pass over a parsed nesC tree: it tags
// declarations and references, caches declared and designated types,
// fills the per-unit name tables and reports semantic diagnostics.
package sema

import (
	"context"
	"errors"
	"fmt"

	"nesc/internal/analyze"
	"nesc/internal/ast"
	"nesc/internal/binding"
	"nesc/internal/diag"
	"nesc/internal/tags"
	"nesc/internal/trace"
	"nesc/internal/types"
)

// Globals resolves unit names declared in other files.
type Globals interface {
	Unit(name string) (*binding.Unit, bool)
}

type Options struct {
	// Types is shared between passes when set; a fresh interner otherwise.
	Types *types.Interner
	// Globals, when set, makes unknown interface and component names an
	// error. Without it names from other files are tagged unresolved.
	Globals        Globals
	Reporter       diag.Reporter
	MaxDiagnostics int
}

// Result is the annotated view of one resolved tree.
type Result struct {
	Tree     *ast.Tree
	Units    []*binding.Unit
	Bindings *binding.Bindings
	Types    *types.Interner
	Bag      *diag.Bag

	unitByNode map[ast.NodeID]*binding.Unit
}

// Unit finds a unit of this file by name.
func (r *Result) Unit(name string) (*binding.Unit, bool) {
	for _, u := range r.Units {
		if u.Name.Name == name {
			return u, true
		}
	}
	return nil, false
}

// UnitOf returns the unit enclosing node.
func (r *Result) UnitOf(node ast.NodeID) (*binding.Unit, bool) {
	for _, id := range r.Tree.PathTo(node) {
		if u, ok := r.unitByNode[id]; ok {
			return u, true
		}
	}
	return nil, false
}

func (r *Result) Resolver() binding.Resolver { return r.Bindings }

// Resolve runs one pass over the subtree at root. Structural faults raised
// while resolving abort the pass and come back as the error; semantic
// problems are collected in Result.Bag. The tree is sealed on success.
func Resolve(ctx context.Context, tree *ast.Tree, root ast.NodeID, opts Options) (res *Result, err error) {
	tracer := trace.FromContext(ctx)
	var span *trace.Span
	if tracer.Enabled() {
		span = trace.Begin(tracer, trace.ScopePass, "sema", trace.CurrentSpan(ctx).SpanID)
		defer func() {
			detail := "ok"
			if err != nil {
				detail = err.Error()
			}
			span.End(detail)
		}()
	}

	in := opts.Types
	if in == nil {
		in = types.NewInterner()
	}
	bag := diag.NewBag(opts.MaxDiagnostics)
	var rep diag.Reporter = diag.BagReporter{Bag: bag}
	if opts.Reporter != nil {
		rep = opts.Reporter
	}
	bs := binding.NewBindings()
	res = &Result{
		Tree:       tree,
		Bindings:   bs,
		Types:      in,
		Bag:        bag,
		unitByNode: make(map[ast.NodeID]*binding.Unit),
	}
	r := &resolver{
		tree:   tree,
		st:     analyze.NewStack(analyze.Options{Reporter: rep, Resolver: bs, Types: in}),
		bs:     bs,
		in:     in,
		opts:   opts,
		res:    res,
		done:   make([]bool, tree.Len()+1),
		tracer: tracer,
	}

	defer func() {
		if rec := recover(); rec != nil {
			fault := asFault(rec)
			if fault == nil {
				panic(rec)
			}
			res, err = nil, fmt.Errorf("sema: resolve %s: %w", tree.Kind(root), fault)
		}
	}()

	r.base = r.builtinTypes()
	r.resolve(root)
	r.st.Finish()
	tree.Seal()
	bag.Sort()
	return res, nil
}

// asFault extracts a structural fault from a recovered panic value.
func asFault(rec any) error {
	err, ok := rec.(error)
	if !ok {
		return nil
	}
	var (
		childErr   *ast.ChildError
		resolveErr *ast.ResolveError
		stackErr   *analyze.StackError
		frozenErr  *tags.FrozenError
	)
	switch {
	case errors.As(err, &childErr), errors.As(err, &resolveErr),
		errors.As(err, &stackErr), errors.As(err, &frozenErr):
		return err
	}
	return nil
}

// pendingRef is a name used in a function body before its declaration
// at implementation level; it is retried when the implementation ends.
type pendingRef struct {
	node  ast.NodeID
	name  string
	quiet bool
}

type resolver struct {
	tree   *ast.Tree
	st     *analyze.Stack
	bs     *binding.Bindings
	in     *types.Interner
	opts   Options
	res    *Result
	base   map[string]types.TypeID
	tracer trace.Tracer

	unit    *binding.Unit
	dir     tags.Tag // Uses or Provides inside a uses/provides clause
	pending []pendingRef
	done    []bool
}

// resolve marks id and dispatches on its kind.
func (r *resolver) resolve(id ast.NodeID) {
	if !id.IsValid() {
		return
	}
	r.enter(id)
	r.dispatch(id)
}

// enter marks a node as resolved. Parents that handle a child themselves
// call it directly instead of going through resolve.
func (r *resolver) enter(id ast.NodeID) {
	if !id.IsValid() {
		return
	}
	if int(id) >= len(r.done) {
		panic(&ast.ResolveError{Node: id, Kind: r.tree.Kind(id), Msg: "node allocated after the pass started"})
	}
	if r.done[id] {
		panic(&ast.ResolveError{Node: id, Kind: r.tree.Kind(id), Msg: "resolved twice"})
	}
	r.done[id] = true
}

func (r *resolver) dispatch(id ast.NodeID) {
	switch kind := r.tree.Kind(id); kind {
	case ast.KindFile:
		r.st.WithScope(binding.ScopeFile, func() { r.children(id) })
	case ast.KindInterfaceDef:
		r.interfaceDef(id)
	case ast.KindModule, ast.KindConfiguration:
		r.component(id)
	case ast.KindSpecification:
		r.st.With(analyze.InSpecification, func() {
			r.st.WithScope(binding.ScopeSpecification, func() { r.children(id) })
		})
	case ast.KindUsesProvides:
		r.usesProvides(id)
	case ast.KindInterfaceRef:
		r.interfaceRef(id, tags.Tag{})
	case ast.KindImplementation:
		r.implementation(id)
	case ast.KindWiring:
		r.st.With(analyze.InWiring, func() {
			r.st.WithScope(binding.ScopeWiring, func() { r.children(id) })
		})
	case ast.KindComponentList:
		r.children(id)
	case ast.KindComponentRef:
		r.componentRef(id)
	case ast.KindConnection:
		r.connection(id)
	case ast.KindEndpoint:
		r.endpoint(id)
	case ast.KindDeclaration:
		r.declaration(id)
	case ast.KindDeclSpecs:
		r.specsOf(id)
	case ast.KindStructSpec:
		r.structType(id)
	case ast.KindEnumSpec:
		r.enumType(id)
	case ast.KindEnumeratorList, ast.KindEnumerator:
		// reached only through their enum
		r.children(id)
	case ast.KindInterfaceBody, ast.KindFieldList, ast.KindInitDeclaratorList, ast.KindParamList:
		r.children(id)
	case ast.KindInitDeclarator, ast.KindDeclarator, ast.KindQualifiedName, ast.KindParamDecl:
		// reached only through their declaration
		r.children(id)
	case ast.KindArraySuffix:
		r.children(id)
	case ast.KindInitializerList:
		r.initializerList(id)
	case ast.KindInitEntry:
		expected, _ := r.st.Expected()
		r.initEntry(id, expected, 0)
	case ast.KindDesignatorList:
		r.designatorList(id)
	case ast.KindDesignator:
		expected, ok := r.st.Expected()
		if !ok {
			expected = r.in.Unknown
		}
		r.designatorStep(id, expected)
	case ast.KindAttribute:
		r.attribute(id)
	case ast.KindFunctionDef:
		r.functionDef(id)
	case ast.KindCompound:
		r.st.WithScope(binding.ScopeBlock, func() { r.children(id) })
	case ast.KindExprStmt, ast.KindReturn, ast.KindIf, ast.KindArgList, ast.KindAtomic:
		r.children(id)
	case ast.KindLoop:
		r.st.WithScope(binding.ScopeBlock, func() { r.children(id) })
	case ast.KindJump:
	case ast.KindIdent:
		r.identRef(id)
	case ast.KindModifier, ast.KindTypeName:
	case ast.KindIntLit:
		r.tree.SetType(id, r.in.Int)
	case ast.KindStringLit:
		r.tree.SetType(id, r.in.Pointer(r.in.Scalar(types.KindInt, "char")))
	case ast.KindCall:
		r.children(id)
	case ast.KindMember:
		r.member(id)
	case ast.KindIndex:
		r.index(id)
	case ast.KindUnary:
		r.unary(id)
	case ast.KindBinary, ast.KindAssign:
		r.children(id)
		if r.tree.Kind(id) == ast.KindBinary && truthOps[r.tree.Op(id)] {
			r.tree.SetType(id, r.in.Int)
		} else if lhs := r.tree.Type(r.tree.Child(id, 0)); lhs.IsValid() {
			r.tree.SetType(id, lhs)
		}
	case ast.KindInvoke:
		r.invoke(id)
	case ast.KindConditional:
		r.children(id)
		if then := r.tree.Type(r.tree.Child(id, 1)); then.IsValid() {
			r.tree.SetType(id, then)
		}
	case ast.KindCast:
		r.cast(id)
	case ast.KindSizeof:
		r.sizeof(id)
	default:
		panic(&ast.ResolveError{Node: id, Kind: kind, Msg: "no resolution rule"})
	}
}

// children resolves every child in order.
func (r *resolver) children(id ast.NodeID) {
	for _, c := range r.tree.Children(id) {
		r.resolve(c)
	}
}

func (r *resolver) ident(id ast.NodeID) binding.Identifier {
	return binding.Identifier{Name: r.tree.Name(id), Span: r.tree.Span(id), Node: id}
}

func (r *resolver) unitName() string {
	if r.unit == nil {
		return ""
	}
	return r.unit.Name.Name
}
