package inspect

import (
	"nesc/internal/ast"
	"nesc/internal/binding"
	"nesc/internal/tags"
	"nesc/internal/types"
)

var outlineTags = tags.Outline()

// Outline lists the declarations under root: units with their interface
// references, components, variables and functions, plus file-level types,
// variables and functions. Function bodies and struct fields are left out.
func Outline(tree *ast.Tree, root ast.NodeID, r binding.Resolver, in *types.Interner) []Node {
	o := outliner{tree: tree, r: r, in: in}
	return o.collect(root)
}

type outliner struct {
	tree *ast.Tree
	r    binding.Resolver
	in   *types.Interner
}

func (o *outliner) collect(id ast.NodeID) []Node {
	var out []Node
	for _, c := range o.tree.Children(id) {
		out = append(out, o.visit(c)...)
	}
	return out
}

func (o *outliner) visit(id ast.NodeID) []Node {
	switch o.tree.Kind(id) {
	case ast.KindInterfaceDef, ast.KindModule, ast.KindConfiguration:
		n, ok := Inspect(o.tree, id, o.r, o.in)
		if !ok {
			return nil
		}
		children := o.tree.Children(id)[1:]
		for _, c := range children {
			n.Children = append(n.Children, o.visit(c)...)
		}
		return []Node{n}
	case ast.KindFunctionDef:
		if n, ok := Inspect(o.tree, id, o.r, o.in); ok {
			return []Node{n}
		}
		return nil
	case ast.KindFieldList, ast.KindParamList, ast.KindCompound:
		return nil
	case ast.KindIdent:
		set := o.tree.Tags(id)
		if !set.Contains(tags.Declaration) || !set.ContainsOneOf(outlineTags) {
			return nil
		}
		if n, ok := Inspect(o.tree, id, o.r, o.in); ok {
			return []Node{n}
		}
		return nil
	default:
		return o.collect(id)
	}
}

// Walk calls fn for every inspectable node under root in pre-order.
func Walk(tree *ast.Tree, root ast.NodeID, r binding.Resolver, in *types.Interner, fn func(Node)) {
	ast.Inspect(tree, root, func(id ast.NodeID) bool {
		if n, ok := Inspect(tree, id, r, in); ok {
			fn(n)
		}
		return true
	})
}
