// Package inspect projects a resolved tree onto small reporting nodes for
// outline views, tag dumps and exports. It never mutates the tree.
package inspect

import (
	"nesc/internal/ast"
	"nesc/internal/binding"
	"nesc/internal/source"
	"nesc/internal/tags"
	"nesc/internal/types"
)

// Node is the reporting view of one tree node.
type Node struct {
	Kind     string      `json:"kind" msgpack:"kind"`
	Name     string      `json:"name,omitempty" msgpack:"name,omitempty"`
	Label    string      `json:"label" msgpack:"label"`
	Span     source.Span `json:"span" msgpack:"span"`
	Tags     []string    `json:"tags,omitempty" msgpack:"tags,omitempty"`
	Key      []string    `json:"key,omitempty" msgpack:"key,omitempty"`
	Type     string      `json:"type,omitempty" msgpack:"type,omitempty"`
	Children []Node      `json:"children,omitempty" msgpack:"children,omitempty"`
}

// Inspect returns the view of id, or false when the node carries nothing
// worth reporting: it is untagged, or a punctuation-level node. in may be
// nil, in which case types are left out.
func Inspect(tree *ast.Tree, id ast.NodeID, r binding.Resolver, in *types.Interner) (Node, bool) {
	set := tree.Tags(id)
	if set.Len() == 0 {
		return Node{}, false
	}
	kind := tree.Kind(id)
	n := Node{
		Kind: kind.String(),
		Span: tree.Span(id),
		Tags: set.Labels(),
		Key:  set.KeySet().Labels(),
	}
	switch kind {
	case ast.KindIdent:
		n.Name = tree.Name(id)
		n.Label = n.Name
		if r != nil {
			if b, ok := r.BindingOf(id); ok {
				if b.Global != b.Decl.Name && b.Global != "" {
					n.Label = n.Name + " = " + b.Global
				}
				n.Type = typeString(in, b.Type)
			}
		}
	case ast.KindInterfaceDef, ast.KindModule, ast.KindConfiguration:
		n.Name = tree.Name(tree.Child(id, 0))
		n.Label = unitWord(kind) + " " + n.Name
		if set.Contains(tags.Generic) {
			n.Label = "generic " + n.Label
		}
	case ast.KindFunctionDef:
		n.Name = functionName(tree, id)
		n.Label = n.Name
		if in != nil {
			n.Type = typeString(in, tree.Type(tree.Child(id, 1)))
		}
	case ast.KindConnection:
		n.Label = endpointText(tree, tree.Child(id, 0)) + " " + tree.Op(id) + " " + endpointText(tree, tree.Child(id, 1))
	case ast.KindInvoke:
		n.Label = tree.Op(id)
	default:
		n.Label = kind.String()
	}
	if n.Type == "" && kind != ast.KindIdent {
		n.Type = typeString(in, tree.Type(id))
	}
	return n, true
}

func typeString(in *types.Interner, ty types.TypeID) string {
	if in == nil || !ty.IsValid() {
		return ""
	}
	return in.String(ty)
}

func unitWord(kind ast.Kind) string {
	switch kind {
	case ast.KindInterfaceDef:
		return "interface"
	case ast.KindModule:
		return "module"
	default:
		return "configuration"
	}
}

// functionName is "f" or "Iface.event" for a definition.
func functionName(tree *ast.Tree, fn ast.NodeID) string {
	name := tree.Child(tree.Child(fn, 1), 0)
	if tree.Kind(name) == ast.KindQualifiedName {
		return tree.Name(tree.Child(name, 0)) + "." + tree.Name(tree.Child(name, 1))
	}
	return tree.Name(name)
}

func endpointText(tree *ast.Tree, ep ast.NodeID) string {
	out := tree.Name(tree.Child(ep, 0))
	if second := tree.Child(ep, 1); second.IsValid() {
		out += "." + tree.Name(second)
	}
	return out
}
