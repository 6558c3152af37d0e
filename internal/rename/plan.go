package rename

import (
	"fmt"
	"sort"

	"golang.org/x/text/unicode/norm"

	"nesc/internal/ast"
	"nesc/internal/binding"
	"nesc/internal/diag"
	"nesc/internal/sema"
	"nesc/internal/source"
	"nesc/internal/token"
)

// Edit replaces OldText at Span with NewText.
type Edit struct {
	Span    source.Span
	OldText string
	NewText string
}

// FileEdits are the edits of one file ordered by offset.
type FileEdits struct {
	File  source.FileID
	Edits []Edit
}

// Plan checks renaming the identifier at node to newName and returns the
// edits for the declaration and every reference. No edits are returned
// when the status has errors.
func Plan(res *sema.Result, node ast.NodeID, newName string) ([]Edit, *Status) {
	st := NewStatus()
	tree := res.Tree
	at := Context{File: tree.File, Region: tree.Span(node).Region()}

	sel := Select(res, node)
	if !CanRename(sel.Kind, sel) {
		st.AddError(diag.RenNotAvailable, fmt.Sprintf("%q cannot be renamed", tree.Name(node)), at)
		return nil, st
	}
	if msg := checkName(newName); msg != "" {
		st.AddError(diag.RenInvalidName, msg, at)
		return nil, st
	}
	decl := sel.Binding.Decl
	if newName == decl.Name {
		return nil, st
	}

	var d Detector
	switch sel.Kind {
	case SelectComponentAlias:
		d.configurationScope(sel.Unit, tree.File, decl, newName, st)
	case SelectInterfaceAlias:
		if sel.Unit.Kind == binding.UnitConfiguration {
			d.configurationScope(sel.Unit, tree.File, decl, newName, st)
		} else {
			d.NewNameWithLocalInterfaceName(sel.Unit, tree.File, decl, newName, st)
		}
	case SelectVariable:
		localCollisions(res, sel, newName, st)
	}
	if st.HasErrors() {
		return nil, st
	}

	var edits []Edit
	for _, occ := range res.Bindings.Occurrences(sel.Binding.ID) {
		start := tree.Span(occ).Start
		edits = append(edits, Edit{
			Span:    source.Span{File: tree.File, Start: start, End: start + decl.Region().Length},
			OldText: decl.Name,
			NewText: newName,
		})
	}
	sortEdits(edits)
	return edits, st
}

// localCollisions reports variables named newName that are visible where
// the renamed variable is: the implementation level and, for a function
// local, the function it belongs to.
func localCollisions(res *sema.Result, sel Selection, newName string, st *Status) {
	decl := sel.Binding.Decl
	fn := enclosingFunction(res.Tree, decl.Node)
	for _, other := range res.Bindings.LookupAll(binding.NSVariable, newName) {
		if other.Unit != sel.Binding.Unit || !other.ImplementationLocal() {
			continue
		}
		visible := other.Scope == binding.ScopeImplementation
		if !visible && fn.IsValid() {
			visible = enclosingFunction(res.Tree, other.Decl.Node) == fn
		}
		if !visible && sel.Binding.Scope == binding.ScopeImplementation {
			// an inner declaration would now capture uses of the renamed name
			visible = usedIn(res, sel.Binding, enclosingFunction(res.Tree, other.Decl.Node))
		}
		if visible {
			addCollision(decl, other.Decl, res.Tree.File, st)
		}
	}
}

func enclosingFunction(tree *ast.Tree, node ast.NodeID) ast.NodeID {
	path := tree.PathTo(node)
	for i := len(path) - 1; i >= 0; i-- {
		if tree.Kind(path[i]) == ast.KindFunctionDef {
			return path[i]
		}
	}
	return ast.NoNodeID
}

func usedIn(res *sema.Result, b binding.Binding, fn ast.NodeID) bool {
	if !fn.IsValid() {
		return false
	}
	for _, occ := range res.Bindings.Occurrences(b.ID) {
		if enclosingFunction(res.Tree, occ) == fn {
			return true
		}
	}
	return false
}

// checkName returns why name cannot be an identifier, or "".
func checkName(name string) string {
	if name == "" {
		return "new name is empty"
	}
	if !norm.NFC.IsNormalString(name) {
		return fmt.Sprintf("new name %q is not in normalization form C", name)
	}
	for i, r := range name {
		letter := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if letter || (i > 0 && r >= '0' && r <= '9') {
			continue
		}
		return fmt.Sprintf("new name %q is not a valid identifier", name)
	}
	if token.IsKeyword(name) {
		return fmt.Sprintf("new name %q is a reserved word", name)
	}
	return ""
}

func sortEdits(edits []Edit) {
	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].Span.File != edits[j].Span.File {
			return edits[i].Span.File < edits[j].Span.File
		}
		return edits[i].Span.Start < edits[j].Span.Start
	})
}

// Group buckets edits per file, files in id order.
func Group(edits []Edit) []FileEdits {
	sorted := append([]Edit(nil), edits...)
	sortEdits(sorted)
	var out []FileEdits
	for _, e := range sorted {
		if len(out) == 0 || out[len(out)-1].File != e.Span.File {
			out = append(out, FileEdits{File: e.Span.File})
		}
		last := &out[len(out)-1]
		last.Edits = append(last.Edits, e)
	}
	return out
}
