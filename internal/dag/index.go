// Package dag orders the units of a directory by the components each
// configuration instantiates and finds instantiation cycles.
package dag

import (
	"sort"

	"nesc/internal/binding"
	"nesc/internal/source"
)

type UnitID uint32

// UnitRef is a component named in a components clause.
type UnitRef struct {
	Name string
	Span source.Span
}

// UnitMeta is what the graph needs to know about one unit.
type UnitMeta struct {
	Name string
	Kind binding.UnitKind
	Span source.Span
	Uses []UnitRef
}

// MetaOf extracts the component references of a resolved unit. The span
// of each reference is the local name, which is the component name unless
// it was aliased.
func MetaOf(u *binding.Unit) UnitMeta {
	m := UnitMeta{Name: u.Name.Name, Kind: u.Kind, Span: u.Name.Span}
	for _, e := range u.ComponentLocalNames().Entries() {
		m.Uses = append(m.Uses, UnitRef{Name: e.Global, Span: e.Local.Span})
	}
	return m
}

type UnitIndex struct {
	NameToID map[string]UnitID
	IDToName []string
}

// BuildIndex assigns ids in name order to every unit and every unit it
// references.
func BuildIndex(metas []UnitMeta) UnitIndex {
	uniq := make(map[string]struct{}, len(metas))
	for _, meta := range metas {
		if meta.Name != "" {
			uniq[meta.Name] = struct{}{}
		}
		for _, ref := range meta.Uses {
			if ref.Name != "" {
				uniq[ref.Name] = struct{}{}
			}
		}
	}

	names := make([]string, 0, len(uniq))
	for name := range uniq {
		names = append(names, name)
	}
	sort.Strings(names)

	nameToID := make(map[string]UnitID, len(names))
	for i, name := range names {
		nameToID[name] = UnitID(i)
	}
	return UnitIndex{NameToID: nameToID, IDToName: names}
}
