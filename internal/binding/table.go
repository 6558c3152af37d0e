// Package binding maps identifier occurrences to their declarations and
// keeps the per-unit local name tables used by rename checks.
package binding

import (
	"fmt"

	"fortio.org/safecast"

	"nesc/internal/ast"
	"nesc/internal/source"
)

// Namespace separates names that may not collide with each other.
type Namespace uint8

const (
	NSInvalid Namespace = iota
	NSComponentLocal
	NSInterfaceLocal
	NSVariable
	NSFunction
	NSType
	NSUnit // interface, module and configuration names
)

func (ns Namespace) String() string {
	switch ns {
	case NSComponentLocal:
		return "component"
	case NSInterfaceLocal:
		return "interface"
	case NSVariable:
		return "variable"
	case NSFunction:
		return "function"
	case NSType:
		return "type"
	case NSUnit:
		return "unit"
	default:
		return "invalid"
	}
}

// Identifier is a named occurrence in a file.
type Identifier struct {
	Name string
	Span source.Span
	Node ast.NodeID
}

// Region is the marker range of the identifier: its start and the length
// of its name, independent of any trailing trivia in Span.
func (id Identifier) Region() source.Region {
	n, err := safecast.Conv[uint32](len(id.Name))
	if err != nil {
		panic(fmt.Errorf("identifier length overflow: %w", err))
	}
	return source.Region{Offset: id.Span.Start, Length: n}
}

func (id Identifier) IsValid() bool { return id.Name != "" }

// Entry maps a local name to the global name it stands for.
type Entry struct {
	Local  Identifier
	Global string
}

// Table is an ordered local→global mapping for one namespace of a unit.
// It is filled while the unit is resolved and read afterwards.
type Table struct {
	ns      Namespace
	entries []Entry
}

func NewTable(ns Namespace) *Table {
	return &Table{ns: ns}
}

func (t *Table) Namespace() Namespace { return t.ns }

// Put appends an entry. Duplicates are kept; reporting them is the
// builder's job.
func (t *Table) Put(local Identifier, global string) {
	t.entries = append(t.entries, Entry{Local: local, Global: global})
}

// Entries returns a copy of the entries in insertion order.
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	return append([]Entry(nil), t.entries...)
}

// Locals returns the local identifiers in insertion order.
func (t *Table) Locals() []Identifier {
	if t == nil {
		return nil
	}
	out := make([]Identifier, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Local
	}
	return out
}

// Global returns the global name bound to local.
func (t *Table) Global(local string) (string, bool) {
	if t == nil {
		return "", false
	}
	for _, e := range t.entries {
		if e.Local.Name == local {
			return e.Global, true
		}
	}
	return "", false
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// ExistsLocalName scans t for the first identifier spelled name.
// Comparison is case sensitive. A nil table holds nothing.
func ExistsLocalName(t *Table, name string) (Identifier, bool) {
	if t == nil {
		return Identifier{}, false
	}
	for _, e := range t.entries {
		if e.Local.Name == name {
			return e.Local, true
		}
	}
	return Identifier{}, false
}
