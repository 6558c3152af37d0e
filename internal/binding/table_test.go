package binding

import (
	"testing"

	"nesc/internal/ast"
	"nesc/internal/source"
)

func ident(name string, start uint32) Identifier {
	return Identifier{Name: name, Span: source.Span{Start: start, End: start + uint32(len(name)) + 2}}
}

func TestExistsLocalName(t *testing.T) {
	tbl := NewTable(NSComponentLocal)
	tbl.Put(ident("RadioC", 10), "Radio")
	tbl.Put(ident("TimerC", 30), "Timer")
	tbl.Put(ident("TimerC", 50), "Timer2")

	got, ok := ExistsLocalName(tbl, "TimerC")
	if !ok || got.Span.Start != 30 {
		t.Fatalf("Expected first TimerC at 30, got %+v (%v)", got, ok)
	}
	if _, ok := ExistsLocalName(tbl, "timerc"); ok {
		t.Fatalf("lookup must be case sensitive")
	}
	if _, ok := ExistsLocalName(nil, "RadioC"); ok {
		t.Fatalf("nil table holds nothing")
	}
	if g, _ := tbl.Global("RadioC"); g != "Radio" {
		t.Fatalf("Expected Radio, got %q", g)
	}
}

func TestIdentifierRegionUsesNameLength(t *testing.T) {
	id := ident("RadioC", 10)
	r := id.Region()
	if r.Offset != 10 || r.Length != 6 {
		t.Fatalf("Expected [10+6], got %s", r)
	}
}

func TestEntriesAreCopies(t *testing.T) {
	tbl := NewTable(NSInterfaceLocal)
	tbl.Put(ident("Leds", 0), "Leds")
	entries := tbl.Entries()
	entries[0].Global = "changed"
	if g, _ := tbl.Global("Leds"); g != "Leds" {
		t.Fatalf("Entries leaked internal storage")
	}
}

func TestBindingsLookupAndOccurrences(t *testing.T) {
	bs := NewBindings()
	decl := ident("count", 4)
	decl.Node = ast.NodeID(7)
	id := bs.Declare(Binding{Namespace: NSVariable, Decl: decl, Scope: ScopeImplementation})
	bs.Refer(ast.NodeID(12), id)
	bs.Refer(ast.NodeID(15), id)
	bs.Refer(ast.NodeID(15), id)

	if b, ok := bs.Lookup(NSVariable, "count"); !ok || b.ID != id {
		t.Fatalf("lookup failed: %+v", b)
	}
	if _, ok := bs.Lookup(NSFunction, "count"); ok {
		t.Fatalf("namespaces must not mix")
	}
	if b, ok := bs.BindingOf(ast.NodeID(12)); !ok || b.Decl.Name != "count" {
		t.Fatalf("reference not bound")
	}
	occ := bs.Occurrences(id)
	if len(occ) != 3 || occ[0] != 7 {
		t.Fatalf("unexpected occurrences %v", occ)
	}
	b, _ := bs.Get(id)
	if !b.ImplementationLocal() {
		t.Fatalf("implementation variable should be local")
	}
}

func TestUnitTables(t *testing.T) {
	u := NewUnit(UnitConfiguration, ident("AppC", 0), ast.NodeID(1))
	u.ComponentLocalNames().Put(ident("RadioC", 10), "Radio")
	if u.TableFor(NSComponentLocal).Len() != 1 {
		t.Fatalf("component table not shared")
	}
	if u.TableFor(NSType) != nil {
		t.Fatalf("units keep no type table")
	}
}
