package dag

import (
	"strings"
	"testing"

	"nesc/internal/binding"
	"nesc/internal/diag"
	"nesc/internal/source"
)

func idsToNames(idx UnitIndex, ids []UnitID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = idx.IDToName[int(id)]
	}
	return out
}

func config(name string, uses ...string) UnitMeta {
	m := UnitMeta{Name: name, Kind: binding.UnitConfiguration}
	for _, u := range uses {
		m.Uses = append(m.Uses, UnitRef{Name: u})
	}
	return m
}

func TestBuildIndexIncludesReferences(t *testing.T) {
	idx := BuildIndex([]UnitMeta{config("AppC", "MainC", "BlinkC"), config("BlinkC")})
	want := []string{"AppC", "BlinkC", "MainC"}
	if strings.Join(idx.IDToName, ",") != strings.Join(want, ",") {
		t.Fatalf("Expected %v, got %v", want, idx.IDToName)
	}
	for i, name := range want {
		if id, ok := idx.NameToID[name]; !ok || int(id) != i {
			t.Fatalf("idx.NameToID[%q] = %v, want %d", name, id, i)
		}
	}
}

func TestToposortBatches(t *testing.T) {
	metas := []UnitMeta{config("A", "B", "C"), config("B", "C"), {Name: "C", Kind: binding.UnitModule}}
	nodes := make([]UnitNode, len(metas))
	for i, m := range metas {
		nodes[i] = UnitNode{Meta: m}
	}
	idx := BuildIndex(metas)
	g, _ := BuildGraph(idx, nodes)
	topo := ToposortKahn(g)
	if topo.Cyclic {
		t.Fatalf("expected acyclic graph")
	}
	if got := strings.Join(idsToNames(idx, topo.Order), ","); got != "A,B,C" {
		t.Fatalf("Expected order A,B,C, got %s", got)
	}
	if len(topo.Batches) != 3 {
		t.Fatalf("Expected 3 batches, got %d", len(topo.Batches))
	}
}

func TestCyclesAndSelfInstantiation(t *testing.T) {
	metas := []UnitMeta{
		config("A", "B"),
		config("B", "A", "C"),
		{Name: "C", Kind: binding.UnitModule},
		config("D", "D"),
	}
	bags := make([]*diag.Bag, len(metas))
	nodes := make([]UnitNode, len(metas))
	for i, m := range metas {
		bags[i] = diag.NewBag(0)
		nodes[i] = UnitNode{Meta: m, Reporter: &diag.BagReporter{Bag: bags[i]}}
	}
	idx := BuildIndex(metas)
	g, slots := BuildGraph(idx, nodes)
	if bags[3].Len() != 1 || !strings.Contains(bags[3].Items()[0].Message, "instantiates itself") {
		t.Fatalf("self instantiation not reported: %v", bags[3].Items())
	}
	if len(g.Edges[int(idx.NameToID["D"])]) != 0 {
		t.Fatalf("self edge kept")
	}

	topo := ToposortKahn(g)
	if !topo.Cyclic {
		t.Fatalf("expected a cycle")
	}
	if got := strings.Join(idsToNames(idx, topo.Cycles), ","); got != "A,B" {
		t.Fatalf("Expected cycle A,B, got %s", got)
	}
	ReportCycles(idx, slots, topo)
	for i, want := range []int{1, 1, 0} {
		if bags[i].Len() != want {
			t.Errorf("%s: Expected %d diagnostics, got %d", metas[i].Name, want, bags[i].Len())
		}
	}
	if msg := bags[0].Items()[0].Message; !strings.Contains(msg, "A -> B") {
		t.Errorf("unexpected message %q", msg)
	}
	if bags[0].Items()[0].Code != diag.SemaComponentCycle {
		t.Errorf("Expected %v, got %v", diag.SemaComponentCycle, bags[0].Items()[0].Code)
	}
}

func TestMetaOf(t *testing.T) {
	u := binding.NewUnit(binding.UnitConfiguration, binding.Identifier{Name: "AppC"}, 1)
	span := source.Span{File: 1, Start: 40, End: 41}
	u.ComponentLocalNames().Put(binding.Identifier{Name: "L", Span: span}, "LedsC")
	m := MetaOf(u)
	if m.Name != "AppC" || len(m.Uses) != 1 || m.Uses[0].Name != "LedsC" || m.Uses[0].Span != span {
		t.Fatalf("unexpected meta %+v", m)
	}
}
