package dag

import (
	"fmt"
	"slices"
	"strings"

	"nesc/internal/diag"
)

// Graph has an edge from each configuration to the components it
// instantiates.
type Graph struct {
	Edges   [][]UnitID // Edges[from] = []to
	Indeg   []int      // counts only edges between present units
	Present []bool     // the unit is defined, not only referenced
}

type UnitNode struct {
	Meta     UnitMeta
	Reporter diag.Reporter
}

type UnitSlot struct {
	Meta     UnitMeta
	Reporter diag.Reporter
	Present  bool
}

// BuildGraph links the nodes. A repeated unit name keeps the first node;
// duplicates and unknown references are left to the resolver, which has
// already reported them. A configuration naming itself is reported here.
func BuildGraph(idx UnitIndex, nodes []UnitNode) (Graph, []UnitSlot) {
	count := len(idx.IDToName)
	g := Graph{
		Edges:   make([][]UnitID, count),
		Indeg:   make([]int, count),
		Present: make([]bool, count),
	}
	slots := make([]UnitSlot, count)
	for i, name := range idx.IDToName {
		slots[i].Meta.Name = name
	}

	for _, node := range nodes {
		id, ok := idx.NameToID[node.Meta.Name]
		if !ok || slots[int(id)].Present {
			continue
		}
		slots[int(id)] = UnitSlot{Meta: node.Meta, Reporter: node.Reporter, Present: true}
		g.Present[int(id)] = true
	}

	for from := range slots {
		slot := &slots[from]
		if !slot.Present {
			continue
		}
		seen := make(map[UnitID]struct{}, len(slot.Meta.Uses))
		for _, ref := range slot.Meta.Uses {
			to, ok := idx.NameToID[ref.Name]
			if !ok {
				continue
			}
			if UnitID(from) == to {
				if slot.Reporter != nil {
					diag.ReportError(slot.Reporter, diag.SemaComponentCycle, ref.Span,
						fmt.Sprintf("%s %q instantiates itself", slot.Meta.Kind, slot.Meta.Name)).
						Emit()
				}
				continue
			}
			if _, dup := seen[to]; dup {
				continue
			}
			seen[to] = struct{}{}
			g.Edges[from] = append(g.Edges[from], to)
			if g.Present[int(to)] {
				g.Indeg[int(to)]++
			}
		}
		slices.Sort(g.Edges[from])
	}
	return g, slots
}

// ReportCycles reports every unit left in a cycle, naming the whole set.
func ReportCycles(idx UnitIndex, slots []UnitSlot, topo *Topo) {
	if topo == nil || !topo.Cyclic || len(topo.Cycles) == 0 {
		return
	}
	names := make([]string, 0, len(topo.Cycles))
	for _, id := range topo.Cycles {
		names = append(names, idx.IDToName[int(id)])
	}
	summary := strings.Join(names, " -> ")

	for _, id := range topo.Cycles {
		slot := slots[int(id)]
		if !slot.Present || slot.Reporter == nil {
			continue
		}
		msg := fmt.Sprintf("%s %q is part of a component cycle: %s", slot.Meta.Kind, slot.Meta.Name, summary)
		diag.ReportError(slot.Reporter, diag.SemaComponentCycle, slot.Meta.Span, msg).Emit()
	}
}
