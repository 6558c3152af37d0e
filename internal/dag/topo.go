package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

type Topo struct {
	Order   []UnitID   // present units, instantiating configurations first
	Batches [][]UnitID // waves of units independent of each other
	Cyclic  bool
	Cycles  []UnitID // units that reach themselves
}

func ToposortKahn(g Graph) *Topo {
	count := len(g.Edges)
	indeg := make([]int, len(g.Indeg))
	copy(indeg, g.Indeg)

	topo := &Topo{
		Order:   make([]UnitID, 0, count),
		Batches: make([][]UnitID, 0),
	}

	active := 0
	current := make([]UnitID, 0, count)
	for i := range count {
		if !g.Present[i] {
			continue
		}
		active++
		if indeg[i] == 0 {
			current = append(current, toID(i))
		}
	}

	visited := 0
	for len(current) > 0 {
		batch := slices.Clone(current)
		topo.Batches = append(topo.Batches, batch)

		next := make([]UnitID, 0)
		for _, id := range batch {
			topo.Order = append(topo.Order, id)
			visited++
			for _, to := range g.Edges[int(id)] {
				if !g.Present[int(to)] {
					continue
				}
				indeg[int(to)]--
				if indeg[int(to)] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if visited != active {
		topo.Cyclic = true
		// units below a cycle keep incoming edges too; only report the
		// ones on it
		for i := range count {
			if g.Present[i] && indeg[i] > 0 && reaches(g, indeg, toID(i)) {
				topo.Cycles = append(topo.Cycles, toID(i))
			}
		}
	}
	return topo
}

// reaches reports whether start is reachable from itself through units
// Kahn did not visit.
func reaches(g Graph, indeg []int, start UnitID) bool {
	seen := make([]bool, len(g.Edges))
	stack := append([]UnitID(nil), g.Edges[int(start)]...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == start {
			return true
		}
		if seen[int(id)] || !g.Present[int(id)] || indeg[int(id)] == 0 {
			continue
		}
		seen[int(id)] = true
		stack = append(stack, g.Edges[int(id)]...)
	}
	return false
}

func toID(i int) UnitID {
	id, err := safecast.Conv[UnitID](i)
	if err != nil {
		panic(fmt.Errorf("unit id overflow: %w", err))
	}
	return id
}
