package driver

import (
	"sort"
	"sync"

	"nesc/internal/binding"
)

// Index maps unit names to the units defined across a set of files. It
// serves as sema.Globals for the second pass of AnalyzeDir.
type Index struct {
	mu    sync.RWMutex
	units map[string]*binding.Unit
}

func NewIndex() *Index {
	return &Index{units: make(map[string]*binding.Unit)}
}

// Add records u and returns the earlier unit of the same name, if any.
// The first definition wins.
func (ix *Index) Add(u *binding.Unit) (*binding.Unit, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if prev, dup := ix.units[u.Name.Name]; dup {
		return prev, true
	}
	ix.units[u.Name.Name] = u
	return nil, false
}

func (ix *Index) Unit(name string) (*binding.Unit, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	u, ok := ix.units[name]
	return u, ok
}

func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.units)
}

// Names returns the unit names in sorted order.
func (ix *Index) Names() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]string, 0, len(ix.units))
	for name := range ix.units {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
