// Package tags implements the classification markers attached to AST nodes
// and the ordered set algebra tooling uses to filter them.
package tags

import (
	"fmt"
	"sync/atomic"
)

var nextTagID atomic.Uint32

// Tag is an immutable classification marker. Identity and ordering come
// from id; two tags created with the same label are still distinct.
type Tag struct {
	id    uint32
	label string
	key   bool
}

// New creates a fresh tag. Key tags are the ones KeySet keeps.
func New(label string, key bool) Tag {
	return Tag{id: nextTagID.Add(1), label: label, key: key}
}

func (t Tag) ID() uint32    { return t.id }
func (t Tag) Label() string { return t.label }
func (t Tag) IsKey() bool   { return t.key }

// IsValid reports whether t was created through New.
func (t Tag) IsValid() bool { return t.id != 0 }

// Compare orders tags by creation id.
func (t Tag) Compare(other Tag) int {
	switch {
	case t.id < other.id:
		return -1
	case t.id > other.id:
		return 1
	}
	return 0
}

func (t Tag) String() string {
	if t.label == "" {
		return fmt.Sprintf("tag#%d", t.id)
	}
	return t.label
}
