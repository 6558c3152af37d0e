package tags

import (
	"encoding/binary"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// FrozenError is raised when the shared empty set is mutated.
type FrozenError struct {
	Op string
}

func (e *FrozenError) Error() string {
	return fmt.Sprintf("tags: %s on immutable empty set", e.Op)
}

// Empty is the shared immutable empty set. Mutating it panics with *FrozenError.
var Empty = &Set{frozen: true}

// Set is an ordered collection of unique tags. Iteration follows tag order,
// not insertion order. The zero value is an empty, mutable set. A nil *Set
// reads as empty. Sets are not safe for concurrent mutation.
type Set struct {
	tags   []Tag // sorted by id
	frozen bool
}

// NewSet returns an empty set with room for n tags.
func NewSet(n int) *Set {
	return &Set{tags: make([]Tag, 0, n)}
}

// Of builds a set containing tags.
func Of(tags ...Tag) *Set {
	s := NewSet(len(tags))
	for _, t := range tags {
		s.Add(t)
	}
	return s
}

func (s *Set) mutable(op string) {
	if s.frozen {
		panic(&FrozenError{Op: op})
	}
}

func (s *Set) search(t Tag) (int, bool) {
	return slices.BinarySearchFunc(s.tags, t, Tag.Compare)
}

// Add inserts t and reports whether it was not already present.
func (s *Set) Add(t Tag) bool {
	s.mutable("add")
	i, found := s.search(t)
	if found {
		return false
	}
	s.tags = slices.Insert(s.tags, i, t)
	return true
}

// AddFrom adds t only when src contains it.
func (s *Set) AddFrom(src *Set, t Tag) {
	if src.Contains(t) {
		s.Add(t)
	}
}

// AddAll adds every tag of other.
func (s *Set) AddAll(other *Set) {
	s.mutable("add")
	if other.Len() == 0 {
		return
	}
	for _, t := range other.tags {
		s.Add(t)
	}
}

func (s *Set) Remove(t Tag) {
	s.mutable("remove")
	if i, found := s.search(t); found {
		s.tags = slices.Delete(s.tags, i, i+1)
	}
}

// RemoveAll removes every tag of other. A nil other is a no-op.
func (s *Set) RemoveAll(other *Set) {
	if other == nil {
		return
	}
	s.mutable("remove")
	for _, t := range other.tags {
		s.Remove(t)
	}
}

func (s *Set) Contains(t Tag) bool {
	if s == nil {
		return false
	}
	_, found := s.search(t)
	return found
}

// ContainsAll reports whether s is a superset of other.
func (s *Set) ContainsAll(other *Set) bool {
	if other == nil {
		return true
	}
	for _, t := range other.tags {
		if !s.Contains(t) {
			return false
		}
	}
	return true
}

// Count returns the size of the intersection of s and other.
func (s *Set) Count(other *Set) int {
	if s == nil || other == nil {
		return 0
	}
	n := 0
	for _, t := range other.tags {
		if s.Contains(t) {
			n++
		}
	}
	return n
}

// ContainsOneOf reports whether s and other intersect.
func (s *Set) ContainsOneOf(other *Set) bool {
	if s == nil || other == nil {
		return false
	}
	for _, t := range other.tags {
		if s.Contains(t) {
			return true
		}
	}
	return false
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.tags)
}

// Copy returns a mutable set with the same members.
func (s *Set) Copy() *Set {
	if s == nil {
		return NewSet(0)
	}
	return &Set{tags: slices.Clone(s.tags)}
}

// IndependentKeySet returns the key tags of s. Later changes to either set
// never show up in the other.
func (s *Set) IndependentKeySet() *Set {
	out := NewSet(s.Len())
	if s == nil {
		return out
	}
	for _, t := range s.tags {
		if t.key {
			out.tags = append(out.tags, t)
		}
	}
	return out
}

// KeySet returns the key tags of s. Callers must not rely on the result
// sharing or not sharing state with s; the current implementation copies.
func (s *Set) KeySet() *Set {
	return s.IndependentKeySet()
}

// Filter returns the members for which keep holds.
func (s *Set) Filter(keep func(Tag) bool) *Set {
	out := NewSet(0)
	if s == nil {
		return out
	}
	for _, t := range s.tags {
		if keep(t) {
			out.tags = append(out.tags, t)
		}
	}
	return out
}

// Tags returns the members in order as a fresh slice.
func (s *Set) Tags() []Tag {
	if s == nil {
		return nil
	}
	return slices.Clone(s.tags)
}

// Labels returns the member labels in order.
func (s *Set) Labels() []string {
	out := make([]string, 0, s.Len())
	for t := range s.All() {
		out = append(out, t.String())
	}
	return out
}

// All iterates in tag order.
func (s *Set) All() iter.Seq[Tag] {
	return func(yield func(Tag) bool) {
		if s == nil {
			return
		}
		for _, t := range s.tags {
			if !yield(t) {
				return
			}
		}
	}
}

// Equal is structural: same members.
func (s *Set) Equal(other *Set) bool {
	if s.Len() != other.Len() {
		return false
	}
	for i := 0; i < s.Len(); i++ {
		if s.tags[i] != other.tags[i] {
			return false
		}
	}
	return true
}

// Hash is stable for equal sets.
func (s *Set) Hash() uint64 {
	d := xxhash.New()
	var buf [4]byte
	for t := range s.All() {
		binary.LittleEndian.PutUint32(buf[:], t.id)
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}

// Frozen reports whether s rejects mutation.
func (s *Set) Frozen() bool {
	return s != nil && s.frozen
}

func (s *Set) String() string {
	var b strings.Builder
	b.WriteString("TagSet[tags={")
	for i, t := range s.Tags() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(t.String())
	}
	b.WriteString("}]")
	return b.String()
}
