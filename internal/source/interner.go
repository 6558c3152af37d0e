package source

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
)

// StringID is a handle into an Interner.
type StringID uint32

const NoStringID StringID = 0

// Interner maps identifier text to compact ids. Id 0 is always "".
// It is not safe for concurrent writers; each tree owns one.
type Interner struct {
	strs []string
	ids  map[string]StringID
}

func NewInterner() *Interner {
	return &Interner{strs: []string{""}, ids: map[string]StringID{"": NoStringID}}
}

func (in *Interner) Intern(s string) StringID {
	if id, ok := in.ids[s]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(in.strs))
	if err != nil {
		panic(fmt.Errorf("source: interner overflow: %w", err))
	}
	s = strings.Clone(s)
	in.strs = append(in.strs, s)
	in.ids[s] = StringID(n)
	return StringID(n)
}

// InternBytes copies b; the lexer's buffer may be reused.
func (in *Interner) InternBytes(b []byte) StringID { return in.Intern(string(b)) }

func (in *Interner) Lookup(id StringID) (string, bool) {
	if int(id) >= len(in.strs) {
		return "", false
	}
	return in.strs[id], true
}

func (in *Interner) MustLookup(id StringID) string {
	s, ok := in.Lookup(id)
	if !ok {
		panic(fmt.Sprintf("source: unknown string id %d", id))
	}
	return s
}

// Find looks s up without interning it.
func (in *Interner) Find(s string) (StringID, bool) {
	id, ok := in.ids[s]
	return id, ok
}

// Len includes the reserved empty string.
func (in *Interner) Len() int { return len(in.strs) }
