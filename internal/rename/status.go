// Package rename checks proposed renames of nesC local names for
// collisions and plans the resulting text edits.
package rename

import (
	"nesc/internal/diag"
	"nesc/internal/source"
)

// Context places a status entry in a file.
type Context struct {
	File   source.FileID
	Region source.Region
}

// Span converts the context back into a source span.
func (c Context) Span() source.Span {
	return source.Span{File: c.File, Start: c.Region.Offset, End: c.Region.Offset + c.Region.Length}
}

// Entry is one message of a Status. Entries that belong together, such as
// the two halves of a collision, share a Group.
type Entry struct {
	Severity diag.Severity
	Code     diag.Code
	Message  string
	Context  Context
	Group    int
}

// Status accumulates the outcome of rename checks. It only grows.
type Status struct {
	entries []Entry
	groups  int
}

func NewStatus() *Status { return &Status{} }

// NewGroup starts a group for entries that are reported together.
func (s *Status) NewGroup() int {
	s.groups++
	return s.groups
}

func (s *Status) add(sev diag.Severity, code diag.Code, msg string, ctx Context, group int) {
	s.entries = append(s.entries, Entry{Severity: sev, Code: code, Message: msg, Context: ctx, Group: group})
}

// AddError appends an error in its own group.
func (s *Status) AddError(code diag.Code, msg string, ctx Context) {
	s.add(diag.SevError, code, msg, ctx, s.NewGroup())
}

// AddWarning appends a warning in its own group.
func (s *Status) AddWarning(code diag.Code, msg string, ctx Context) {
	s.add(diag.SevWarning, code, msg, ctx, s.NewGroup())
}

func (s *Status) HasErrors() bool {
	for _, e := range s.entries {
		if e.Severity >= diag.SevError {
			return true
		}
	}
	return false
}

func (s *Status) Len() int { return len(s.entries) }

// Entries returns the entries in the order they were added.
func (s *Status) Entries() []Entry {
	return append([]Entry(nil), s.entries...)
}

// Diagnostics renders the status as diagnostics. The first entry of a
// group is the primary; the others become its notes.
func (s *Status) Diagnostics() []diag.Diagnostic {
	var out []diag.Diagnostic
	index := make(map[int]int)
	for _, e := range s.entries {
		if i, ok := index[e.Group]; ok {
			out[i] = out[i].WithNote(e.Context.Span(), e.Message)
			continue
		}
		index[e.Group] = len(out)
		out = append(out, diag.New(e.Severity, e.Code, e.Context.Span(), e.Message))
	}
	return out
}
