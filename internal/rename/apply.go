package rename

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"nesc/internal/source"
)

var (
	// ErrConflict is returned when two edits overlap.
	ErrConflict = errors.New("rename: overlapping edits")
	// ErrStale is returned when the text under an edit is not what the
	// plan expected.
	ErrStale = errors.New("rename: existing text does not match expected content")
)

// FileChange summarises what was written to one file.
type FileChange struct {
	Path      string
	EditCount int
}

// Apply rewrites content with edits of a single file.
func Apply(content []byte, edits []Edit) ([]byte, error) {
	ordered := append([]Edit(nil), edits...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Span.Start == ordered[j].Span.Start {
			return ordered[i].Span.End > ordered[j].Span.End
		}
		return ordered[i].Span.Start > ordered[j].Span.Start
	})
	for i := 1; i < len(ordered); i++ {
		if spansConflict(ordered[i].Span, ordered[i-1].Span) {
			return nil, fmt.Errorf("%w at %s", ErrConflict, ordered[i].Span)
		}
	}

	working := append([]byte(nil), content...)
	for _, e := range ordered {
		start, end := int(e.Span.Start), int(e.Span.End)
		if start < 0 || end < start || end > len(working) {
			return nil, fmt.Errorf("rename: edit %s out of range", e.Span)
		}
		if e.OldText != "" && string(working[start:end]) != e.OldText {
			return nil, fmt.Errorf("%w at %s", ErrStale, e.Span)
		}
		suffix := append([]byte(nil), working[end:]...)
		working = append(append(working[:start], e.NewText...), suffix...)
	}
	return working, nil
}

// spansConflict treats spans as half-open; two insertions never conflict.
func spansConflict(a, b source.Span) bool {
	if a.Start == a.End && b.Start == b.End {
		return false
	}
	if a.Start == a.End {
		return b.Start <= a.Start && a.Start < b.End
	}
	if b.Start == b.End {
		return a.Start <= b.Start && b.Start < a.End
	}
	return a.Start < b.End && b.Start < a.End
}

// WriteFiles applies every group to its file on disk. Nothing is written
// when any group fails to apply.
func WriteFiles(fs *source.FileSet, groups []FileEdits) ([]FileChange, error) {
	type staged struct {
		file *source.File
		buf  []byte
		n    int
	}
	pending := make([]staged, 0, len(groups))
	for _, g := range groups {
		file := fs.Get(g.File)
		if file == nil {
			return nil, fmt.Errorf("rename: unknown file %d", g.File)
		}
		if file.Is(source.FileVirtual) {
			return nil, fmt.Errorf("rename: %s is not on disk", file.Path)
		}
		buf, err := Apply(file.Content, g.Edits)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file.Path, err)
		}
		pending = append(pending, staged{file: file, buf: buf, n: len(g.Edits)})
	}

	changes := make([]FileChange, 0, len(pending))
	for _, p := range pending {
		mode := os.FileMode(0o644)
		if info, err := os.Stat(p.file.Path); err == nil {
			mode = info.Mode()
		}
		if err := os.WriteFile(p.file.Path, p.buf, mode); err != nil {
			return changes, fmt.Errorf("write %s: %w", p.file.Path, err)
		}
		changes = append(changes, FileChange{Path: p.file.Path, EditCount: p.n})
	}
	return changes, nil
}
