package driver

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"nesc/internal/diag"
	"nesc/internal/inspect"
	"nesc/internal/project"
	"nesc/internal/source"
)

// bump when Export changes shape
const exportSchemaVersion uint16 = 1

// ExportCache stores the outline and diagnostics of analyzed files on
// disk, keyed by content hash. Safe for concurrent use.
type ExportCache struct {
	mu  sync.RWMutex
	dir string
}

// Export is the cached view of one file.
type Export struct {
	Schema      uint16             `msgpack:"schema"`
	Path        string             `msgpack:"path"`
	Hash        project.Digest     `msgpack:"hash"`
	Outline     []inspect.Node     `msgpack:"outline"`
	Diagnostics []CachedDiagnostic `msgpack:"diagnostics"`
}

// CachedDiagnostic is a diagnostic with file-relative spans.
type CachedDiagnostic struct {
	Severity uint8        `msgpack:"sev"`
	Code     uint16       `msgpack:"code"`
	Message  string       `msgpack:"msg"`
	Start    uint32       `msgpack:"start"`
	End      uint32       `msgpack:"end"`
	Notes    []CachedNote `msgpack:"notes,omitempty"`
}

// CachedNote keeps only notes that point into the same file.
type CachedNote struct {
	Message string `msgpack:"msg"`
	Start   uint32 `msgpack:"start"`
	End     uint32 `msgpack:"end"`
}

// OpenExportCache opens the cache under $XDG_CACHE_HOME/app, falling back
// to ~/.cache/app.
func OpenExportCache(app string) (*ExportCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenExportCacheAt(filepath.Join(base, app))
}

func OpenExportCacheAt(dir string) (*ExportCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &ExportCache{dir: dir}, nil
}

func (c *ExportCache) Dir() string { return c.dir }

// ExportKey is the cache key of f's current content.
func ExportKey(f *source.File) project.Digest {
	return project.Combine(project.Digest(f.Hash))
}

func (c *ExportCache) pathFor(key project.Digest) string {
	return filepath.Join(c.dir, "exports", key.String()+".mp")
}

// Put writes e atomically through a temp file.
func (c *ExportCache) Put(key project.Digest, e *Export) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		// already renamed on success
		_ = os.Remove(tmp)
	}()

	if err := msgpack.NewEncoder(f).Encode(e); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}

// Get reads the export for key. A missing entry or one written by another
// schema version is a miss, not an error.
func (c *ExportCache) Get(key project.Digest, out *Export) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	if out.Schema != exportSchemaVersion || out.Hash != key {
		return false, nil
	}
	return true, nil
}

// DropAll removes every cached export.
func (c *ExportCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

// NewExport builds the cacheable view of a resolved file. It returns nil
// when the file did not resolve.
func NewExport(fs *source.FileSet, r *FileResult) *Export {
	if r == nil || r.Sema == nil {
		return nil
	}
	f := fs.Get(r.FileID)
	if f == nil {
		return nil
	}
	e := &Export{
		Schema:  exportSchemaVersion,
		Path:    f.Path,
		Hash:    ExportKey(f),
		Outline: inspect.Outline(r.Tree, r.Root, r.Sema.Resolver(), r.Sema.Types),
	}
	for _, d := range r.Bag.Items() {
		if d.Primary.File != r.FileID {
			continue
		}
		cd := CachedDiagnostic{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Message:  d.Message,
			Start:    d.Primary.Start,
			End:      d.Primary.End,
		}
		for _, n := range d.Notes {
			if n.Span.File == r.FileID {
				cd.Notes = append(cd.Notes, CachedNote{Message: n.Msg, Start: n.Span.Start, End: n.Span.End})
			}
		}
		e.Diagnostics = append(e.Diagnostics, cd)
	}
	return e
}

// Restore rebinds the export to file id: spans of the outline are
// rewritten in place and the diagnostics come back as a Bag.
func (e *Export) Restore(id source.FileID) *diag.Bag {
	var rebind func(ns []inspect.Node)
	rebind = func(ns []inspect.Node) {
		for i := range ns {
			ns[i].Span.File = id
			rebind(ns[i].Children)
		}
	}
	rebind(e.Outline)

	bag := diag.NewBag(0)
	for _, cd := range e.Diagnostics {
		d := diag.New(diag.Severity(cd.Severity), diag.Code(cd.Code),
			source.Span{File: id, Start: cd.Start, End: cd.End}, cd.Message)
		for _, n := range cd.Notes {
			d = d.WithNote(source.Span{File: id, Start: n.Start, End: n.End}, n.Message)
		}
		bag.Add(d)
	}
	return bag
}
