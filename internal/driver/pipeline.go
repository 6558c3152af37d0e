// Package driver runs the frontend and the resolution pass over files and
// directories and caches what the CLI prints.
package driver

import (
	"context"
	"fmt"

	"fortio.org/safecast"

	"nesc/internal/ast"
	"nesc/internal/diag"
	"nesc/internal/lexer"
	"nesc/internal/observ"
	"nesc/internal/parser"
	"nesc/internal/sema"
	"nesc/internal/source"
	"nesc/internal/trace"
)

type Options struct {
	MaxDiagnostics   int
	WarningsAsErrors bool
	// Globals resolves units of other files. AnalyzeDir fills it itself.
	Globals sema.Globals
	Timings bool
	// Jobs bounds AnalyzeDir's parallelism; GOMAXPROCS when <= 0.
	Jobs    int
	Exclude []string
	// Progress receives AnalyzeDir's per-file events when set.
	Progress ProgressSink
}

// FileResult is the outcome for one file. Sema is nil when the resolve
// pass faulted; Err then holds the fault.
type FileResult struct {
	Path   string
	FileID source.FileID
	Tree   *ast.Tree
	Root   ast.NodeID
	Sema   *sema.Result
	Bag    *diag.Bag
	Timing *observ.Report
	Err    error
}

// ParseSource lexes and parses one file of fs.
func ParseSource(ctx context.Context, fs *source.FileSet, id source.FileID, maxDiagnostics int) (*ast.Tree, ast.NodeID, *diag.Bag, error) {
	file := fs.Get(id)
	if file == nil {
		return nil, ast.NoNodeID, nil, fmt.Errorf("driver: unknown file id %d", id)
	}
	maxErrors, err := safecast.Conv[uint](max(maxDiagnostics, 0))
	if err != nil {
		return nil, ast.NoNodeID, nil, err
	}

	span, _ := trace.Start(ctx, trace.ScopePass, "parse")
	bag := diag.NewBag(maxDiagnostics)
	rep := &diag.BagReporter{Bag: bag}
	lx := lexer.New(file, lexer.Options{Reporter: rep})
	tree := ast.NewTree(id, nil)
	res := parser.ParseFile(fs, lx, tree, parser.Options{Reporter: rep, MaxErrors: maxErrors})
	span.End(fmt.Sprintf("%d nodes", tree.Len()))
	return res.Tree, res.Root, bag, nil
}

// Analyze parses and resolves a file already loaded into fs.
func Analyze(ctx context.Context, fs *source.FileSet, id source.FileID, opts Options) (*FileResult, error) {
	file := fs.Get(id)
	if file == nil {
		return nil, fmt.Errorf("driver: unknown file id %d", id)
	}
	tracer := trace.FromContext(ctx)
	span, ctx := trace.Start(ctx, trace.ScopeFile, "file:"+file.Path)

	var timer *observ.Timer
	if opts.Timings {
		timer = observ.NewTimer()
	}

	out := &FileResult{Path: file.Path, FileID: id}
	var err error
	idx := timer.Begin("parse")
	out.Tree, out.Root, out.Bag, err = ParseSource(ctx, fs, id, opts.MaxDiagnostics)
	if err != nil {
		span.End(err.Error())
		return nil, err
	}
	timer.End(idx, fmt.Sprintf("%d nodes", out.Tree.Len()))

	idx = timer.Begin("resolve")
	out.Sema, out.Err = sema.Resolve(ctx, out.Tree, out.Root, sema.Options{
		Globals:        opts.Globals,
		MaxDiagnostics: opts.MaxDiagnostics,
	})
	if out.Sema != nil {
		out.Bag.Merge(out.Sema.Bag)
		timer.End(idx, fmt.Sprintf("%d units, %d bindings", len(out.Sema.Units), out.Sema.Bindings.Len()))
	} else {
		timer.End(idx, "fault")
	}
	finish(out.Bag, opts)

	if timer != nil {
		report := timer.Report()
		out.Timing = &report
	}
	detail := fmt.Sprintf("%d diagnostics", out.Bag.Len())
	if out.Err != nil {
		detail = out.Err.Error()
		trace.Point(tracer, trace.ScopeFile, "fault", detail, span.ID())
	}
	span.End(detail)
	return out, nil
}

// AnalyzeFile loads path into fs and analyzes it.
func AnalyzeFile(ctx context.Context, fs *source.FileSet, path string, opts Options) (*FileResult, error) {
	id, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	return Analyze(ctx, fs, id, opts)
}

func finish(bag *diag.Bag, opts Options) {
	if opts.WarningsAsErrors {
		bag.Promote()
	}
	bag.Dedup()
	bag.Sort()
}
