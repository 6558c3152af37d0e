package driver

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"nesc/internal/binding"
	"nesc/internal/dag"
	"nesc/internal/diag"
	"nesc/internal/sema"
	"nesc/internal/source"
	"nesc/internal/trace"
)

// DirResult is the outcome of AnalyzeDir. Files is in ListSources order.
type DirResult struct {
	FileSet *source.FileSet
	Files   []FileResult
	Index   *Index
	// Order lists the units with configurations ahead of the components
	// they instantiate. Units on a cycle are missing.
	Order []string
}

// Bag merges every file's diagnostics in file order.
func (r *DirResult) Bag() *diag.Bag {
	out := diag.NewBag(0)
	for i := range r.Files {
		out.Merge(r.Files[i].Bag)
	}
	return out
}

// AnalyzeDir analyzes every source file under dir in two parallel passes:
// the first resolves files in isolation to collect their units into an
// Index, the second re-parses and resolves each file against that index
// so names from other files are checked.
func AnalyzeDir(ctx context.Context, dir string, opts Options) (*DirResult, error) {
	tracer := trace.FromContext(ctx)
	span, ctx := trace.Start(ctx, trace.ScopeDriver, "analyze-dir")

	files, err := ListSources(dir, opts.Exclude)
	if err != nil {
		span.End(err.Error())
		return nil, err
	}
	fset := source.NewFileSet()
	fset.SetBaseDir(dir)
	out := &DirResult{FileSet: fset, Files: make([]FileResult, len(files)), Index: NewIndex()}
	if len(files) == 0 {
		span.End("no sources")
		return out, nil
	}

	for _, rel := range files {
		emit(opts.Progress, Event{File: rel, Stage: StageLoad, Status: StatusQueued})
	}
	ids := make([]source.FileID, len(files))
	loaded := make([]bool, len(files))
	for i, rel := range files {
		id, err := fset.Load(filepath.Join(dir, rel))
		if err != nil {
			emit(opts.Progress, Event{File: rel, Stage: StageLoad, Status: StatusError, Err: err})
			// keep a placeholder so the diagnostic has a path to point at
			id = fset.AddVirtual(filepath.Join(dir, rel), nil)
			bag := diag.NewBag(opts.MaxDiagnostics)
			bag.Add(diag.NewError(diag.PrjIOError, source.Span{File: id}, "failed to load file: "+err.Error()))
			out.Files[i] = FileResult{Path: rel, FileID: id, Bag: bag}
		} else {
			loaded[i] = true
		}
		ids[i] = id
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	jobs = min(jobs, len(files))

	// pass 1: units per file
	units := make([][]*binding.Unit, len(files))
	indexSpan := trace.Begin(tracer, trace.ScopePass, "index", span.ID())
	emit(opts.Progress, Event{Stage: StageIndex, Status: StatusWorking})
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, rel := range files {
		if !loaded[i] {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			emit(opts.Progress, Event{File: rel, Stage: StageIndex, Status: StatusWorking})
			tree, root, _, err := ParseSource(gctx, fset, ids[i], opts.MaxDiagnostics)
			if err != nil {
				return err
			}
			res, err := sema.Resolve(gctx, tree, root, sema.Options{Reporter: diag.NopReporter{}})
			if err == nil {
				units[i] = res.Units
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		indexSpan.End(err.Error())
		span.End(err.Error())
		return nil, err
	}

	dups := make([][]diag.Diagnostic, len(files))
	for i, us := range units {
		for _, u := range us {
			if prev, dup := out.Index.Add(u); dup {
				dups[i] = append(dups[i], diag.NewError(diag.SemaDuplicateSymbol, u.Name.Span,
					fmt.Sprintf("%s %q is already defined", u.Kind, u.Name.Name)).
					WithNote(prev.Name.Span, "previous definition"))
			}
		}
	}
	out.Order = checkCycles(units, dups)
	indexSpan.End(fmt.Sprintf("%d units", out.Index.Len()))

	// pass 2: resolve against the index
	fileOpts := opts
	fileOpts.Globals = out.Index
	resolveSpan := trace.Begin(tracer, trace.ScopePass, "resolve", span.ID())
	emit(opts.Progress, Event{Stage: StageResolve, Status: StatusWorking})
	rctx := resolveSpan.Context(ctx)
	g, gctx = errgroup.WithContext(rctx)
	g.SetLimit(jobs)
	for i, rel := range files {
		if !loaded[i] {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			emit(opts.Progress, Event{File: rel, Stage: StageResolve, Status: StatusWorking})
			res, err := Analyze(gctx, fset, ids[i], fileOpts)
			if err != nil {
				emit(opts.Progress, Event{File: rel, Stage: StageResolve, Status: StatusError, Err: err})
				return err
			}
			res.Path = rel
			for _, d := range dups[i] {
				res.Bag.Add(d)
			}
			finish(res.Bag, fileOpts)
			out.Files[i] = *res
			status := StatusDone
			if res.Err != nil || res.Bag.HasErrors() {
				status = StatusError
			}
			emit(opts.Progress, Event{File: rel, Stage: StageResolve, Status: status, Err: res.Err})
			return nil
		})
	}
	err = g.Wait()
	resolveSpan.End("")
	if err != nil {
		span.End(err.Error())
		return nil, err
	}
	emit(opts.Progress, Event{Stage: StageResolve, Status: StatusDone})
	span.End(fmt.Sprintf("%d files", len(files)))
	return out, nil
}

// checkCycles reports component instantiation cycles into dups and
// returns the instantiation order.
func checkCycles(units [][]*binding.Unit, dups [][]diag.Diagnostic) []string {
	var metas []dag.UnitMeta
	var nodes []dag.UnitNode
	for i, us := range units {
		for _, u := range us {
			m := dag.MetaOf(u)
			metas = append(metas, m)
			nodes = append(nodes, dag.UnitNode{Meta: m, Reporter: sliceReporter{out: &dups[i]}})
		}
	}
	idx := dag.BuildIndex(metas)
	g, slots := dag.BuildGraph(idx, nodes)
	topo := dag.ToposortKahn(g)
	dag.ReportCycles(idx, slots, topo)

	order := make([]string, 0, len(topo.Order))
	for _, id := range topo.Order {
		order = append(order, idx.IDToName[int(id)])
	}
	return order
}

type sliceReporter struct {
	out *[]diag.Diagnostic
}

func (r sliceReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	d := diag.New(sev, code, primary, msg)
	d.Notes = notes
	*r.out = append(*r.out, d)
}
