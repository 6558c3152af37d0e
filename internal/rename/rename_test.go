package rename

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nesc/internal/ast"
	"nesc/internal/binding"
	"nesc/internal/diag"
	"nesc/internal/lexer"
	"nesc/internal/parser"
	"nesc/internal/sema"
	"nesc/internal/source"
)

func ident(name string, start uint32) binding.Identifier {
	return binding.Identifier{
		Name: name,
		Span: source.Span{File: 1, Start: start, End: start + uint32(len(name)) + 1},
	}
}

// radioConfig has the component-local names RadioC → Radio and
// TimerC → Timer and one interface alias.
func radioConfig() *binding.Unit {
	u := binding.NewUnit(binding.UnitConfiguration, ident("AppC", 14), 0)
	u.InterfaceLocalNames().Put(ident("Control", 30), "SplitControl")
	u.ComponentLocalNames().Put(ident("RadioC", 70), "Radio")
	u.ComponentLocalNames().Put(ident("TimerC", 90), "Timer")
	return u
}

func TestComponentRenameCollision(t *testing.T) {
	st := NewStatus()
	Detector{}.ComponentRename(radioConfig(), 1, "RadioC", "TimerC", st)
	entries := st.Entries()
	if len(entries) != 2 {
		t.Fatalf("Expected one linked pair, got %d entries", len(entries))
	}
	first, second := entries[0], entries[1]
	if first.Message != "You intended to rename the alias RadioC to TimerC" {
		t.Errorf("unexpected first message %q", first.Message)
	}
	if second.Message != "This would lead to a collision with this identifier: TimerC" {
		t.Errorf("unexpected second message %q", second.Message)
	}
	if first.Context.Region != (source.Region{Offset: 70, Length: 6}) {
		t.Errorf("renamed region: %s", first.Context.Region)
	}
	if second.Context.Region != (source.Region{Offset: 90, Length: 6}) {
		t.Errorf("collision region: %s", second.Context.Region)
	}
	if first.Group != second.Group || !st.HasErrors() {
		t.Errorf("pair should share a group and be errors")
	}
	ds := st.Diagnostics()
	if len(ds) != 1 || ds[0].Code != diag.RenCollision || len(ds[0].Notes) != 1 {
		t.Fatalf("Expected one diagnostic with one note, got %+v", ds)
	}
	if ds[0].Notes[0].Span.Start != 90 || ds[0].Notes[0].Span.End != 96 {
		t.Errorf("note span: %s", ds[0].Notes[0].Span)
	}
}

func TestRenameWithoutCollision(t *testing.T) {
	tests := []struct {
		name     string
		old, new string
	}{
		{"new name free", "RadioC", "LedsC"},
		{"old name absent", "Foo", "TimerC"},
		{"old name absent, free new name", "Foo", "Bar"},
		{"same name", "RadioC", "RadioC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewStatus()
			Detector{}.ComponentRename(radioConfig(), 1, tt.old, tt.new, st)
			if st.Len() != 0 {
				t.Fatalf("Expected no entries, got %+v", st.Entries())
			}
		})
	}
}

func TestCrossNamespaceCollisions(t *testing.T) {
	cfg := radioConfig()
	st := NewStatus()
	Detector{}.ComponentRename(cfg, 1, "RadioC", "Control", st)
	if st.Len() != 2 || st.Entries()[1].Context.Region.Offset != 30 {
		t.Fatalf("component alias should collide with the interface alias: %+v", st.Entries())
	}

	cfg.InterfaceLocalNames().Put(ident("TimerC", 50), "Timer")
	st = NewStatus()
	Detector{}.InterfaceRename(cfg, 1, "Control", "TimerC", st)
	if st.Len() != 4 {
		t.Fatalf("Expected a pair per namespace, got %d entries", st.Len())
	}
	groups := map[int]bool{}
	for _, e := range st.Entries() {
		groups[e.Group] = true
	}
	if len(groups) != 2 || len(st.Diagnostics()) != 2 {
		t.Errorf("Expected two groups, got %d", len(groups))
	}
}

func TestInterfaceAndVariableChecks(t *testing.T) {
	mod := binding.NewUnit(binding.UnitModule, ident("M", 7), 0)
	mod.InterfaceLocalNames().Put(ident("Timer0", 20), "Timer")
	mod.InterfaceLocalNames().Put(ident("Timer1", 40), "Timer")
	mod.ImplementationVariables().Put(ident("count", 80), "count")
	mod.ImplementationVariables().Put(ident("total", 95), "total")

	var d Detector
	st := NewStatus()
	d.NewInterfaceNameWithLocalInterfaceName(mod, 1, "Timer0", "Timer1", st)
	d.NewInterfaceNameWithLocalInterfaceName(mod, 1, "Missing", "Timer1", st)
	d.NewNameWithLocalInterfaceName(mod, 1, binding.Identifier{}, "Timer1", st)
	if st.Len() != 2 {
		t.Fatalf("Expected one pair, got %d entries", st.Len())
	}
	st = NewStatus()
	d.VariableRename(mod, 1, "count", "total", st)
	d.VariableRename(mod, 1, "count", "other", st)
	if st.Len() != 2 || !strings.Contains(st.Entries()[0].Message, "count to total") {
		t.Fatalf("unexpected variable rename status %+v", st.Entries())
	}
}

func TestStatusWarnings(t *testing.T) {
	st := NewStatus()
	st.AddWarning(diag.RenInfo, "heads up", Context{})
	if st.HasErrors() || st.Len() != 1 {
		t.Fatalf("warnings are not errors")
	}
	st.AddError(diag.RenInvalidName, "bad", Context{})
	if !st.HasErrors() || len(st.Diagnostics()) != 2 {
		t.Fatalf("separate entries should stay separate diagnostics")
	}
}

func resolve(t *testing.T, input string) (*sema.Result, *source.FileSet) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "App.nc")
	if err := os.WriteFile(path, []byte(input), 0o644); err != nil {
		t.Fatal(err)
	}
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	bag := diag.NewBag(32)
	rep := diag.BagReporter{Bag: bag}
	lx := lexer.New(fs.Get(fileID), lexer.Options{Reporter: rep})
	pr := parser.ParseFile(fs, lx, ast.NewTree(fileID, nil), parser.Options{Reporter: rep})
	if bag.Len() != 0 {
		t.Fatalf("syntax errors: %s", bag.Items()[0].Message)
	}
	res, err := sema.Resolve(context.Background(), pr.Tree, pr.Root, sema.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return res, fs
}

func findIdent(res *sema.Result, name string, nth int) ast.NodeID {
	for _, id := range ast.Collect(res.Tree, res.Tree.Root(), ast.KindIdent) {
		if res.Tree.Name(id) == name {
			if nth == 0 {
				return id
			}
			nth--
		}
	}
	return ast.NoNodeID
}

const appConfig = `configuration AppC {}
implementation {
  components MainC, new TimerMilliC() as T, new TimerMilliC() as Other;
  MainC.Boot -> T;
  T.Timer -> MainC;
}
`

func TestPlanComponentAlias(t *testing.T) {
	res, fs := resolve(t, appConfig)
	node := findIdent(res, "T", 1)
	sel := Select(res, node)
	if sel.Kind != SelectComponentAlias || !CanRename(SelectComponentAlias, sel) {
		t.Fatalf("Expected a renameable component alias, got %s", sel.Kind)
	}
	edits, st := Plan(res, node, "Tick")
	if st.HasErrors() {
		t.Fatalf("unexpected errors %+v", st.Entries())
	}
	if len(edits) != 3 {
		t.Fatalf("Expected declaration and two references, got %d edits", len(edits))
	}
	groups := Group(edits)
	if len(groups) != 1 {
		t.Fatalf("Expected one file, got %d", len(groups))
	}
	changes, err := WriteFiles(fs, groups)
	if err != nil || len(changes) != 1 || changes[0].EditCount != 3 {
		t.Fatalf("write failed: %v %+v", err, changes)
	}
	got, _ := os.ReadFile(fs.Get(res.Tree.File).Path)
	want := strings.ReplaceAll(appConfig, "as T,", "as Tick,")
	want = strings.ReplaceAll(want, "-> T;", "-> Tick;")
	want = strings.ReplaceAll(want, "  T.Timer", "  Tick.Timer")
	if string(got) != want {
		t.Fatalf("unexpected result:\n%s", got)
	}
}

func TestPlanRejects(t *testing.T) {
	res, _ := resolve(t, appConfig)
	tests := []struct {
		name    string
		node    ast.NodeID
		newName string
		code    diag.Code
	}{
		{"collision", findIdent(res, "T", 0), "Other", diag.RenCollision},
		{"plain component", findIdent(res, "MainC", 0), "Main", diag.RenNotAvailable},
		{"keyword", findIdent(res, "T", 0), "while", diag.RenInvalidName},
		{"not an identifier", findIdent(res, "T", 0), "9lives", diag.RenInvalidName},
		{"not normalized", findIdent(res, "T", 0), "Café", diag.RenInvalidName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edits, st := Plan(res, tt.node, tt.newName)
			if edits != nil {
				t.Fatalf("Expected no edits, got %d", len(edits))
			}
			if !st.HasErrors() || st.Entries()[0].Code != tt.code {
				t.Fatalf("Expected %v, got %+v", tt.code, st.Entries())
			}
		})
	}
}

func TestPlanVariables(t *testing.T) {
	res, _ := resolve(t, `module M {} implementation {
  int count;
  int total;
  void f() { int n = count; n++; }
  void g() { int m; m = 0; }
}
`)
	count := findIdent(res, "count", 0)
	if _, st := Plan(res, count, "total"); !st.HasErrors() {
		t.Fatalf("implementation variables should collide")
	}
	if _, st := Plan(res, count, "n"); !st.HasErrors() {
		t.Fatalf("a local of a function using count would capture it")
	}
	if edits, st := Plan(res, count, "m"); st.HasErrors() || len(edits) != 2 {
		t.Fatalf("m is local to a function that does not use count: %+v", st.Entries())
	}
	n := findIdent(res, "n", 0)
	if _, st := Plan(res, n, "m"); st.HasErrors() {
		t.Fatalf("locals of different functions do not collide")
	}
	edits, st := Plan(res, n, "count")
	if !st.HasErrors() || edits != nil {
		t.Fatalf("local renamed to an implementation variable should collide")
	}
}

func TestApplyDetectsProblems(t *testing.T) {
	content := []byte("abc def")
	_, err := Apply(content, []Edit{
		{Span: source.Span{Start: 0, End: 3}, NewText: "x"},
		{Span: source.Span{Start: 2, End: 5}, NewText: "y"},
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("Expected ErrConflict, got %v", err)
	}
	_, err = Apply(content, []Edit{{Span: source.Span{Start: 4, End: 7}, OldText: "xyz", NewText: "q"}})
	if !errors.Is(err, ErrStale) {
		t.Fatalf("Expected ErrStale, got %v", err)
	}
	out, err := Apply(content, []Edit{
		{Span: source.Span{Start: 0, End: 3}, OldText: "abc", NewText: "alpha"},
		{Span: source.Span{Start: 4, End: 7}, OldText: "def", NewText: "d"},
	})
	if err != nil || string(out) != "alpha d" {
		t.Fatalf("Expected %q, got %q (%v)", "alpha d", out, err)
	}
}
