package sema_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"nesc/internal/ast"
	"nesc/internal/binding"
	"nesc/internal/diag"
	"nesc/internal/lexer"
	"nesc/internal/parser"
	"nesc/internal/sema"
	"nesc/internal/source"
	"nesc/internal/tags"
)

func parseTree(t *testing.T, input string) (*ast.Tree, ast.NodeID) {
	t.Helper()
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.nc", []byte(input))
	bag := diag.NewBag(64)
	rep := diag.BagReporter{Bag: bag}
	lx := lexer.New(fs.Get(fileID), lexer.Options{Reporter: rep})
	res := parser.ParseFile(fs, lx, ast.NewTree(fileID, nil), parser.Options{Reporter: rep})
	if bag.Len() != 0 {
		t.Fatalf("unexpected syntax diagnostics: %s", bag.Items()[0].Message)
	}
	return res.Tree, res.Root
}

func resolveSource(t *testing.T, input string, opts sema.Options) *sema.Result {
	t.Helper()
	tree, root := parseTree(t, input)
	res, err := sema.Resolve(context.Background(), tree, root, opts)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	return res
}

func codes(bag *diag.Bag) []diag.Code {
	var out []diag.Code
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func hasCode(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

// idents returns the identifiers spelled name, in source order.
func idents(tree *ast.Tree, name string) []ast.NodeID {
	var out []ast.NodeID
	for _, id := range ast.Collect(tree, tree.Root(), ast.KindIdent) {
		if tree.Name(id) == name {
			out = append(out, id)
		}
	}
	return out
}

func localNames(tb *binding.Table) string {
	var parts []string
	for _, e := range tb.Entries() {
		parts = append(parts, e.Local.Name+"="+e.Global)
	}
	return strings.Join(parts, ",")
}

const blinkModule = `
module BlinkC {
  uses interface Timer<TMilli> as Timer0;
  uses interface Leds;
  uses interface Boot;
}
implementation {
  uint8_t counter = 0;
  event void Boot.booted() {
    call Timer0.startPeriodic(250);
  }
  event void Timer0.fired() {
    counter++;
    call Leds.set(counter);
  }
}
`

func TestResolveModule(t *testing.T) {
	res := resolveSource(t, blinkModule, sema.Options{})
	if res.Bag.HasErrors() {
		t.Fatalf("unexpected diagnostics %v", codes(res.Bag))
	}
	u, ok := res.Unit("BlinkC")
	if !ok || u.Kind != binding.UnitModule {
		t.Fatalf("module unit missing")
	}
	if got := localNames(u.InterfaceLocalNames()); got != "Timer0=Timer,Leds=Leds,Boot=Boot" {
		t.Errorf("unexpected interface table %s", got)
	}
	if got := localNames(u.ImplementationVariables()); got != "counter=counter" {
		t.Errorf("unexpected variables %s", got)
	}
	if got := localNames(u.Functions()); got != "booted=Boot.booted,fired=Timer0.fired" {
		t.Errorf("unexpected functions %s", got)
	}

	tree := res.Tree
	uses := idents(tree, "counter")
	if len(uses) != 3 {
		t.Fatalf("Expected 3 occurrences of counter, got %d", len(uses))
	}
	decl, ref := uses[0], uses[1]
	if !tree.Tags(decl).ContainsAll(tags.Of(tags.Declaration, tags.Variable, tags.Local)) {
		t.Errorf("declaration tags: %s", tree.Tags(decl))
	}
	if !tree.Tags(ref).ContainsAll(tags.Of(tags.Reference, tags.Variable, tags.Local)) {
		t.Errorf("reference tags: %s", tree.Tags(ref))
	}
	b, ok := res.Bindings.BindingOf(ref)
	if !ok || b.Decl.Node != decl {
		t.Fatalf("reference not bound to its declaration")
	}
	if got := res.Types.String(tree.Type(ref)); got != "uint8_t" {
		t.Errorf("Expected uint8_t, got %s", got)
	}

	booted := idents(tree, "booted")[0]
	if !tree.Tags(booted).ContainsAll(tags.Of(tags.Definition, tags.Function, tags.Event)) {
		t.Errorf("event definition tags: %s", tree.Tags(booted))
	}
	timer := idents(tree, "Timer")[0]
	if !tree.HasTag(timer, tags.Unresolved) {
		t.Errorf("interface from another file should be tagged unresolved")
	}
	alias := idents(tree, "Timer0")
	if len(alias) != 3 || !tree.HasTag(alias[0], tags.Alias) || !tree.HasTag(alias[1], tags.Interface) {
		t.Errorf("alias declaration and uses not tagged")
	}
	for _, id := range ast.Collect(tree, tree.Root(), ast.KindInvoke) {
		if !tree.HasTag(id, tags.Command) {
			t.Errorf("call invocation should carry the command tag")
		}
	}
}

func TestResolveConfiguration(t *testing.T) {
	res := resolveSource(t, `
module BlinkC { uses interface Boot; uses interface Leds; }
implementation {}
configuration BlinkAppC {}
implementation {
  components MainC, BlinkC, LedsC;
  components new TimerMilliC() as Timer0;
  BlinkC -> MainC.Boot;
  BlinkC.Leds -> LedsC;
  BlinkC.Radio -> Timer0;
}
`, sema.Options{})
	cfg, ok := res.Unit("BlinkAppC")
	if !ok || cfg.Kind != binding.UnitConfiguration {
		t.Fatalf("configuration unit missing")
	}
	if got := localNames(cfg.ComponentLocalNames()); got != "MainC=MainC,BlinkC=BlinkC,LedsC=LedsC,Timer0=TimerMilliC" {
		t.Errorf("unexpected component table %s", got)
	}
	tree := res.Tree
	leds := idents(tree, "Leds")
	wired := leds[len(leds)-1]
	b, ok := res.Bindings.BindingOf(wired)
	if !ok || b.Namespace != binding.NSInterfaceLocal || b.Unit != "BlinkC" {
		t.Fatalf("wired interface not bound to BlinkC's specification: %+v", b)
	}
	blink := idents(tree, "BlinkC")
	if b, ok := res.Bindings.BindingOf(blink[2]); !ok || b.Namespace != binding.NSComponentLocal {
		t.Errorf("endpoint component not bound to the components clause")
	}
	radio := idents(tree, "Radio")[0]
	if !tree.HasTag(radio, tags.Unresolved) || !hasCode(res.Bag, diag.SemaBadWiring) {
		t.Errorf("unknown interface of a known component should be reported")
	}
	if got := len(res.Bag.Items()); got != 1 {
		t.Errorf("Expected exactly one diagnostic, got %v", codes(res.Bag))
	}
}

func TestUnknownEndpoint(t *testing.T) {
	res := resolveSource(t, `
configuration C {}
implementation {
  components MainC;
  Foo -> MainC.Boot;
}
`, sema.Options{})
	if !hasCode(res.Bag, diag.SemaBadWiring) {
		t.Fatalf("Expected SemaBadWiring, got %v", codes(res.Bag))
	}
}

type globals map[string]*binding.Unit

func (g globals) Unit(name string) (*binding.Unit, bool) {
	u, ok := g[name]
	return u, ok
}

func TestUnknownUnitsNeedGlobals(t *testing.T) {
	src := `module M { uses interface Missing; } implementation {}`
	quiet := resolveSource(t, src, sema.Options{})
	if quiet.Bag.Len() != 0 {
		t.Fatalf("without a global view unknown interfaces are not errors: %v", codes(quiet.Bag))
	}
	loud := resolveSource(t, src, sema.Options{Globals: globals{}})
	if !hasCode(loud.Bag, diag.SemaUnknownInterface) {
		t.Fatalf("Expected SemaUnknownInterface, got %v", codes(loud.Bag))
	}

	known := globals{"Missing": binding.NewUnit(binding.UnitInterface, binding.Identifier{Name: "Missing"}, 0)}
	res := resolveSource(t, src, sema.Options{Globals: known})
	if res.Bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics %v", codes(res.Bag))
	}
	if id := idents(res.Tree, "Missing")[0]; !res.Tree.HasTag(id, tags.Global) {
		t.Errorf("interface from the global view should be tagged global")
	}
}

func TestWrongUnitKind(t *testing.T) {
	res := resolveSource(t, `
module A {} implementation {}
module B { uses interface A; } implementation {}
`, sema.Options{})
	if !hasCode(res.Bag, diag.SemaUnknownInterface) {
		t.Fatalf("a module used as an interface should be reported, got %v", codes(res.Bag))
	}
}

func TestUndeclaredAndForwardReferences(t *testing.T) {
	res := resolveSource(t, `
module M {} implementation {
  void f() { g(); missing = 1; post work(); }
  void g() {}
  task void work() { return; }
}
`, sema.Options{})
	tree := res.Tree
	g := idents(tree, "g")
	if b, ok := res.Bindings.BindingOf(g[0]); !ok || b.Decl.Node != g[1] {
		t.Errorf("forward reference to g not resolved")
	}
	work := idents(tree, "work")
	if tree.HasTag(work[0], tags.Unresolved) {
		t.Errorf("posted task should resolve")
	}
	if !tree.HasTag(work[1], tags.Task) {
		t.Errorf("task definition should be tagged")
	}
	missing := idents(tree, "missing")[0]
	if !tree.HasTag(missing, tags.Unresolved) {
		t.Errorf("missing should be unresolved")
	}
	if got := codes(res.Bag); len(got) != 1 || got[0] != diag.SemaUnresolvedSymbol {
		t.Errorf("Expected one SemaUnresolvedSymbol, got %v", got)
	}
}

func TestPredeclaredConstants(t *testing.T) {
	res := resolveSource(t, `error_t f() { return SUCCESS; }`, sema.Options{})
	if res.Bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics %v", codes(res.Bag))
	}
	if id := idents(res.Tree, "SUCCESS")[0]; !res.Tree.HasTag(id, tags.Constant) {
		t.Errorf("SUCCESS should be a constant")
	}
}

func TestDuplicateNames(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"interface alias", "module M { uses interface Leds; uses interface Timer as Leds; } implementation {}"},
		{"component alias", "configuration C {} implementation { components A, B as A; }"},
		{"variable", "module M {} implementation { int x; int x; }"},
		{"unit", "module M {} implementation {} module M {} implementation {}"},
		{"parameter", "void f(int a, int a) {}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := resolveSource(t, tt.input, sema.Options{})
			if !hasCode(res.Bag, diag.SemaDuplicateSymbol) {
				t.Fatalf("Expected SemaDuplicateSymbol, got %v", codes(res.Bag))
			}
			d := res.Bag.Items()[0]
			if len(d.Notes) != 1 {
				t.Errorf("duplicate should point at the previous declaration")
			}
		})
	}
}

func TestFunctionPrototypeThenDefinition(t *testing.T) {
	res := resolveSource(t, `
module M {} implementation {
  void f(void);
  void f(void) {}
}
`, sema.Options{})
	if res.Bag.Len() != 0 {
		t.Fatalf("prototype followed by definition is not a duplicate: %v", codes(res.Bag))
	}
}

func TestShadowWarning(t *testing.T) {
	res := resolveSource(t, `
module M {} implementation {
  int n;
  void f() { int n; n = 1; }
}
`, sema.Options{})
	if !hasCode(res.Bag, diag.SemaShadowSymbol) || res.Bag.HasErrors() {
		t.Fatalf("Expected a shadow warning only, got %v", codes(res.Bag))
	}
	ns := idents(res.Tree, "n")
	if b, _ := res.Bindings.BindingOf(ns[2]); b.Decl.Node != ns[1] {
		t.Errorf("inner reference should bind the inner declaration")
	}
}

func TestQualifiedNameNeedsInterface(t *testing.T) {
	res := resolveSource(t, `
module M { uses interface Boot; } implementation {
  event void Boot.booted() {}
  event void Radio.done() {}
}
`, sema.Options{})
	if got := codes(res.Bag); len(got) != 1 || got[0] != diag.SemaUnknownInterface {
		t.Fatalf("Expected one SemaUnknownInterface, got %v", got)
	}
}

func TestMemberAccess(t *testing.T) {
	res := resolveSource(t, `
struct point { int x; uint8_t y; };
void f(struct point *p) {
  p->y = 1;
  p->z = 2;
}
`, sema.Options{})
	tree := res.Tree
	members := ast.Collect(tree, tree.Root(), ast.KindMember)
	if got := res.Types.String(tree.Type(members[0])); got != "uint8_t" {
		t.Errorf("Expected uint8_t, got %s", got)
	}
	if !hasCode(res.Bag, diag.SemaUnknownField) {
		t.Errorf("Expected SemaUnknownField, got %v", codes(res.Bag))
	}
	if !tree.HasTag(idents(tree, "z")[0], tags.Unresolved) {
		t.Errorf("unknown field should be tagged unresolved")
	}
}

func TestEnumConstants(t *testing.T) {
	res := resolveSource(t, `
enum color { RED, GREEN = 4 };
int f() { return GREEN; }
`, sema.Options{})
	if res.Bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics %v", codes(res.Bag))
	}
	tree := res.Tree
	green := idents(tree, "GREEN")
	if !tree.HasTag(green[0], tags.Constant) {
		t.Errorf("enumerator should be a constant")
	}
	if got := res.Types.String(tree.Type(green[1])); got != "enum color" {
		t.Errorf("Expected enum color, got %s", got)
	}
}

func TestTypedefResolution(t *testing.T) {
	res := resolveSource(t, `
typedef struct { int a; } cfg_t;
cfg_t current;
mystery_t other;
`, sema.Options{})
	tree := res.Tree
	cur, ok := res.Bindings.BindingOf(idents(tree, "current")[0])
	if !ok {
		t.Fatalf("current has no binding")
	}
	if got := res.Types.String(cur.Type); got != "struct" {
		t.Errorf("Expected anonymous struct, got %s", got)
	}
	use := ast.Collect(tree, tree.Root(), ast.KindTypeName)[1]
	if tree.Name(use) != "cfg_t" || !tree.HasTag(use, tags.TypeTag) {
		t.Errorf("typedef use should be tagged as a type reference")
	}
	if !hasCode(res.Bag, diag.SemaUnknownType) || res.Bag.HasErrors() {
		t.Errorf("unknown type name should be a warning, got %v", codes(res.Bag))
	}
}

func TestCastAndSizeof(t *testing.T) {
	res := resolveSource(t, `
void f(void *buf) {
  uint16_t *w = (uint16_t*)buf;
  int n = sizeof(message_t);
}
`, sema.Options{})
	tree := res.Tree
	casts := ast.Collect(tree, tree.Root(), ast.KindCast)
	if got := res.Types.String(tree.Type(casts[0])); got != "uint16_t*" {
		t.Errorf("Expected uint16_t*, got %s", got)
	}
	sz := ast.Collect(tree, tree.Root(), ast.KindSizeof)
	if got := res.Types.String(tree.Type(sz[0])); got != "size_t" {
		t.Errorf("Expected size_t, got %s", got)
	}
}

func TestBinaryTypes(t *testing.T) {
	res := resolveSource(t, `
void f(uint8_t x, uint8_t y) {
  int a = x < y;
  int b = x && y;
  int c = x + y;
}
`, sema.Options{})
	tree := res.Tree
	bins := ast.Collect(tree, tree.Root(), ast.KindBinary)
	want := []string{"int", "int", "uint8_t"}
	if len(bins) != len(want) {
		t.Fatalf("Expected %d binary expressions, got %d", len(want), len(bins))
	}
	for i, id := range bins {
		if got := res.Types.String(tree.Type(id)); got != want[i] {
			t.Errorf("%s: Expected %s, got %s", tree.Op(id), want[i], got)
		}
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	inputs := []string{blinkModule, `
typedef struct { int a; uint8_t b[2]; } pair_t;
pair_t p = { .a = 1, .b = { [0] = 2, [1] = 3 } };
configuration C {} implementation { components A as X; X.I -> Y; }
`}
	for _, input := range inputs {
		first := resolveSource(t, input, sema.Options{})
		second := resolveSource(t, input, sema.Options{})
		if first.Tree.Len() != second.Tree.Len() {
			t.Fatalf("trees differ in size")
		}
		for i := 1; i <= first.Tree.Len(); i++ {
			id := ast.NodeID(i)
			if !first.Tree.Tags(id).Equal(second.Tree.Tags(id)) {
				t.Fatalf("node %d: tags %s vs %s", i, first.Tree.Tags(id), second.Tree.Tags(id))
			}
			a := first.Types.String(first.Tree.Type(id))
			b := second.Types.String(second.Tree.Type(id))
			if a != b {
				t.Fatalf("node %d: type %s vs %s", i, a, b)
			}
		}
		if got, want := codes(first.Bag), codes(second.Bag); len(got) != len(want) {
			t.Fatalf("diagnostics differ: %v vs %v", got, want)
		}
	}
}

func TestResolveSealsTree(t *testing.T) {
	res := resolveSource(t, blinkModule, sema.Options{})
	if !res.Tree.Sealed() {
		t.Fatalf("tree should be sealed after resolution")
	}
	_, err := sema.Resolve(context.Background(), res.Tree, res.Tree.Root(), sema.Options{})
	var re *ast.ResolveError
	if !errors.As(err, &re) {
		t.Fatalf("second pass should fail with *ast.ResolveError, got %v", err)
	}
}

func TestStructuralFaultBecomesError(t *testing.T) {
	tree := ast.NewTree(0, nil)
	root := tree.New(ast.KindFile, source.Span{})
	bad := tree.New(ast.KindInvalid, source.Span{})
	tree.Get(root).Children = append(tree.Get(root).Children, bad)
	tree.SetRoot(root)
	res, err := sema.Resolve(context.Background(), tree, root, sema.Options{})
	if res != nil || err == nil {
		t.Fatalf("Expected an error for a node without a resolution rule")
	}
	var re *ast.ResolveError
	if !errors.As(err, &re) || re.Kind != ast.KindInvalid {
		t.Fatalf("Expected *ast.ResolveError for Invalid, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "sema: resolve File") {
		t.Errorf("error should name the pass: %v", err)
	}
}

func TestDesignatorTypes(t *testing.T) {
	res := resolveSource(t, `
typedef struct { int a; uint8_t b[2]; } pair_t;
pair_t p = { .a = 1, .b = { [0] = 2, [1] = 3 } };
`, sema.Options{})
	if res.Bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics %v", codes(res.Bag))
	}
	tree := res.Tree
	lists := ast.Collect(tree, tree.Root(), ast.KindDesignatorList)
	want := []string{"int", "uint8_t[2]", "uint8_t", "uint8_t"}
	if len(lists) != len(want) {
		t.Fatalf("Expected %d designator lists, got %d", len(want), len(lists))
	}
	for i, id := range lists {
		if got := res.Types.String(tree.Type(id)); got != want[i] {
			t.Errorf("list %d: Expected %s, got %s", i, want[i], got)
		}
		if !tree.HasTag(id, tags.Designator) {
			t.Errorf("list %d not tagged as designator", i)
		}
	}
	field := idents(tree, "a")
	if !tree.Tags(field[1]).ContainsAll(tags.Of(tags.Reference, tags.Field, tags.Designator)) {
		t.Errorf("field designator tags: %s", tree.Tags(field[1]))
	}
}

func TestDesignatorErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  diag.Code
	}{
		{"unknown field", "struct s { int a; }; struct s v = { .z = 1 };", diag.SemaUnknownField},
		{"index out of range", "uint8_t v[2] = { [2] = 1 };", diag.SemaIndexOutOfRange},
		{"field on scalar", "int v = { .a = 1 };", diag.SemaDesignatorNoField},
		{"index on struct", "struct s { int a; }; struct s v = { [0] = 1 };", diag.SemaDesignatorNoArray},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := resolveSource(t, tt.input, sema.Options{})
			if got := codes(res.Bag); len(got) != 1 || got[0] != tt.code {
				t.Fatalf("Expected [%v], got %v", tt.code, got)
			}
		})
	}
}

func TestUnknownDesignatorBaseIsQuiet(t *testing.T) {
	res := resolveSource(t, "remote_t v = { .x = 1, .y = { [3] = 2 } };", sema.Options{})
	for _, d := range res.Bag.Items() {
		if d.Code != diag.SemaUnknownType {
			t.Fatalf("designators on an unknown type should not be reported, got %v", d.Code)
		}
	}
}
