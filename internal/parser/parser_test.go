package parser

import (
	"strings"
	"testing"

	"nesc/internal/ast"
	"nesc/internal/diag"
	"nesc/internal/lexer"
	"nesc/internal/source"
)

func parseSource(t *testing.T, input string) (*ast.Tree, ast.NodeID, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.nc", []byte(input))
	bag := diag.NewBag(64)
	rep := diag.BagReporter{Bag: bag}
	lx := lexer.New(fs.Get(fileID), lexer.Options{Reporter: rep})
	tree := ast.NewTree(fileID, nil)
	res := ParseFile(fs, lx, tree, Options{Reporter: rep})
	return res.Tree, res.Root, bag
}

func mustParse(t *testing.T, input string) (*ast.Tree, ast.NodeID) {
	t.Helper()
	tree, root, bag := parseSource(t, input)
	if bag.Len() != 0 {
		var msgs []string
		for _, d := range bag.Items() {
			msgs = append(msgs, d.Code.ID()+" "+d.Message)
		}
		t.Fatalf("unexpected diagnostics:\n%s", strings.Join(msgs, "\n"))
	}
	return tree, root
}

// dump renders the tree as Kind(children) with leaf names and ops, e.g.
// Binary[+](Ident:a,IntLit:1).
func dump(tree *ast.Tree, id ast.NodeID) string {
	var sb strings.Builder
	sb.WriteString(tree.Kind(id).String())
	if op := tree.Op(id); op != "" {
		sb.WriteString("[" + op + "]")
	}
	if name := tree.Name(id); name != "" {
		sb.WriteString(":" + name)
	}
	if ch := tree.Children(id); len(ch) > 0 {
		sb.WriteString("(")
		for i, c := range ch {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(dump(tree, c))
		}
		sb.WriteString(")")
	}
	return sb.String()
}

func TestParseInterfaceTrailingSemicolon(t *testing.T) {
	for _, src := range []string{"interface Boot { event void booted(); }", "interface Boot { event void booted(); };"} {
		tree, root := mustParse(t, src)
		if items := tree.Children(root); len(items) != 1 || tree.Kind(items[0]) != ast.KindInterfaceDef {
			t.Errorf("%q: Expected one InterfaceDef, got %s", src, dump(tree, root))
		}
	}
}

func TestParseInterface(t *testing.T) {
	tree, root := mustParse(t, `
interface Timer<precision_tag> {
  command void startPeriodic(uint32_t dt);
  event void fired();
}
`)
	items := tree.Children(root)
	if len(items) != 1 || tree.Kind(items[0]) != ast.KindInterfaceDef {
		t.Fatalf("Expected one InterfaceDef, got %s", dump(tree, root))
	}
	if tree.Op(items[0]) != "generic" {
		t.Errorf("type parameters should mark the interface generic")
	}
	body := tree.Child(items[0], 1)
	if got := tree.NumChildren(body); got != 2 {
		t.Fatalf("Expected 2 declarations, got %d", got)
	}
	want := "Declaration(DeclSpecs(Modifier:command,TypeName:void),InitDeclaratorList(InitDeclarator(Declarator(Ident:startPeriodic,ParamList(ParamDecl(DeclSpecs(TypeName:uint32_t),Declarator(Ident:dt)))))))"
	if got := dump(tree, tree.Child(body, 0)); got != want {
		t.Errorf("Expected %s\ngot      %s", want, got)
	}
}

func TestParseModule(t *testing.T) {
	tree, root := mustParse(t, `
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
`)
	mod := tree.Child(root, 0)
	if tree.Kind(mod) != ast.KindModule {
		t.Fatalf("Expected Module, got %s", tree.Kind(mod))
	}
	spec := tree.Child(mod, 1)
	if got := tree.NumChildren(spec); got != 3 {
		t.Fatalf("Expected 3 uses clauses, got %d", got)
	}
	ref := tree.Child(tree.Child(spec, 0), 0)
	if got := dump(tree, ref); got != "InterfaceRef(Ident:Timer,Ident:Timer0)" {
		t.Errorf("unexpected interface ref %s", got)
	}
	impl := tree.Child(mod, 2)
	defs := tree.ChildrenOf(impl, ast.KindFunctionDef)
	if len(defs) != 2 {
		t.Fatalf("Expected 2 function definitions, got %d", len(defs))
	}
	decl := tree.Child(defs[0], 1)
	if got := dump(tree, tree.Child(decl, 0)); got != "QualifiedName(Ident:Boot,Ident:booted)" {
		t.Errorf("Expected qualified name, got %s", got)
	}
	invokes := ast.Collect(tree, impl, ast.KindInvoke)
	if len(invokes) != 2 || tree.Op(invokes[0]) != "call" {
		t.Fatalf("Expected 2 call invocations, got %d", len(invokes))
	}
	if got := dump(tree, invokes[0]); got != "Invoke[call](Call(Member[.](Ident:Timer0,Ident:startPeriodic),ArgList(IntLit:250)))" {
		t.Errorf("unexpected invoke %s", got)
	}
}

func TestParseConfiguration(t *testing.T) {
	tree, root := mustParse(t, `
configuration BlinkAppC {}
implementation {
  components MainC, BlinkC, LedsC;
  components new TimerMilliC() as Timer0;
  BlinkC -> MainC.Boot;
  BlinkC.Timer0 -> Timer0;
  BlinkC.Leds -> LedsC;
}
`)
	cfg := tree.Child(root, 0)
	if tree.Kind(cfg) != ast.KindConfiguration {
		t.Fatalf("Expected Configuration, got %s", tree.Kind(cfg))
	}
	wiring := tree.Child(cfg, 2)
	lists := tree.ChildrenOf(wiring, ast.KindComponentList)
	if len(lists) != 2 {
		t.Fatalf("Expected 2 component lists, got %d", len(lists))
	}
	if got := dump(tree, tree.Child(lists[1], 0)); got != "ComponentRef[new](Ident:TimerMilliC,ArgList,Ident:Timer0)" {
		t.Errorf("unexpected generic instance %s", got)
	}
	conns := tree.ChildrenOf(wiring, ast.KindConnection)
	if len(conns) != 3 {
		t.Fatalf("Expected 3 connections, got %d", len(conns))
	}
	if got := dump(tree, conns[1]); got != "Connection[->](Endpoint(Ident:BlinkC,Ident:Timer0),Endpoint(Ident:Timer0))" {
		t.Errorf("unexpected connection %s", got)
	}
}

func TestParseGenericArgs(t *testing.T) {
	tree, root := mustParse(t, `
configuration C {}
implementation {
  components new QueueC(message_t*, 8) as Q, new BitVectorC(unsigned int) as B;
}
`)
	refs := ast.Collect(tree, root, ast.KindComponentRef)
	if len(refs) != 2 {
		t.Fatalf("Expected 2 refs, got %d", len(refs))
	}
	if got := dump(tree, tree.Child(refs[0], 1)); got != "ArgList(TypeName:message_t*,IntLit:8)" {
		t.Errorf("unexpected args %s", got)
	}
	if got := dump(tree, tree.Child(refs[1], 1)); got != "ArgList(TypeName:unsigned int)" {
		t.Errorf("unexpected args %s", got)
	}
}

func TestParseExpressions(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"a + b * c", "Binary[+](Ident:a,Binary[*](Ident:b,Ident:c))"},
		{"a - b - c", "Binary[-](Binary[-](Ident:a,Ident:b),Ident:c)"},
		{"a = b = 1", "Assign[=](Ident:a,Assign[=](Ident:b,IntLit:1))"},
		{"x += y << 2", "Assign[+=](Ident:x,Binary[<<](Ident:y,IntLit:2))"},
		{"a && b || c", "Binary[||](Binary[&&](Ident:a,Ident:b),Ident:c)"},
		{"c ? 1 : 2", "Conditional(Ident:c,IntLit:1,IntLit:2)"},
		{"-*p", "Unary[-](Unary[*](Ident:p))"},
		{"p->next->len", "Member[->](Member[->](Ident:p,Ident:next),Ident:len)"},
		{"buf[i++]", "Index(Ident:buf,Unary[post++](Ident:i))"},
		{"(uint8_t*)msg", "Cast(DeclSpecs(TypeName:uint8_t),Ident:msg)"},
		{"sizeof(message_t)", "Sizeof(DeclSpecs(TypeName:message_t))"},
		{"sizeof x", "Sizeof(Ident:x)"},
		{"(a + b) * c", "Binary[*](Binary[+](Ident:a,Ident:b),Ident:c)"},
		{"post sendTask()", "Invoke[post](Call(Ident:sendTask,ArgList))"},
		{"signal Read.readDone(SUCCESS, val)", "Invoke[signal](Call(Member[.](Ident:Read,Ident:readDone),ArgList(Ident:SUCCESS,Ident:val)))"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tree, root := mustParse(t, "void f() { "+tt.input+"; }")
			stmts := ast.Collect(tree, root, ast.KindExprStmt)
			if len(stmts) != 1 {
				t.Fatalf("Expected one statement, got %s", dump(tree, root))
			}
			if got := dump(tree, tree.Child(stmts[0], 0)); got != tt.want {
				t.Errorf("Expected %s\ngot      %s", tt.want, got)
			}
		})
	}
}

func TestIntLiteralValues(t *testing.T) {
	tests := []struct {
		text string
		want int64
	}{
		{"42", 42},
		{"0x1F", 31},
		{"010", 8},
		{"100u", 100},
		{"7UL", 7},
		{"'a'", 97},
		{"'\\n'", 10},
	}
	for _, tt := range tests {
		tree, root := mustParse(t, "int x = "+tt.text+";")
		lits := ast.Collect(tree, root, ast.KindIntLit)
		if len(lits) != 1 {
			t.Fatalf("%s: expected one literal", tt.text)
		}
		if got := tree.Get(lits[0]).Value; got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.text, tt.want, got)
		}
	}
}

func TestParseInitializers(t *testing.T) {
	tree, root := mustParse(t, `
typedef struct { int a; int b[2]; } pair_t;
pair_t p = { .a = 1, .b = { [0] = 2, [1] = 3 } };
pair_t q = { a: 4 };
`)
	lists := ast.Collect(tree, root, ast.KindDesignatorList)
	if len(lists) != 5 {
		t.Fatalf("Expected 5 designator lists, got %d", len(lists))
	}
	if got := dump(tree, lists[2]); got != "DesignatorList(Designator[[](IntLit:0))" {
		t.Errorf("unexpected index designator %s", got)
	}
	if got := dump(tree, lists[4]); got != "DesignatorList(Designator[.](Ident:a))" {
		t.Errorf("old-style designator should read as a field: %s", got)
	}
}

func TestTypedefTracking(t *testing.T) {
	tree, root := mustParse(t, `
typedef uint16_t counter_t;
void f() {
  counter_t n;
  n = (counter_t)3;
}
`)
	decls := ast.Collect(tree, root, ast.KindDeclaration)
	if len(decls) != 2 {
		t.Fatalf("Expected the local to parse as a declaration, got %s", dump(tree, root))
	}
	if len(ast.Collect(tree, root, ast.KindCast)) != 1 {
		t.Errorf("typedef name in parentheses should parse as a cast")
	}
}

func TestParseStatements(t *testing.T) {
	tree, root := mustParse(t, `
void f(uint8_t n) {
  int i;
  for (i = 0; i < n; i++) { if (i == 3) continue; else break; }
  while (n) n--;
  do { n++; } while (n < 4);
  atomic { n = 0; }
  return;
}
`)
	loops := ast.Collect(tree, root, ast.KindLoop)
	if len(loops) != 3 {
		t.Fatalf("Expected 3 loops, got %d", len(loops))
	}
	for i, want := range []string{"for", "while", "do"} {
		if tree.Op(loops[i]) != want {
			t.Errorf("loop %d: expected %s, got %s", i, want, tree.Op(loops[i]))
		}
	}
	if got := tree.NumChildren(loops[0]); got != 4 {
		t.Errorf("for loop should keep init, cond, step and body, got %d parts", got)
	}
	jumps := ast.Collect(tree, root, ast.KindJump)
	if len(jumps) != 2 || tree.Op(jumps[0]) != "continue" || tree.Op(jumps[1]) != "break" {
		t.Errorf("unexpected jumps")
	}
	if len(ast.Collect(tree, root, ast.KindAtomic)) != 1 {
		t.Errorf("atomic block missing")
	}
}

func TestParseEnum(t *testing.T) {
	tree, root := mustParse(t, `enum { TIMER_PERIOD = 250, MAX_RETRIES, };`)
	enums := ast.Collect(tree, root, ast.KindEnumerator)
	if len(enums) != 2 {
		t.Fatalf("Expected 2 enumerators, got %d", len(enums))
	}
	if got := dump(tree, enums[0]); got != "Enumerator(Ident:TIMER_PERIOD,IntLit:250)" {
		t.Errorf("unexpected enumerator %s", got)
	}
}

func TestParseAttributes(t *testing.T) {
	tree, root := mustParse(t, `
module M { provides interface Init @exactlyonce(); }
implementation {
  uint8_t buf[4] @combine("add");
}
`)
	attrs := ast.Collect(tree, root, ast.KindAttribute)
	if len(attrs) != 1 {
		t.Fatalf("Expected 1 attribute, got %d", len(attrs))
	}
	if got := dump(tree, attrs[0]); got != `Attribute(Ident:combine,ArgList(StringLit:"add"))` {
		t.Errorf("unexpected attribute %s", got)
	}
}

func TestParseErrorsRecover(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  diag.Code
		items int
	}{
		{"missing semicolon", "int a\nint b;", diag.SynExpectSemicolon, 1},
		{"stray token", "} module M {} implementation {}", diag.SynUnexpectedTopLevel, 1},
		{"bad wiring", "configuration C {} implementation { A + B; components D; }", diag.SynUnexpectedToken, 1},
		{"unclosed body", "module M {} implementation { void f() { ", diag.SynUnclosedBrace, 1},
		{"call without parens", "void f() { call x; }", diag.SynExpectExpression, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, root, bag := parseSource(t, tt.input)
			found := false
			for _, d := range bag.Items() {
				if d.Code == tt.code {
					found = true
				}
			}
			if !found {
				t.Fatalf("Expected %s among %d diagnostics", tt.code.ID(), bag.Len())
			}
			if got := tree.NumChildren(root); got < tt.items {
				t.Errorf("Expected at least %d recovered items, got %d", tt.items, got)
			}
		})
	}
}

func TestSpansCoverSource(t *testing.T) {
	input := "module M {} implementation { int x; }"
	tree, root := mustParse(t, input)
	mod := tree.Child(root, 0)
	sp := tree.Span(mod)
	if sp.Start != 0 || int(sp.End) != len(input) {
		t.Errorf("Expected module span 0..%d, got %d..%d", len(input), sp.Start, sp.End)
	}
	x := ast.Collect(tree, root, ast.KindIdent)[1]
	if input[tree.Span(x).Start:tree.Span(x).End] != "x" {
		t.Errorf("identifier span does not match its text")
	}
}

func TestIncludesSkipped(t *testing.T) {
	tree, root := mustParse(t, "includes Timer, Leds;\nmodule M {} implementation {}")
	if tree.NumChildren(root) != 1 {
		t.Fatalf("Expected only the module, got %s", dump(tree, root))
	}
}
