package token_test

import (
	"testing"

	"nesc/internal/source"
	"nesc/internal/token"
)

func tok(k token.Kind) token.Token {
	return token.Token{Kind: k, Span: source.Span{Start: 0, End: 0}}
}

func TestLookupKeyword(t *testing.T) {
	cases := map[string]token.Kind{
		"module":         token.KwModule,
		"configuration":  token.KwConfiguration,
		"implementation": token.KwImplementation,
		"components":     token.KwComponents,
		"uses":           token.KwUses,
		"provides":       token.KwProvides,
		"as":             token.KwAs,
		"signal":         token.KwSignal,
		"unsigned":       token.KwUnsigned,
		"typedef":        token.KwTypedef,
	}
	for lexeme, want := range cases {
		got, ok := token.LookupKeyword(lexeme)
		if !ok || got != want {
			t.Fatalf("LookupKeyword(%q) = %v, %v; want %v", lexeme, got, ok, want)
		}
	}
	for _, word := range []string{"Module", "uint8_t", "error_t", "TimerC", ""} {
		if _, ok := token.LookupKeyword(word); ok {
			t.Fatalf("%q must not be a keyword", word)
		}
	}
}

func TestKindClasses(t *testing.T) {
	if !tok(token.KwEvent).IsKeyword() || tok(token.Ident).IsKeyword() {
		t.Fatalf("keyword range is wrong")
	}
	for _, k := range []token.Kind{token.Arrow, token.LeftArrow, token.At, token.Ellipsis, token.ShrAssign} {
		if !tok(k).IsPunctOrOp() {
			t.Fatalf("%v should be punct/op", k)
		}
	}
	if tok(token.KwIncludes).IsPunctOrOp() {
		t.Fatalf("keyword classified as punctuation")
	}
	if !tok(token.KwUnsigned).IsTypeKeyword() || tok(token.KwStruct).IsTypeKeyword() {
		t.Fatalf("type keyword classification is wrong")
	}
	if !tok(token.CharLit).IsLiteral() || tok(token.Ident).IsLiteral() {
		t.Fatalf("literal classification is wrong")
	}
}

func TestKindString(t *testing.T) {
	cases := map[token.Kind]string{
		token.KwInterface: "interface",
		token.LeftArrow:   "<-",
		token.Ident:       "Ident",
		token.Kind(250):   "Invalid",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Expected %q, got %q", want, got)
		}
	}
}

func TestDirectiveTriviaShape(t *testing.T) {
	tv := token.Trivia{
		Kind:      token.TriviaDirective,
		Span:      source.Span{Start: 0, End: 18},
		Text:      "#include \"Timer.h\"",
		Directive: &token.Directive{Name: "include", Payload: "\"Timer.h\""},
	}
	tk := token.Token{Kind: token.KwModule, Span: source.Span{Start: 19, End: 25}, Text: "module", Leading: []token.Trivia{tv}}
	if len(tk.Leading) != 1 || tk.Leading[0].Directive == nil || tk.Leading[0].Kind.String() != "Directive" {
		t.Fatalf("directive trivia must be present and structured")
	}
}
