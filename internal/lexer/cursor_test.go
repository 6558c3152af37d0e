package lexer

import (
	"testing"

	"nesc/internal/source"
)

func createFile(content string) *source.File {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.nc", []byte(content))
	return fs.Get(id)
}

func TestSequentialReading(t *testing.T) {
	cursor := NewCursor(createFile("a\nb"))
	for _, want := range []byte{'a', '\n', 'b'} {
		if cursor.EOF() {
			t.Fatalf("unexpected EOF before %q", want)
		}
		if got := cursor.Bump(); got != want {
			t.Fatalf("Expected %q, got %q", want, got)
		}
	}
	if !cursor.EOF() || cursor.Peek() != 0 || cursor.Bump() != 0 {
		t.Fatalf("cursor should be exhausted")
	}
}

func TestLookaheadAtEnd(t *testing.T) {
	cursor := NewCursor(createFile("ab"))
	if cursor.HasPrefix("abc") {
		t.Fatalf("HasPrefix must fail past the end")
	}
	if cursor.At(1) != 'b' || cursor.At(2) != 0 {
		t.Fatalf("Expected At(1)=b and At(2)=0, got %q %q", cursor.At(1), cursor.At(2))
	}
	if !cursor.Skip("ab") || !cursor.EOF() {
		t.Fatalf("Skip did not consume the prefix")
	}
	if cursor.Skip("a") {
		t.Fatalf("Skip must fail at EOF")
	}
}

func TestMarkAndReset(t *testing.T) {
	cursor := NewCursor(createFile("hello"))
	m := cursor.Mark()
	cursor.Bump()
	cursor.Bump()
	if sp := cursor.SpanFrom(m); sp.Start != 0 || sp.End != 2 {
		t.Fatalf("unexpected span %v", sp)
	}
	cursor.Reset(m)
	if !cursor.Eat('h') || cursor.Eat('x') {
		t.Fatalf("Eat did not match the current byte")
	}
}
