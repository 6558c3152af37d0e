package lexer

import (
	"strings"

	"nesc/internal/diag"
	"nesc/internal/token"
)

// collectLeadingTrivia gathers the trivia preceding the next token:
//   - runs of ' ', '\t', '\r' and '\f' become one TriviaSpace
//   - runs of '\n' become one TriviaNewline
//   - //... and /* ... */ become comments (block comments do not nest)
//   - '#' at the start of a line runs to the end of the line, honouring
//     backslash continuations, and becomes a TriviaDirective
func (lx *Lexer) collectLeadingTrivia() {
	for !lx.cursor.EOF() {
		start := lx.cursor.Mark()
		b := lx.cursor.Peek()

		switch {
		case b == ' ' || b == '\t' || b == '\r' || b == '\f':
			for c := lx.cursor.Peek(); c == ' ' || c == '\t' || c == '\r' || c == '\f'; c = lx.cursor.Peek() {
				lx.cursor.Bump()
			}
			lx.hold = append(lx.hold, lx.trivia(token.TriviaSpace, start))
			continue
		case b == '\n':
			for lx.cursor.Peek() == '\n' {
				lx.cursor.Bump()
			}
			lx.hold = append(lx.hold, lx.trivia(token.TriviaNewline, start))
			continue
		case b == '/':
			if lx.scanComment() {
				continue
			}
		case b == '#' && lx.atLineStart():
			lx.scanDirective()
			continue
		}
		break
	}
}

func (lx *Lexer) trivia(kind token.TriviaKind, start Mark) token.Trivia {
	sp := lx.cursor.SpanFrom(start)
	return token.Trivia{Kind: kind, Span: sp, Text: lx.text(sp)}
}

// atLineStart reports whether only blanks precede the cursor on its line.
func (lx *Lexer) atLineStart() bool {
	for i := int(lx.cursor.Off) - 1; i >= 0; i-- {
		switch lx.file.Content[i] {
		case ' ', '\t':
			continue
		case '\n':
			return true
		default:
			return false
		}
	}
	return true
}

func (lx *Lexer) scanComment() bool {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	switch lx.cursor.Peek() {
	case '/':
		for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
			lx.cursor.Bump()
		}
		lx.hold = append(lx.hold, lx.trivia(token.TriviaLineComment, start))
		return true
	case '*':
		lx.cursor.Bump()
		closed := false
		for !lx.cursor.EOF() {
			if lx.cursor.Skip("*/") {
				closed = true
				break
			}
			lx.cursor.Bump()
		}
		tv := lx.trivia(token.TriviaBlockComment, start)
		if !closed {
			lx.errLex(diag.LexUnterminatedBlock, tv.Span, "unterminated block comment")
		}
		lx.hold = append(lx.hold, tv)
		return true
	}
	lx.cursor.Reset(start)
	return false
}

func (lx *Lexer) scanDirective() {
	start := lx.cursor.Mark()
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b == '\\' {
			lx.cursor.Bump()
			lx.cursor.Eat('\r')
			lx.cursor.Eat('\n')
			continue
		}
		if b == '\n' {
			break
		}
		lx.cursor.Bump()
	}
	tv := lx.trivia(token.TriviaDirective, start)
	body := strings.TrimSpace(strings.TrimPrefix(tv.Text, "#"))
	name, payload, _ := strings.Cut(body, " ")
	tv.Directive = &token.Directive{Name: name, Payload: strings.TrimSpace(payload)}
	lx.hold = append(lx.hold, tv)
}
