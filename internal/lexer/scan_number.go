package lexer

import (
	"nesc/internal/diag"
	"nesc/internal/token"
)

// scanNumber accepts C integer literals: decimal, 0x hex and 0 octal, with
// optional u/U/l/L suffixes. Floating literals are lexed as IntLit with
// their full text; the frontend does not evaluate them.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	if lx.cursor.Skip("0x") || lx.cursor.Skip("0X") {
		if !isHex(lx.cursor.Peek()) {
			sp := lx.cursor.SpanFrom(start)
			lx.errLex(diag.LexBadNumber, sp, "expected hex digit after '0x'")
			return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
		}
		for isHex(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
	} else {
		for isDec(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
		if lx.cursor.Peek() == '.' {
			lx.cursor.Bump()
			for isDec(lx.cursor.Peek()) {
				lx.cursor.Bump()
			}
		}
		if c := lx.cursor.Peek(); c == 'e' || c == 'E' {
			lx.cursor.Bump()
			if c := lx.cursor.Peek(); c == '+' || c == '-' {
				lx.cursor.Bump()
			}
			if !isDec(lx.cursor.Peek()) {
				sp := lx.cursor.SpanFrom(start)
				lx.errLex(diag.LexBadNumber, sp, "expected digit after exponent")
				return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
			}
			for isDec(lx.cursor.Peek()) {
				lx.cursor.Bump()
			}
		}
	}
	for {
		switch lx.cursor.Peek() {
		case 'u', 'U', 'l', 'L', 'f', 'F':
			lx.cursor.Bump()
			continue
		}
		break
	}
	if isIdentStartByte(lx.cursor.Peek()) {
		for isIdentContinueByte(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.LexBadNumber, sp, "invalid suffix on number literal")
		return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.IntLit, Span: sp, Text: lx.text(sp)}
}
