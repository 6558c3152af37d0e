package lexer

import (
	"nesc/internal/diag"
	"nesc/internal/token"
)

var singleOps = [256]token.Kind{
	'+': token.Plus, '-': token.Minus, '*': token.Star, '/': token.Slash, '%': token.Percent,
	'=': token.Assign, '!': token.Bang, '<': token.Lt, '>': token.Gt,
	'&': token.Amp, '|': token.Pipe, '^': token.Caret, '~': token.Tilde,
	'?': token.Question, ':': token.Colon, ';': token.Semicolon, ',': token.Comma, '.': token.Dot,
	'(': token.LParen, ')': token.RParen, '{': token.LBrace, '}': token.RBrace,
	'[': token.LBracket, ']': token.RBracket, '@': token.At,
}

// multiOps is ordered longest first so matching is greedy.
var multiOps = []struct {
	text string
	kind token.Kind
}{
	{"...", token.Ellipsis}, {"<<=", token.ShlAssign}, {">>=", token.ShrAssign},
	{"->", token.Arrow}, {"<-", token.LeftArrow},
	{"++", token.PlusPlus}, {"--", token.MinusMinus},
	{"&&", token.AndAnd}, {"||", token.OrOr},
	{"==", token.EqEq}, {"!=", token.BangEq}, {"<=", token.LtEq}, {">=", token.GtEq},
	{"<<", token.Shl}, {">>", token.Shr},
	{"+=", token.PlusAssign}, {"-=", token.MinusAssign}, {"*=", token.StarAssign},
	{"/=", token.SlashAssign}, {"%=", token.PercentAssign},
	{"&=", token.AmpAssign}, {"|=", token.PipeAssign}, {"^=", token.CaretAssign},
}

func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	kind := token.Invalid
	for _, op := range multiOps {
		if lx.cursor.Skip(op.text) {
			kind = op.kind
			break
		}
	}
	if kind == token.Invalid {
		kind = singleOps[lx.cursor.Bump()]
	}
	sp := lx.cursor.SpanFrom(start)
	if kind == token.Invalid {
		lx.errLex(diag.LexUnknownChar, sp, "unknown character")
	}
	return token.Token{Kind: kind, Span: sp, Text: lx.text(sp)}
}
