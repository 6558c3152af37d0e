package token

import "nesc/internal/source"

// Token is one lexeme. Leading holds the whitespace and comments before it.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
}

func (k Kind) IsLiteral() bool { return k == IntLit || k == CharLit || k == StringLit }

func (k Kind) IsKeyword() bool { return k >= firstKeyword && k < firstPunct }

func (k Kind) IsPunctOrOp() bool { return k >= firstPunct && k < kindCount }

// IsTypeKeyword reports whether k can start a C type specifier.
func (k Kind) IsTypeKeyword() bool {
	switch k {
	case KwVoid, KwChar, KwShort, KwInt, KwLong, KwSigned, KwUnsigned, KwFloat, KwDouble:
		return true
	}
	return false
}

func (t Token) IsLiteral() bool     { return t.Kind.IsLiteral() }
func (t Token) IsKeyword() bool     { return t.Kind.IsKeyword() }
func (t Token) IsPunctOrOp() bool   { return t.Kind.IsPunctOrOp() }
func (t Token) IsTypeKeyword() bool { return t.Kind.IsTypeKeyword() }
