package parser

import "nesc/internal/token"

// Binary precedence, higher binds tighter. Assignment and ?: are handled
// outside the table.
const (
	precLogicalOr      = 1 // ||
	precLogicalAnd     = 2 // &&
	precBitwiseOr      = 3 // |
	precBitwiseXor     = 4 // ^
	precBitwiseAnd     = 5 // &
	precEquality       = 6 // == !=
	precComparison     = 7 // < <= > >=
	precShift          = 8 // << >>
	precAdditive       = 9 // + -
	precMultiplicative = 10
)

// binaryPrec returns the precedence of a binary operator or -1.
func binaryPrec(kind token.Kind) int {
	switch kind {
	case token.OrOr:
		return precLogicalOr
	case token.AndAnd:
		return precLogicalAnd
	case token.Pipe:
		return precBitwiseOr
	case token.Caret:
		return precBitwiseXor
	case token.Amp:
		return precBitwiseAnd
	case token.EqEq, token.BangEq:
		return precEquality
	case token.Lt, token.LtEq, token.Gt, token.GtEq:
		return precComparison
	case token.Shl, token.Shr:
		return precShift
	case token.Plus, token.Minus:
		return precAdditive
	case token.Star, token.Slash, token.Percent:
		return precMultiplicative
	default:
		return -1
	}
}

func isAssignOp(kind token.Kind) bool {
	switch kind {
	case token.Assign, token.PlusAssign, token.MinusAssign, token.StarAssign,
		token.SlashAssign, token.PercentAssign, token.AmpAssign, token.PipeAssign,
		token.CaretAssign, token.ShlAssign, token.ShrAssign:
		return true
	}
	return false
}

func isPrefixOp(kind token.Kind) bool {
	switch kind {
	case token.Minus, token.Plus, token.Bang, token.Tilde, token.Star, token.Amp,
		token.PlusPlus, token.MinusMinus:
		return true
	}
	return false
}
