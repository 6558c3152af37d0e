package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// lexical
	LexInfo               Code = 1000
	LexUnknownChar        Code = 1001
	LexUnterminatedString Code = 1002
	LexUnterminatedBlock  Code = 1003
	LexBadNumber          Code = 1004
	LexTokenTooLong       Code = 1005

	// syntax
	SynInfo               Code = 2000
	SynUnexpectedToken    Code = 2001
	SynExpectIdentifier   Code = 2002
	SynExpectSemicolon    Code = 2003
	SynUnclosedBrace      Code = 2004
	SynUnclosedParen      Code = 2005
	SynUnclosedBracket    Code = 2006
	SynUnexpectedTopLevel Code = 2007
	SynExpectExpression   Code = 2008
	SynExpectType         Code = 2009
	SynInvalidChild       Code = 2010

	// semantic
	SemaInfo              Code = 3000
	SemaUnresolvedSymbol  Code = 3001
	SemaDuplicateSymbol   Code = 3002
	SemaUnknownComponent  Code = 3003
	SemaUnknownInterface  Code = 3004
	SemaUnknownField      Code = 3005
	SemaDesignatorNoArray Code = 3006
	SemaDesignatorNoField Code = 3007
	SemaIndexOutOfRange   Code = 3008
	SemaBadWiring         Code = 3009
	SemaUnknownType       Code = 3010
	SemaShadowSymbol      Code = 3011
	SemaComponentCycle    Code = 3012

	// rename
	RenInfo            Code = 4000
	RenCollision       Code = 4001
	RenCollisionTarget Code = 4002
	RenInvalidName     Code = 4003
	RenNotAvailable    Code = 4004

	// project / io
	PrjInfo        Code = 5000
	PrjBadManifest Code = 5001
	PrjIOError     Code = 5002
)

var codeDescription = map[Code]string{
	UnknownCode:           "Unknown error",
	LexInfo:               "Lexical information",
	LexUnknownChar:        "Unknown character",
	LexUnterminatedString: "Unterminated string literal",
	LexUnterminatedBlock:  "Unterminated block comment",
	LexBadNumber:          "Malformed number literal",
	LexTokenTooLong:       "Token too long",
	SynInfo:               "Syntax information",
	SynUnexpectedToken:    "Unexpected token",
	SynExpectIdentifier:   "Expected identifier",
	SynExpectSemicolon:    "Expected ';'",
	SynUnclosedBrace:      "Unclosed '{'",
	SynUnclosedParen:      "Unclosed '('",
	SynUnclosedBracket:    "Unclosed '['",
	SynUnexpectedTopLevel: "Unexpected top-level construct",
	SynExpectExpression:   "Expected expression",
	SynExpectType:         "Expected type",
	SynInvalidChild:       "Invalid child node",
	SemaInfo:              "Semantic information",
	SemaUnresolvedSymbol:  "Unresolved symbol",
	SemaDuplicateSymbol:   "Duplicate symbol",
	SemaUnknownComponent:  "Unknown component",
	SemaUnknownInterface:  "Unknown interface",
	SemaUnknownField:      "Unknown field",
	SemaDesignatorNoArray: "Array designator on non-array type",
	SemaDesignatorNoField: "Field designator on non-struct type",
	SemaIndexOutOfRange:   "Designator index out of range",
	SemaBadWiring:         "Invalid wiring",
	SemaUnknownType:       "Unknown type",
	SemaShadowSymbol:      "Symbol shadows an outer declaration",
	SemaComponentCycle:    "Component instantiation cycle",
	RenInfo:               "Rename information",
	RenCollision:          "Rename would collide",
	RenCollisionTarget:    "Colliding identifier",
	RenInvalidName:        "Invalid identifier",
	RenNotAvailable:       "Rename not available",
	PrjInfo:               "Project information",
	PrjBadManifest:        "Invalid nesc.toml",
	PrjIOError:            "I/O error",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("REN%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
