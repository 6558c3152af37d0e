package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	Ident
	IntLit
	CharLit
	StringLit

	// C keywords
	KwVoid
	KwChar
	KwShort
	KwInt
	KwLong
	KwSigned
	KwUnsigned
	KwFloat
	KwDouble
	KwStruct
	KwUnion
	KwNxStruct
	KwNxUnion
	KwEnum
	KwTypedef
	KwStatic
	KwExtern
	KwConst
	KwVolatile
	KwInline
	KwReturn
	KwIf
	KwElse
	KwWhile
	KwFor
	KwDo
	KwBreak
	KwContinue
	KwSizeof

	// nesC keywords
	KwInterface
	KwModule
	KwConfiguration
	KwImplementation
	KwComponents
	KwUses
	KwProvides
	KwAs
	KwCommand
	KwEvent
	KwTask
	KwCall
	KwSignal
	KwPost
	KwAsync
	KwAtomic
	KwNorace
	KwDefault
	KwNew
	KwGeneric
	KwIncludes

	// punctuation and operators
	Plus          // +
	Minus         // -
	Star          // *
	Slash         // /
	Percent       // %
	Assign        // =
	PlusAssign    // +=
	MinusAssign   // -=
	StarAssign    // *=
	SlashAssign   // /=
	PercentAssign // %=
	AmpAssign     // &=
	PipeAssign    // |=
	CaretAssign   // ^=
	ShlAssign     // <<=
	ShrAssign     // >>=
	PlusPlus      // ++
	MinusMinus    // --
	EqEq          // ==
	Bang          // !
	BangEq        // !=
	Lt            // <
	LtEq          // <=
	Gt            // >
	GtEq          // >=
	Shl           // <<
	Shr           // >>
	Amp           // &
	Pipe          // |
	Caret         // ^
	Tilde         // ~
	AndAnd        // &&
	OrOr          // ||
	Question      // ?
	Colon         // :
	Semicolon     // ;
	Comma         // ,
	Dot           // .
	Arrow         // ->
	LeftArrow     // <-
	Ellipsis      // ...
	LParen        // (
	RParen        // )
	LBrace        // {
	RBrace        // }
	LBracket      // [
	RBracket      // ]
	At            // @

	kindCount
)

const (
	firstKeyword = KwVoid
	firstPunct   = Plus
)

var kindNames = [kindCount]string{
	Invalid:   "Invalid",
	EOF:       "EOF",
	Ident:     "Ident",
	IntLit:    "IntLit",
	CharLit:   "CharLit",
	StringLit: "StringLit",

	Plus: "+", Minus: "-", Star: "*", Slash: "/", Percent: "%",
	Assign: "=", PlusAssign: "+=", MinusAssign: "-=", StarAssign: "*=",
	SlashAssign: "/=", PercentAssign: "%=", AmpAssign: "&=", PipeAssign: "|=",
	CaretAssign: "^=", ShlAssign: "<<=", ShrAssign: ">>=",
	PlusPlus: "++", MinusMinus: "--",
	EqEq: "==", Bang: "!", BangEq: "!=", Lt: "<", LtEq: "<=", Gt: ">", GtEq: ">=",
	Shl: "<<", Shr: ">>", Amp: "&", Pipe: "|", Caret: "^", Tilde: "~",
	AndAnd: "&&", OrOr: "||", Question: "?", Colon: ":", Semicolon: ";",
	Comma: ",", Dot: ".", Arrow: "->", LeftArrow: "<-", Ellipsis: "...",
	LParen: "(", RParen: ")", LBrace: "{", RBrace: "}", LBracket: "[", RBracket: "]",
	At: "@",
}

func init() {
	for word, k := range keywords {
		kindNames[k] = word
	}
}

// String returns the spelling for keywords and operators and the kind
// name for everything else.
func (k Kind) String() string {
	if k >= kindCount || kindNames[k] == "" {
		return "Invalid"
	}
	return kindNames[k]
}
