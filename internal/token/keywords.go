package token

var keywords = map[string]Kind{
	"void":      KwVoid,
	"char":      KwChar,
	"short":     KwShort,
	"int":       KwInt,
	"long":      KwLong,
	"signed":    KwSigned,
	"unsigned":  KwUnsigned,
	"float":     KwFloat,
	"double":    KwDouble,
	"struct":    KwStruct,
	"union":     KwUnion,
	"nx_struct": KwNxStruct,
	"nx_union":  KwNxUnion,
	"enum":      KwEnum,
	"typedef":   KwTypedef,
	"static":    KwStatic,
	"extern":    KwExtern,
	"const":     KwConst,
	"volatile":  KwVolatile,
	"inline":    KwInline,
	"return":    KwReturn,
	"if":        KwIf,
	"else":      KwElse,
	"while":     KwWhile,
	"for":       KwFor,
	"do":        KwDo,
	"break":     KwBreak,
	"continue":  KwContinue,
	"sizeof":    KwSizeof,

	"interface":      KwInterface,
	"module":         KwModule,
	"configuration":  KwConfiguration,
	"implementation": KwImplementation,
	"components":     KwComponents,
	"uses":           KwUses,
	"provides":       KwProvides,
	"as":             KwAs,
	"command":        KwCommand,
	"event":          KwEvent,
	"task":           KwTask,
	"call":           KwCall,
	"signal":         KwSignal,
	"post":           KwPost,
	"async":          KwAsync,
	"atomic":         KwAtomic,
	"norace":         KwNorace,
	"default":        KwDefault,
	"new":            KwNew,
	"generic":        KwGeneric,
	"includes":       KwIncludes,
}

// LookupKeyword returns the keyword kind for ident. Keywords are case
// sensitive.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}

// IsKeyword reports whether word is reserved in C or nesC.
func IsKeyword(word string) bool {
	_, ok := keywords[word]
	return ok
}
