// Package types holds the value types the resolution pass caches on
// nodes. It models just enough of C to walk designators and report
// declared types; it is not a type checker.
package types

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
)

// TypeID addresses a type in a Interner. NoTypeID means "not computed".
type TypeID uint32

const NoTypeID TypeID = 0

func (id TypeID) IsValid() bool { return id != NoTypeID }

type Kind uint8

const (
	KindInvalid Kind = iota
	KindUnknown      // unresolved name; keeps analysis going
	KindVoid
	KindBool
	KindInt
	KindFloat
	KindPointer
	KindArray
	KindStruct
	KindUnion
	KindEnum
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "unknown"
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindPointer:
		return "pointer"
	case KindArray:
		return "array"
	case KindStruct:
		return "struct"
	case KindUnion:
		return "union"
	case KindEnum:
		return "enum"
	case KindFunction:
		return "function"
	default:
		return "invalid"
	}
}

// IntTypedefs are the integer typedef names every nesC translation unit
// sees through its standard headers.
var IntTypedefs = []string{
	"int8_t", "int16_t", "int32_t", "int64_t",
	"uint8_t", "uint16_t", "uint32_t", "uint64_t",
	"nx_int8_t", "nx_int16_t", "nx_int32_t", "nx_int64_t",
	"nx_uint8_t", "nx_uint16_t", "nx_uint32_t", "nx_uint64_t",
	"size_t", "error_t", "result_t", "am_id_t", "am_addr_t", "am_group_t",
}

// Field is a named member of a struct or union.
type Field struct {
	Name string
	Type TypeID
}

// Type is a node of the type graph. Len is -1 for arrays of unknown size.
type Type struct {
	Kind   Kind
	Name   string // int spelling, tag or typedef name
	Elem   TypeID // pointer target, array element, function result
	Len    int
	Fields []Field
	Params []TypeID
}

// Interner stores types; scalar and derived types are deduplicated,
// aggregates are not (two struct definitions are two types).
type Interner struct {
	data    []Type
	scalars map[string]TypeID
	derived map[derivedKey]TypeID

	Unknown TypeID
	Void    TypeID
	Int     TypeID
}

type derivedKey struct {
	kind Kind
	elem TypeID
	n    int
}

func NewInterner() *Interner {
	in := &Interner{
		data:    make([]Type, 1, 32), // index 0 reserved for NoTypeID
		scalars: make(map[string]TypeID),
		derived: make(map[derivedKey]TypeID),
	}
	in.Unknown = in.alloc(Type{Kind: KindUnknown, Name: "<unknown>"})
	in.Void = in.Scalar(KindVoid, "void")
	in.Int = in.Scalar(KindInt, "int")
	return in
}

func (in *Interner) alloc(t Type) TypeID {
	n, err := safecast.Conv[uint32](len(in.data))
	if err != nil {
		panic(fmt.Errorf("types arena overflow: %w", err))
	}
	in.data = append(in.data, t)
	return TypeID(n)
}

// Scalar returns the interned scalar spelled name.
func (in *Interner) Scalar(kind Kind, name string) TypeID {
	if id, ok := in.scalars[name]; ok {
		return id
	}
	id := in.alloc(Type{Kind: kind, Name: name})
	in.scalars[name] = id
	return id
}

func (in *Interner) Pointer(elem TypeID) TypeID {
	return in.derivedOf(KindPointer, elem, 0)
}

// Array with n < 0 means unknown length.
func (in *Interner) Array(elem TypeID, n int) TypeID {
	if n < 0 {
		n = -1
	}
	return in.derivedOf(KindArray, elem, n)
}

func (in *Interner) derivedOf(kind Kind, elem TypeID, n int) TypeID {
	key := derivedKey{kind: kind, elem: elem, n: n}
	if id, ok := in.derived[key]; ok {
		return id
	}
	id := in.alloc(Type{Kind: kind, Elem: elem, Len: n})
	in.derived[key] = id
	return id
}

// Aggregate allocates a new struct or union.
func (in *Interner) Aggregate(kind Kind, tag string, fields []Field) TypeID {
	return in.alloc(Type{Kind: kind, Name: tag, Fields: append([]Field(nil), fields...)})
}

// SetFields completes a previously declared aggregate.
func (in *Interner) SetFields(id TypeID, fields []Field) {
	if t := in.Get(id); t != nil {
		t.Fields = append([]Field(nil), fields...)
	}
}

func (in *Interner) Enum(tag string) TypeID {
	return in.alloc(Type{Kind: KindEnum, Name: tag})
}

func (in *Interner) Function(result TypeID, params []TypeID) TypeID {
	return in.alloc(Type{Kind: KindFunction, Elem: result, Params: append([]TypeID(nil), params...)})
}

func (in *Interner) Get(id TypeID) *Type {
	if !id.IsValid() || int(id) >= len(in.data) {
		return nil
	}
	return &in.data[id]
}

func (in *Interner) Kind(id TypeID) Kind {
	if t := in.Get(id); t != nil {
		return t.Kind
	}
	return KindInvalid
}

// Member looks up a struct or union field.
func (in *Interner) Member(id TypeID, name string) (Field, bool) {
	t := in.Get(id)
	if t == nil || (t.Kind != KindStruct && t.Kind != KindUnion) {
		return Field{}, false
	}
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (in *Interner) Len() int { return len(in.data) - 1 }

// String renders a C-like spelling, e.g. "struct point[4]".
func (in *Interner) String(id TypeID) string {
	var b strings.Builder
	in.write(&b, id, 0)
	return b.String()
}

func (in *Interner) write(b *strings.Builder, id TypeID, depth int) {
	t := in.Get(id)
	if t == nil {
		b.WriteString("<none>")
		return
	}
	if depth > 16 {
		b.WriteString("...")
		return
	}
	switch t.Kind {
	case KindPointer:
		in.write(b, t.Elem, depth+1)
		b.WriteString("*")
	case KindArray:
		in.write(b, t.Elem, depth+1)
		if t.Len >= 0 {
			fmt.Fprintf(b, "[%d]", t.Len)
		} else {
			b.WriteString("[]")
		}
	case KindStruct, KindUnion, KindEnum:
		b.WriteString(t.Kind.String())
		if t.Name != "" {
			b.WriteString(" ")
			b.WriteString(t.Name)
		}
	case KindFunction:
		in.write(b, t.Elem, depth+1)
		b.WriteString("(")
		for i, p := range t.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			in.write(b, p, depth+1)
		}
		b.WriteString(")")
	default:
		b.WriteString(t.Name)
	}
}
