package types

import "testing"

func TestScalarAndDerivedDedup(t *testing.T) {
	in := NewInterner()
	u8 := in.Scalar(KindInt, "uint8_t")
	if in.Scalar(KindInt, "uint8_t") != u8 {
		t.Error("Expected scalar interning")
	}
	if in.Array(u8, 4) != in.Array(u8, 4) || in.Array(u8, 4) == in.Array(u8, 5) {
		t.Error("unexpected array dedup")
	}
	if in.Pointer(u8) != in.Pointer(u8) {
		t.Error("Expected pointer dedup")
	}
	if in.Array(u8, -7) != in.Array(u8, -1) {
		t.Error("negative lengths mean unknown")
	}
}

func TestMemberAndString(t *testing.T) {
	in := NewInterner()
	pt := in.Aggregate(KindStruct, "point", []Field{{Name: "x", Type: in.Int}, {Name: "y", Type: in.Int}})
	if f, ok := in.Member(pt, "y"); !ok || f.Type != in.Int {
		t.Errorf("Expected field y of type int, got %+v ok=%v", f, ok)
	}
	if _, ok := in.Member(in.Int, "y"); ok {
		t.Error("int has no members")
	}
	tests := []struct {
		id   TypeID
		want string
	}{
		{in.Array(pt, 4), "struct point[4]"},
		{in.Pointer(in.Int), "int*"},
		{in.Array(in.Int, -1), "int[]"},
		{in.Function(in.Void, []TypeID{in.Int}), "void(int)"},
		{NoTypeID, "<none>"},
	}
	for _, tt := range tests {
		if got := in.String(tt.id); got != tt.want {
			t.Errorf("Expected %q, got %q", tt.want, got)
		}
	}
}
