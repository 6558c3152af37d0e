package source

import "testing"

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("BlinkC.nc", []byte("module BlinkC {}"), 0)
	id2 := fs.Add("BlinkC.nc", []byte("module BlinkC { }"), 0)
	if id1 == id2 {
		t.Fatalf("Expected distinct ids, got %d twice", id1)
	}
	latest, ok := fs.GetLatest("./BlinkC.nc")
	if !ok || latest != id2 {
		t.Errorf("Expected latest id %d, got %d (ok=%v)", id2, latest, ok)
	}
	if got := string(fs.Get(id1).Content); got != "module BlinkC {}" {
		t.Errorf("Expected first version to stay readable, got %q", got)
	}
	if fs.Get(FileID(42)) != nil {
		t.Error("Expected nil for unknown file id")
	}
}

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.nc", []byte("ab\ncd\n\nef"))

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{2, LineCol{1, 3}},
		{3, LineCol{2, 1}},
		{4, LineCol{2, 2}},
		{6, LineCol{3, 1}},
		{7, LineCol{4, 1}},
		{8, LineCol{4, 2}},
	}
	for _, tt := range tests {
		start, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
		if start != tt.want {
			t.Errorf("offset %d: expected %+v, got %+v", tt.off, tt.want, start)
		}
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("a.nc", []byte("first\nsecond\nthird")))

	for n, want := range map[uint32]string{1: "first", 2: "second", 3: "third", 4: "", 0: ""} {
		if got := f.GetLine(n); got != want {
			t.Errorf("line %d: expected %q, got %q", n, want, got)
		}
	}
}

func TestNormalizeCRLFAndBOM(t *testing.T) {
	out, changed := normalizeCRLF([]byte("a\r\nb\rc\r\n"))
	if !changed || string(out) != "a\nb\rc\n" {
		t.Errorf("unexpected CRLF normalization: %q changed=%v", out, changed)
	}
	if _, changed := normalizeCRLF([]byte("plain")); changed {
		t.Error("Expected no change without \\r")
	}
	out, had := removeBOM([]byte{0xEF, 0xBB, 0xBF, 'x'})
	if !had || string(out) != "x" {
		t.Errorf("unexpected BOM removal: %q had=%v", out, had)
	}
}

func TestSpanHelpers(t *testing.T) {
	a := Span{File: 1, Start: 10, End: 15}
	b := Span{File: 1, Start: 4, End: 12}
	if got := a.Cover(b); got.Start != 4 || got.End != 15 {
		t.Errorf("Cover: got %v", got)
	}
	if got := a.Cover(Span{File: 2, Start: 0, End: 1}); got != a {
		t.Errorf("Cover across files must keep s, got %v", got)
	}
	if r := a.Region(); r.Offset != 10 || r.Length != 5 {
		t.Errorf("Region: got %v", r)
	}
	if !a.Contains(10) || a.Contains(15) {
		t.Error("Contains must be half-open")
	}
}

func TestInterner(t *testing.T) {
	in := NewInterner()
	a := in.Intern("RadioC")
	b := in.InternBytes([]byte("RadioC"))
	if a != b {
		t.Fatalf("Expected same id, got %d and %d", a, b)
	}
	if s := in.MustLookup(a); s != "RadioC" {
		t.Errorf("Expected RadioC, got %q", s)
	}
	if _, ok := in.Find("TimerC"); ok {
		t.Error("Find must not intern")
	}
	if in.Len() != 2 {
		t.Errorf("Expected 2 entries, got %d", in.Len())
	}
}

func TestOffsetInvertsResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.nc", []byte("ab\ncd\n\nef"))
	f := fs.Get(id)
	for off := uint32(0); off <= 9; off++ {
		lc, _ := fs.Resolve(Span{File: id, Start: off, End: off})
		got, ok := f.Offset(lc.Line, lc.Col)
		if !ok || got != off {
			t.Errorf("offset %d -> %+v -> %d (%v)", off, lc, got, ok)
		}
	}
	for _, lc := range []LineCol{{0, 1}, {1, 0}, {1, 4}, {5, 1}} {
		if _, ok := f.Offset(lc.Line, lc.Col); ok {
			t.Errorf("%+v should be out of range", lc)
		}
	}
}

func TestFormatPathModes(t *testing.T) {
	fs := NewFileSet()
	fs.SetBaseDir("/work/app")
	long := fs.Get(fs.AddVirtual("/work/app/src/radio/drivers/cc2420/CC2420ControlP.nc", nil))
	short := fs.Get(fs.AddVirtual("src/BlinkC.nc", nil))

	tests := []struct {
		f    *File
		mode string
		want string
	}{
		{long, "auto", "CC2420ControlP.nc"},
		{short, "auto", "src/BlinkC.nc"},
		{long, "relative", "src/radio/drivers/cc2420/CC2420ControlP.nc"},
		{short, "basename", "BlinkC.nc"},
		{short, "unknown", "src/BlinkC.nc"},
	}
	for _, tt := range tests {
		if got := tt.f.FormatPath(tt.mode, fs.BaseDir()); got != tt.want {
			t.Errorf("%s %s: expected %q, got %q", tt.f.Path, tt.mode, tt.want, got)
		}
	}
}
