package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"nesc/internal/diag"
	"nesc/internal/source"
)

func decode(t *testing.T, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	t.Helper()
	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, opts); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}
	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput: %s", err, buf.String())
	}
	return output
}

func TestJSONBasic(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("BlinkC.nc", []byte(blinkSrc))

	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevError, diag.SemaUnknownInterface,
		source.Span{File: fileID, Start: 33, End: 38}, "unknown interface Timer"))

	output := decode(t, bag, fs, JSONOpts{IncludePositions: true, PathMode: PathModeBasename, IncludeNotes: true})
	if output.Count != 1 || len(output.Diagnostics) != 1 {
		t.Fatalf("Expected 1 diagnostic, got %d", output.Count)
	}
	d := output.Diagnostics[0]
	if d.Severity != "ERROR" {
		t.Errorf("Expected severity=ERROR, got %s", d.Severity)
	}
	if d.Code != "SEM3004" {
		t.Errorf("Expected code=SEM3004, got %s", d.Code)
	}
	if d.Location.File != "BlinkC.nc" {
		t.Errorf("Expected file=BlinkC.nc, got %s", d.Location.File)
	}
	if d.Location.StartByte != 33 || d.Location.EndByte != 38 {
		t.Errorf("Expected bytes 33..38, got %d..%d", d.Location.StartByte, d.Location.EndByte)
	}
	if d.Location.StartLine != 2 || d.Location.StartCol != 18 {
		t.Errorf("Expected 2:18, got %d:%d", d.Location.StartLine, d.Location.StartCol)
	}
}

func TestJSONNotes(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("BlinkC.nc", []byte(blinkSrc))
	bag := diag.NewBag(10)
	d := diag.New(diag.SevError, diag.RenCollision,
		source.Span{File: fileID, Start: 87, End: 94}, "You intended to rename the alias counter to Timer0")
	d = d.WithNote(source.Span{File: fileID, Start: 52, End: 58}, "This would lead to a collision with this identifier: Timer0")
	bag.Add(d)

	output := decode(t, bag, fs, JSONOpts{PathMode: PathModeBasename, IncludeNotes: true})
	notes := output.Diagnostics[0].Notes
	if len(notes) != 1 {
		t.Fatalf("Expected 1 note, got %d", len(notes))
	}
	if notes[0].Location.StartByte != 52 || notes[0].Location.EndByte != 58 {
		t.Errorf("unexpected note location %+v", notes[0].Location)
	}

	output = decode(t, bag, fs, JSONOpts{PathMode: PathModeBasename})
	if len(output.Diagnostics[0].Notes) != 0 {
		t.Errorf("notes emitted while disabled")
	}
}

func TestJSONWithoutPositions(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("BlinkC.nc", []byte(blinkSrc))
	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevInfo, diag.SemaInfo, source.Span{File: fileID, Start: 4, End: 5}, "info"))

	d := decode(t, bag, fs, JSONOpts{PathMode: PathModeBasename}).Diagnostics[0]
	if d.Location.StartLine != 0 {
		t.Errorf("Expected start_line to be omitted (0), got %d", d.Location.StartLine)
	}
	if d.Location.StartByte != 4 {
		t.Errorf("Expected start_byte=4, got %d", d.Location.StartByte)
	}
}

func TestJSONMaxLimit(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("BlinkC.nc", []byte(blinkSrc))
	bag := diag.NewBag(10)
	for i := range uint32(5) {
		bag.Add(diag.New(diag.SevError, diag.SemaUnresolvedSymbol, source.Span{File: fileID, Start: i, End: i + 1}, "unresolved"))
	}
	output := decode(t, bag, fs, JSONOpts{PathMode: PathModeBasename, Max: 3})
	if output.Count != 3 || len(output.Diagnostics) != 3 {
		t.Errorf("Expected 3 diagnostics (limited), got %d", output.Count)
	}
	if output.Errors != 5 || !output.Truncated {
		t.Errorf("Expected errors=5 and truncated, got %d %v", output.Errors, output.Truncated)
	}
}

func TestJSONPathModes(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/home/user/project")
	fileID := fs.AddVirtual("/home/user/project/src/BlinkC.nc", []byte(blinkSrc))
	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevError, diag.SemaUnresolvedSymbol, source.Span{File: fileID, Start: 0, End: 1}, "Error"))

	tests := []struct {
		name     string
		pathMode PathMode
		expected string
	}{
		{"Absolute", PathModeAbsolute, "/home/user/project/src/BlinkC.nc"},
		{"Relative", PathModeRelative, "src/BlinkC.nc"},
		{"Basename", PathModeBasename, "BlinkC.nc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := decode(t, bag, fs, JSONOpts{PathMode: tt.pathMode})
			if got := output.Diagnostics[0].Location.File; got != tt.expected {
				t.Errorf("Expected file=%s, got %s", tt.expected, got)
			}
		})
	}
}

func TestParsePathMode(t *testing.T) {
	for _, m := range []PathMode{PathModeAuto, PathModeAbsolute, PathModeRelative, PathModeBasename} {
		got, ok := ParsePathMode(m.String())
		if !ok || got != m {
			t.Errorf("round trip of %s failed: %v %v", m, got, ok)
		}
	}
	if _, ok := ParsePathMode("short"); ok {
		t.Errorf("unknown path mode accepted")
	}
}

func TestJSONTitleAndCounts(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("BlinkC.nc", []byte(blinkSrc))
	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevWarning, diag.SemaUnresolvedSymbol, source.Span{File: fileID, Start: 0, End: 1}, "w"))
	bag.Add(diag.New(diag.SevError, diag.SemaUnknownInterface, source.Span{File: fileID, Start: 2, End: 3}, "e"))

	output := decode(t, bag, fs, JSONOpts{PathMode: PathModeBasename})
	if output.Errors != 1 || output.Warnings != 1 || output.Truncated {
		t.Fatalf("Expected 1 error and 1 warning, got %+v", output)
	}
	for _, d := range output.Diagnostics {
		if d.Title == "" {
			t.Errorf("Expected a title for %s", d.Code)
		}
	}
}
