package project

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ErrManifestExists is returned by WriteDefault when nesc.toml is present.
var ErrManifestExists = errors.New("nesc.toml already exists")

type Analysis struct {
	MaxDiagnostics   int      `toml:"max_diagnostics"`
	WarningsAsErrors bool     `toml:"warnings_as_errors"`
	Exclude          []string `toml:"exclude"`
}

type Output struct {
	Color    string `toml:"color"`     // auto | on | off
	Format   string `toml:"format"`    // pretty | short | json
	PathMode string `toml:"path_mode"` // auto | absolute | relative | basename
}

type Trace struct {
	Level  string `toml:"level"`
	Output string `toml:"output"`
}

// Manifest is the parsed nesc.toml. Missing keys keep their defaults.
type Manifest struct {
	Path     string   `toml:"-"`
	Root     string   `toml:"-"`
	Name     string   `toml:"name"`
	Analysis Analysis `toml:"analysis"`
	Output   Output   `toml:"output"`
	Trace    Trace    `toml:"trace"`
}

// Default returns the settings used without a manifest.
func Default() Manifest {
	return Manifest{
		Analysis: Analysis{MaxDiagnostics: 100},
		Output:   Output{Color: "auto", Format: "pretty", PathMode: "auto"},
	}
}

var (
	colorModes  = []string{"auto", "on", "off"}
	formats     = []string{"pretty", "short", "json"}
	pathModes   = []string{"auto", "absolute", "relative", "basename"}
	traceLevels = []string{"", "off", "error", "phase", "detail", "debug"}
)

// Load parses path over the defaults and validates the enumerated keys.
func Load(path string) (Manifest, error) {
	m := Default()
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Manifest{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	checks := []struct {
		key, value string
		allowed    []string
	}{
		{"output.color", m.Output.Color, colorModes},
		{"output.format", m.Output.Format, formats},
		{"output.path_mode", m.Output.PathMode, pathModes},
		{"trace.level", strings.ToLower(m.Trace.Level), traceLevels},
	}
	for _, c := range checks {
		if !contains(c.allowed, c.value) {
			return Manifest{}, fmt.Errorf("%s: invalid %s %q (want one of %s)", path, c.key, c.value, strings.Join(c.allowed, ", "))
		}
	}
	if m.Analysis.MaxDiagnostics < 0 {
		return Manifest{}, fmt.Errorf("%s: analysis.max_diagnostics must not be negative", path)
	}
	m.Path = path
	m.Root = filepath.Dir(path)
	return m, nil
}

// Discover finds and loads the manifest above startDir. Without one it
// returns the defaults and false.
func Discover(startDir string) (Manifest, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return Default(), false, err
	}
	m, err := Load(path)
	if err != nil {
		return Default(), true, err
	}
	return m, true, nil
}

// Encode renders m as TOML.
func (m Manifest) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteDefault creates dir/nesc.toml named after the directory.
func WriteDefault(dir string) (string, error) {
	path := filepath.Join(dir, ManifestName)
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("%s: %w", path, ErrManifestExists)
	}
	m := Default()
	m.Name = strings.TrimSpace(filepath.Base(dir))
	if m.Name == "" || m.Name == "." || m.Name == string(filepath.Separator) {
		m.Name = "nesc-project"
	}
	data, err := m.Encode()
	if err != nil {
		return path, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return path, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
