package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"nesc/internal/diagfmt"
	"nesc/internal/project"
)

// settings is nesc.toml with the command line applied on top.
type settings struct {
	manifest         project.Manifest
	hasManifest      bool
	color            bool
	maxDiagnostics   int
	warningsAsErrors bool
	format           string
	pathMode         diagfmt.PathMode
	timings          bool
}

var cfg settings

func setup(cmd *cobra.Command, args []string) error {
	m, found, err := loadManifest(cmd, args)
	if err != nil {
		return err
	}
	cfg = settings{manifest: m, hasManifest: found}

	pf := cmd.Root().PersistentFlags()
	colorMode := m.Output.Color
	if pf.Changed("color") {
		if colorMode, err = pf.GetString("color"); err != nil {
			return err
		}
	}
	switch colorMode {
	case "on":
		cfg.color = true
	case "off":
		cfg.color = false
	case "auto", "":
		cfg.color = isTerminal(os.Stdout) && os.Getenv("NO_COLOR") == ""
	default:
		return fmt.Errorf("invalid --color value %q (want auto|on|off)", colorMode)
	}
	color.NoColor = !cfg.color

	cfg.maxDiagnostics = m.Analysis.MaxDiagnostics
	if pf.Changed("max-diagnostics") {
		if cfg.maxDiagnostics, err = pf.GetInt("max-diagnostics"); err != nil {
			return err
		}
	}
	if cfg.timings, err = pf.GetBool("timings"); err != nil {
		return err
	}

	cfg.warningsAsErrors = m.Analysis.WarningsAsErrors
	if f := cmd.Flags().Lookup("warnings-as-errors"); f != nil && f.Changed {
		cfg.warningsAsErrors = f.Value.String() == "true"
	}
	cfg.format = m.Output.Format
	if f := cmd.Flags().Lookup("format"); f != nil && f.Changed {
		cfg.format = f.Value.String()
	}
	mode, ok := diagfmt.ParsePathMode(m.Output.PathMode)
	if !ok {
		return fmt.Errorf("invalid path mode %q", m.Output.PathMode)
	}
	if f := cmd.Flags().Lookup("fullpath"); f != nil && f.Changed && f.Value.String() == "true" {
		mode = diagfmt.PathModeAbsolute
	}
	cfg.pathMode = mode

	return setupTracing(cmd, m.Trace)
}

// loadManifest uses --manifest when given, otherwise searches upwards
// from the first argument (or the working directory).
func loadManifest(cmd *cobra.Command, args []string) (project.Manifest, bool, error) {
	path, err := cmd.Root().PersistentFlags().GetString("manifest")
	if err != nil {
		return project.Manifest{}, false, err
	}
	if path != "" {
		m, err := project.Load(path)
		return m, err == nil, err
	}
	if cmd.Annotations["manifest"] == "skip" {
		return project.Default(), false, nil
	}
	start := "."
	if len(args) > 0 {
		start = args[0]
		if st, err := os.Stat(start); err == nil && !st.IsDir() {
			start = filepath.Dir(start)
		}
	}
	return project.Discover(start)
}
