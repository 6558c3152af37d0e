package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"nesc/internal/diag"
	"nesc/internal/diagfmt"
	"nesc/internal/driver"
	"nesc/internal/observ"
	"nesc/internal/source"
)

var diagCmd = &cobra.Command{
	Use:   "diag [flags] <file.nc|directory>",
	Short: "Run diagnostics on a nesC source file or directory",
	Long:  `Resolve interfaces, components and declarations of a nesC file, or of every *.nc file within a directory, and report what does not resolve`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDiag,
}

func init() {
	diagCmd.Flags().String("format", "pretty", "output format (pretty|short|json)")
	diagCmd.Flags().Bool("no-warnings", false, "ignore warnings in diagnostics")
	diagCmd.Flags().String("min-severity", "info", "lowest severity to report (info|warning|error)")
	diagCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	diagCmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	diagCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	diagCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	diagCmd.Flags().Int("context", 0, "extra source lines shown around each diagnostic")
	diagCmd.Flags().String("ui", "off", "progress view for directories (auto|on|off)")
}

func runDiag(cmd *cobra.Command, args []string) error {
	target := args[0]

	noWarnings, err := cmd.Flags().GetBool("no-warnings")
	if err != nil {
		return fmt.Errorf("failed to get no-warnings flag: %w", err)
	}
	if noWarnings && cfg.warningsAsErrors {
		return fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
	}
	minValue, err := cmd.Flags().GetString("min-severity")
	if err != nil {
		return fmt.Errorf("failed to get min-severity flag: %w", err)
	}
	minSev, err := diag.ParseSeverity(minValue)
	if err != nil {
		return err
	}
	if noWarnings {
		minSev = max(minSev, diag.SevError)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	lines, err := cmd.Flags().GetInt("context")
	if err != nil {
		return fmt.Errorf("failed to get context flag: %w", err)
	}

	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	st, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", target, err)
	}

	opts := driver.Options{
		MaxDiagnostics:   cfg.maxDiagnostics,
		WarningsAsErrors: cfg.warningsAsErrors,
		Timings:          cfg.timings,
		Jobs:             jobs,
		Exclude:          cfg.manifest.Analysis.Exclude,
	}

	var (
		fs     *source.FileSet
		bag    *diag.Bag
		timing observ.Report
		faults []error
	)
	if st.IsDir() {
		analyze := driver.AnalyzeDir
		if shouldUseTUI(mode) {
			analyze = analyzeDirWithUI
		}
		res, err := analyze(cmd.Context(), target, opts)
		if err != nil {
			return err
		}
		fs, bag = res.FileSet, res.Bag()
		for i := range res.Files {
			f := &res.Files[i]
			if f.Timing != nil {
				timing.Add(*f.Timing)
			}
			if f.Err != nil {
				faults = append(faults, fmt.Errorf("%s: %w", f.Path, f.Err))
			}
		}
	} else {
		fs = source.NewFileSet()
		if wd, err := os.Getwd(); err == nil {
			fs.SetBaseDir(wd)
		}
		res, err := driver.AnalyzeFile(cmd.Context(), fs, filepath.Clean(target), opts)
		if err != nil {
			return err
		}
		bag = res.Bag
		if res.Timing != nil {
			timing = *res.Timing
		}
		if res.Err != nil {
			faults = append(faults, fmt.Errorf("%s: %w", res.Path, res.Err))
		}
	}

	if minSev > diag.SevInfo {
		bag.Filter(minSev)
	}

	out := cmd.OutOrStdout()
	switch cfg.format {
	case "json":
		err = diagfmt.JSON(out, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         cfg.pathMode,
			IncludeNotes:     withNotes,
		})
		if err != nil {
			return fmt.Errorf("failed to write json: %w", err)
		}
	case "short":
		diagfmt.Short(out, bag, fs, cfg.pathMode)
	case "pretty", "":
		ctxLines := int8(min(max(lines, 0), 16))
		diagfmt.Pretty(out, bag, fs, diagfmt.PrettyOpts{
			Color:     cfg.color,
			Context:   ctxLines,
			PathMode:  cfg.pathMode,
			ShowNotes: withNotes,
		})
		if bag.Len() > 0 {
			diagfmt.Summary(out, bag)
		}
	default:
		return fmt.Errorf("unknown format: %s", cfg.format)
	}

	if cfg.timings && len(timing.Phases) > 0 {
		fmt.Fprint(cmd.ErrOrStderr(), timing.Summary())
	}
	if len(faults) > 0 {
		for _, f := range faults {
			fmt.Fprintln(cmd.ErrOrStderr(), "nesc: internal error:", f)
		}
		dumpTrace()
		return errFailed
	}
	if bag.HasErrors() {
		return errFailed
	}
	return nil
}
