package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"

	"nesc/internal/diag"
	"nesc/internal/diagfmt"
	"nesc/internal/driver"
	"nesc/internal/inspect"
	"nesc/internal/source"
)

var outlineCmd = &cobra.Command{
	Use:   "outline [flags] <file.nc>",
	Short: "Print the declarations of a nesC file",
	Long:  `Print the units, interface and component references, variables and functions declared in a nesC file. Results are cached by file content`,
	Args:  cobra.ExactArgs(1),
	RunE:  runOutline,
}

func init() {
	outlineCmd.Flags().String("format", "tree", "output format (tree|json|msgpack)")
	outlineCmd.Flags().Bool("no-cache", false, "bypass the export cache")
	outlineCmd.Flags().Bool("clear-cache", false, "drop every cached export before running")
}

func runOutline(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	clearCache, err := cmd.Flags().GetBool("clear-cache")
	if err != nil {
		return fmt.Errorf("failed to get clear-cache flag: %w", err)
	}
	switch format {
	case "tree", "json", "msgpack":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	var cache *driver.ExportCache
	if !noCache {
		if cache, err = driver.OpenExportCache("nesc"); err != nil {
			fmt.Fprintf(os.Stderr, "nesc: export cache disabled: %v\n", err)
			cache = nil
		}
	}
	if clearCache {
		if err := cache.DropAll(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
	}

	export, fs, bag, err := loadExport(cmd, args[0], cache)
	if err != nil {
		return err
	}

	// exports are keyed by content only, so promotion happens here
	if cfg.warningsAsErrors {
		bag.Promote()
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(export.Outline); err != nil {
			return fmt.Errorf("failed to write json: %w", err)
		}
	case "msgpack":
		if err := msgpack.NewEncoder(out).Encode(export.Outline); err != nil {
			return fmt.Errorf("failed to write msgpack: %w", err)
		}
	default:
		printOutline(out, export.Outline, cfg.color)
	}

	if bag.Len() > 0 {
		diagfmt.Pretty(cmd.ErrOrStderr(), bag, fs, diagfmt.PrettyOpts{Color: cfg.color, PathMode: cfg.pathMode})
	}
	if bag.HasErrors() {
		return errFailed
	}
	return nil
}

// loadExport returns the outline of path, from the cache when its content
// was seen before.
func loadExport(cmd *cobra.Command, path string, cache *driver.ExportCache) (*driver.Export, *source.FileSet, *diag.Bag, error) {
	fs := source.NewFileSet()
	if wd, err := os.Getwd(); err == nil {
		fs.SetBaseDir(wd)
	}
	id, err := fs.Load(path)
	if err != nil {
		return nil, nil, nil, err
	}
	key := driver.ExportKey(fs.Get(id))

	var cached driver.Export
	hit, err := cache.Get(key, &cached)
	if err != nil {
		fmt.Fprintf(os.Stderr, "nesc: cache read failed: %v\n", err)
	}
	if hit {
		return &cached, fs, cached.Restore(id), nil
	}

	res, err := driver.Analyze(cmd.Context(), fs, id, driver.Options{
		MaxDiagnostics: cfg.maxDiagnostics,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	if res.Err != nil {
		dumpTrace()
		return nil, nil, nil, fmt.Errorf("%s: %w", res.Path, res.Err)
	}
	export := driver.NewExport(fs, res)
	if err := cache.Put(key, export); err != nil {
		fmt.Fprintf(os.Stderr, "nesc: cache write failed: %v\n", err)
	}
	return export, fs, res.Bag, nil
}

type outlineStyles struct {
	label, kind, tags lipgloss.Style
}

func newOutlineStyles(colored bool) outlineStyles {
	if !colored {
		plain := lipgloss.NewStyle()
		return outlineStyles{label: plain, kind: plain, tags: plain}
	}
	return outlineStyles{
		label: lipgloss.NewStyle().Bold(true),
		kind:  lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		tags:  lipgloss.NewStyle().Faint(true),
	}
}

func printOutline(w io.Writer, nodes []inspect.Node, colored bool) {
	st := newOutlineStyles(colored)
	var emit func(ns []inspect.Node, prefix string)
	emit = func(ns []inspect.Node, prefix string) {
		for i, n := range ns {
			branch, next := "├── ", "│   "
			if i == len(ns)-1 {
				branch, next = "└── ", "    "
			}
			line := prefix + branch + st.label.Render(n.Label)
			if n.Type != "" {
				line += " " + st.kind.Render(n.Type)
			}
			if len(n.Tags) > 0 {
				line += " " + st.tags.Render("("+strings.Join(n.Tags, ",")+")")
			}
			fmt.Fprintln(w, line)
			emit(n.Children, prefix+next)
		}
	}
	emit(nodes, "")
}
