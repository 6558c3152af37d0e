package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"nesc/internal/ast"
	"nesc/internal/driver"
	"nesc/internal/inspect"
	"nesc/internal/source"
)

var tagsCmd = &cobra.Command{
	Use:   "tags [flags] <file.nc>",
	Short: "Dump the semantic tags of a nesC file",
	Long:  `Print every tagged node of a resolved nesC file, or only the identifier at --line/--col together with its declaration`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTags,
}

func init() {
	tagsCmd.Flags().Uint32("line", 0, "1-based line of the identifier to inspect")
	tagsCmd.Flags().Uint32("col", 0, "1-based column of the identifier to inspect")
	tagsCmd.Flags().Bool("json", false, "emit JSON instead of text")
}

func runTags(cmd *cobra.Command, args []string) error {
	line, err := cmd.Flags().GetUint32("line")
	if err != nil {
		return fmt.Errorf("failed to get line flag: %w", err)
	}
	col, err := cmd.Flags().GetUint32("col")
	if err != nil {
		return fmt.Errorf("failed to get col flag: %w", err)
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to get json flag: %w", err)
	}

	fs, res, err := analyzeOne(cmd, args[0])
	if err != nil {
		return err
	}
	r := res.Sema.Resolver()
	out := cmd.OutOrStdout()

	if line == 0 && col == 0 {
		var nodes []inspect.Node
		inspect.Walk(res.Tree, res.Root, r, res.Sema.Types, func(n inspect.Node) {
			nodes = append(nodes, n)
		})
		if asJSON {
			return writeJSON(out, nodes)
		}
		for _, n := range nodes {
			printTagLine(out, fs, n)
		}
		return nil
	}

	id, err := nodeAt(fs, res, line, col)
	if err != nil {
		return err
	}
	n, ok := inspect.Inspect(res.Tree, id, r, res.Sema.Types)
	if !ok {
		return fmt.Errorf("%d:%d: %q carries no tags", line, col, res.Tree.Name(id))
	}
	if asJSON {
		return writeJSON(out, n)
	}
	printTagLine(out, fs, n)
	if b, ok := r.BindingOf(id); ok && b.Decl.Node != id {
		start, _ := fs.Resolve(b.Decl.Span)
		fmt.Fprintf(out, "  declared at %s (%s)\n", start, b.Namespace)
	}
	return nil
}

// analyzeOne analyzes a single file and fails on a resolve fault.
func analyzeOne(cmd *cobra.Command, path string) (*source.FileSet, *driver.FileResult, error) {
	fs := source.NewFileSet()
	res, err := driver.AnalyzeFile(cmd.Context(), fs, path, driver.Options{MaxDiagnostics: cfg.maxDiagnostics})
	if err != nil {
		return nil, nil, err
	}
	if res.Err != nil {
		dumpTrace()
		return nil, nil, fmt.Errorf("%s: %w", res.Path, res.Err)
	}
	return fs, res, nil
}

// nodeAt finds the identifier at a 1-based position.
func nodeAt(fs *source.FileSet, res *driver.FileResult, line, col uint32) (ast.NodeID, error) {
	off, ok := fs.Get(res.FileID).Offset(line, col)
	if !ok {
		return ast.NoNodeID, fmt.Errorf("%d:%d is outside of %s", line, col, res.Path)
	}
	id, ok := res.Tree.NodeAt(off)
	if !ok || res.Tree.Kind(id) != ast.KindIdent {
		return ast.NoNodeID, fmt.Errorf("%d:%d: no identifier at this position", line, col)
	}
	return id, nil
}

func printTagLine(w io.Writer, fs *source.FileSet, n inspect.Node) {
	start, _ := fs.Resolve(n.Span)
	fmt.Fprintf(w, "%s %s %s [%s]", start, n.Kind, n.Label, strings.Join(n.Tags, ","))
	if n.Type != "" {
		fmt.Fprintf(w, " : %s", n.Type)
	}
	fmt.Fprintln(w)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write json: %w", err)
	}
	return nil
}
