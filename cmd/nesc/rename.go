package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nesc/internal/diag"
	"nesc/internal/diagfmt"
	"nesc/internal/rename"
)

var renameCmd = &cobra.Command{
	Use:   "rename [flags] <file.nc>",
	Short: "Rename the identifier at a position",
	Long:  `Check renaming the identifier at --line/--col to --to and list the edits. With --write the file is rewritten`,
	Args:  cobra.ExactArgs(1),
	RunE:  runRename,
}

func init() {
	renameCmd.Flags().Uint32("line", 0, "1-based line of the identifier")
	renameCmd.Flags().Uint32("col", 0, "1-based column of the identifier")
	renameCmd.Flags().String("to", "", "new name")
	renameCmd.Flags().Bool("write", false, "apply the edits to the file")
	_ = renameCmd.MarkFlagRequired("line")
	_ = renameCmd.MarkFlagRequired("col")
	_ = renameCmd.MarkFlagRequired("to")
}

func runRename(cmd *cobra.Command, args []string) error {
	line, err := cmd.Flags().GetUint32("line")
	if err != nil {
		return fmt.Errorf("failed to get line flag: %w", err)
	}
	col, err := cmd.Flags().GetUint32("col")
	if err != nil {
		return fmt.Errorf("failed to get col flag: %w", err)
	}
	newName, err := cmd.Flags().GetString("to")
	if err != nil {
		return fmt.Errorf("failed to get to flag: %w", err)
	}
	write, err := cmd.Flags().GetBool("write")
	if err != nil {
		return fmt.Errorf("failed to get write flag: %w", err)
	}

	fs, res, err := analyzeOne(cmd, args[0])
	if err != nil {
		return err
	}
	id, err := nodeAt(fs, res, line, col)
	if err != nil {
		return err
	}

	edits, status := rename.Plan(res.Sema, id, newName)
	if status.Len() > 0 {
		bag := diag.NewBag(0)
		for _, d := range status.Diagnostics() {
			bag.Add(d)
		}
		diagfmt.Pretty(cmd.ErrOrStderr(), bag, fs, diagfmt.PrettyOpts{
			Color:     cfg.color,
			PathMode:  cfg.pathMode,
			ShowNotes: true,
		})
	}
	if status.HasErrors() {
		return errFailed
	}

	out := cmd.OutOrStdout()
	path := fs.Get(res.FileID).FormatPath(cfg.pathMode.String(), fs.BaseDir())
	for _, e := range edits {
		start, _ := fs.Resolve(e.Span)
		fmt.Fprintf(out, "%s:%s: %s -> %s\n", path, start, e.OldText, e.NewText)
	}
	if !write {
		return nil
	}
	changes, err := rename.WriteFiles(fs, rename.Group(edits))
	if err != nil {
		return err
	}
	for _, c := range changes {
		fmt.Fprintf(out, "wrote %s (%d edits)\n", c.Path, c.EditCount)
	}
	return nil
}
