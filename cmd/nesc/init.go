package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nesc/internal/project"
)

var initCmd = &cobra.Command{
	Use:         "init [dir]",
	Short:       "Create a nesc.toml with the default settings",
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{"manifest": "skip"},
	RunE:        runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	path, err := project.WriteDefault(dir)
	if errors.Is(err, project.ErrManifestExists) {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s already exists\n", path)
		return errFailed
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
	return nil
}
