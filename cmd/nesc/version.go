package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nesc/internal/version"
)

type versionPayload struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print version information",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{"manifest": "skip"},
	RunE:        runVersion,
}

func init() {
	versionCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "json":
		return writeJSON(cmd.OutOrStdout(), versionPayload{
			Tool:      "nesc",
			Version:   version.Version,
			GitCommit: version.GitCommit,
			BuildDate: version.BuildDate,
		})
	case "pretty", "":
		fmt.Fprintln(cmd.OutOrStdout(), version.Full(cfg.color))
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}
