package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"nesc/internal/version"
)

// errFailed signals a run that already printed its diagnostics and only
// needs a non-zero exit status.
var errFailed = errors.New("analysis reported errors")

var rootCmd = &cobra.Command{
	Use:           "nesc",
	Short:         "nesC semantic analysis tools",
	Long:          `nesc resolves nesC interfaces, modules and configurations and reports diagnostics, outlines, tags and rename plans`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd, args)
	},
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		teardown(cmd)
	},
}

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(diagCmd)
	rootCmd.AddCommand(outlineCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.String("manifest", "", "path to nesc.toml (default: search upwards from the input)")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics per file (0 = unlimited)")
	pf.Bool("timings", false, "show timing information")
	pf.String("trace", "", "trace output file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.Int("trace-ring-size", 4096, "events kept by the ring tracer")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, "nesc:", err)
		}
		// PersistentPostRun is skipped on error
		teardown(rootCmd)
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
