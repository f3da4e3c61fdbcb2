package main

import (
	"github.com/spf13/cobra"

	"matgraph/internal/version"
)

var (
	// projectFlag is the CLI --project flag value
	projectFlag string
	// logLevelFlag overrides the configured log level
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "matgraph",
	Short: "matgraph - MATLAB script call graph analyzer",
	Long: `matgraph recovers the call structure of a MATLAB script tree without
executing any MATLAB code. It scans .m files, resolves call sites against
function definitions heuristically, and answers structural queries: full
recursive descent from an entry script, shortest call paths, paths to
leaves, and change impact.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("matgraph version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&projectFlag, "project", "",
		"Project root containing .m scripts (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn, error (default: info)")
}
