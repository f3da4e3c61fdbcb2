package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	scanForce  bool
	scanFormat string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a project and build its call graph",
	Long: `Scan every .m script under the project root, extract function
definitions and call sites, and build the script-level call graph.

Results are cached per project; use --force to rescan after edits.

Examples:
  matgraph scan
  matgraph scan --project=/path/to/matlab/project
  matgraph scan --force --format=json`,
	Run: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanForce, "force", false, "Rescan even if a cached snapshot exists")
	scanCmd.Flags().StringVar(&scanFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) {
	start := time.Now()
	logger := newLogger(scanFormat)

	projectRoot := mustGetProjectRoot()
	engine := mustGetEngine(projectRoot, logger)

	summary, err := engine.Scan(projectRoot, scanForce)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error scanning project: %v\n", err)
		os.Exit(1)
	}

	output, err := FormatResponse(summary, OutputFormat(scanFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(output)

	logger.Debug("Scan completed", map[string]interface{}{
		"scripts":  summary.Meta.ScriptCount,
		"edges":    summary.Meta.EdgeCount,
		"duration": time.Since(start).Milliseconds(),
	})
}
