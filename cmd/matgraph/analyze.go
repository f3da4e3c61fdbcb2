package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	analyzeTarget string
	analyzeForce  bool
	analyzeFormat string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <entryScript>",
	Short: "Run a full recursive descent from an entry script",
	Long: `Walk the call graph depth-first from an entry script and report
every reachable script with its depth, visit count, and one concrete
call path from the entry. Cycles are cut and counted, never fatal.

With --target, additionally reports the shortest call path from the
entry to the target and the target's paths to leaves.

Examples:
  matgraph analyze main.m
  matgraph analyze main.m --target=util/solver.m
  matgraph analyze main.m --format=json`,
	Args: cobra.ExactArgs(1),
	Run:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeTarget, "target", "", "Target script for combined entry-to-target analysis")
	analyzeCmd.Flags().BoolVar(&analyzeForce, "force", false, "Rescan before analyzing")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) {
	start := time.Now()
	logger := newLogger(analyzeFormat)
	entry := args[0]

	projectRoot := mustGetProjectRoot()
	engine := mustGetEngine(projectRoot, logger)

	var resp interface{}
	if analyzeTarget != "" {
		combined, err := engine.AnalyzeEntryToTarget(projectRoot, entry, analyzeTarget, analyzeForce)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error analyzing entry: %v\n", err)
			os.Exit(1)
		}
		resp = combined
	} else {
		analysis, err := engine.Analyze(projectRoot, entry, analyzeForce)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error analyzing entry: %v\n", err)
			os.Exit(1)
		}
		resp = analysis
	}

	output, err := FormatResponse(resp, OutputFormat(analyzeFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(output)

	logger.Debug("Analysis completed", map[string]interface{}{
		"entry":    entry,
		"duration": time.Since(start).Milliseconds(),
	})
}
