package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	leavesForce  bool
	leavesFormat string
)

var leavesCmd = &cobra.Command{
	Use:   "leaves <script>",
	Short: "Enumerate call paths from a script to every reachable leaf",
	Long: `Enumerate every simple call path from a script down to the leaf
scripts it can reach. A leaf script yields an empty list. Enumeration
is bounded by engine.maxPathsPerQuery; truncated results are flagged.

Examples:
  matgraph leaves main.m
  matgraph leaves main.m --format=json`,
	Args: cobra.ExactArgs(1),
	Run:  runLeaves,
}

func init() {
	leavesCmd.Flags().BoolVar(&leavesForce, "force", false, "Rescan before querying")
	leavesCmd.Flags().StringVar(&leavesFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(leavesCmd)
}

func runLeaves(cmd *cobra.Command, args []string) {
	logger := newLogger(leavesFormat)

	projectRoot := mustGetProjectRoot()
	engine := mustGetEngine(projectRoot, logger)

	result, err := engine.PathsToLeaves(projectRoot, args[0], leavesForce)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error enumerating leaf paths: %v\n", err)
		os.Exit(1)
	}

	output, err := FormatResponse(result, OutputFormat(leavesFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(output)
}
