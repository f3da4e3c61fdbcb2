package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	pathForce  bool
	pathFormat string
)

var pathCmd = &cobra.Command{
	Use:   "path <fromScript> <toScript>",
	Short: "Find the shortest call path between two scripts",
	Long: `Find the shortest chain of script-level calls leading from one
script to another. A script trivially reaches itself with a single-
element path. Exits with status 2 when no path exists.

Examples:
  matgraph path main.m util/solver.m
  matgraph path main.m plot_results.m --format=json`,
	Args: cobra.ExactArgs(2),
	Run:  runPath,
}

func init() {
	pathCmd.Flags().BoolVar(&pathForce, "force", false, "Rescan before querying")
	pathCmd.Flags().StringVar(&pathFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(pathCmd)
}

func runPath(cmd *cobra.Command, args []string) {
	logger := newLogger(pathFormat)

	projectRoot := mustGetProjectRoot()
	engine := mustGetEngine(projectRoot, logger)

	result, err := engine.PathBetween(projectRoot, args[0], args[1], pathForce)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error finding path: %v\n", err)
		os.Exit(1)
	}

	output, err := FormatResponse(result, OutputFormat(pathFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(output)

	if !result.Found {
		os.Exit(2)
	}
}
