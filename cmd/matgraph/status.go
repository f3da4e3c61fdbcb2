package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	statusFormat string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what matgraph knows about a project",
	Long: `Display cache and persistence state for a project without
triggering a scan: whether a snapshot is cached in memory, whether a
persisted scan exists on disk, and the last scan's headline numbers.`,
	Run: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	logger := newLogger(statusFormat)

	projectRoot := mustGetProjectRoot()
	engine := mustGetEngine(projectRoot, logger)

	result, err := engine.Status(projectRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting status: %v\n", err)
		os.Exit(1)
	}

	output, err := FormatResponse(result, OutputFormat(statusFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(output)
}
