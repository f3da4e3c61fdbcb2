package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	impactRoots  []string
	impactForce  bool
	impactFormat string
)

var impactCmd = &cobra.Command{
	Use:   "impact <changedScript> [changedScript...]",
	Short: "Analyze change impact for a set of scripts",
	Long: `Analyze the blast radius of changing one or more scripts.

For each changed script, reports:
  - Upstream: every call path from an entry root down to the script
  - Downstream: every call path from the script to its leaves

Roots default to entrypoints declared in matgraph.toml, falling back
to auto-detected graph roots (scripts nothing else calls).

Examples:
  matgraph impact util/solver.m
  matgraph impact a.m b.m --roots=main.m
  matgraph impact util/solver.m --format=json`,
	Args: cobra.MinimumNArgs(1),
	Run:  runImpactCmd,
}

func init() {
	impactCmd.Flags().StringSliceVar(&impactRoots, "roots", nil, "Override entry roots for upstream paths")
	impactCmd.Flags().BoolVar(&impactForce, "force", false, "Rescan before querying")
	impactCmd.Flags().StringVar(&impactFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(impactCmd)
}

func runImpactCmd(cmd *cobra.Command, args []string) {
	start := time.Now()
	logger := newLogger(impactFormat)

	projectRoot := mustGetProjectRoot()
	engine := mustGetEngine(projectRoot, logger)

	result, err := engine.Impact(projectRoot, args, impactRoots, impactForce)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error analyzing impact: %v\n", err)
		os.Exit(1)
	}

	output, err := FormatResponse(result, OutputFormat(impactFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(output)

	logger.Debug("Impact analysis completed", map[string]interface{}{
		"changed":  len(args),
		"duration": time.Since(start).Milliseconds(),
	})
}
