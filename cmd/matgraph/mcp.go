package main

import (
	"os"

	"github.com/spf13/cobra"

	"matgraph/internal/config"
	"matgraph/internal/logging"
	"matgraph/internal/mcp"
	"matgraph/internal/version"
	"matgraph/internal/watcher"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for agent integration",
	Long: `Start the Model Context Protocol (MCP) server.

The MCP server lets agents query MATLAB call structure over stdio
using JSON-RPC 2.0. It exposes the following tools:
  - scanProject: Scan a project and return the index views
  - analyzeEntry: Full recursive descent from an entry script
  - getCallPath: Shortest call path between two scripts
  - getPathsToLeaves: Simple paths from a script to its leaves
  - analyzeImpact: Upstream/downstream impact of changed scripts
  - resetProject: Drop the cached and persisted snapshot for a project
  - getStatus: Cache and persistence state without scanning
  - matlab_recursive_analyze: Combined entry/target analysis

With --watch, script changes on disk invalidate the cached snapshot
so the next query rescans.

This command is typically invoked by MCP clients and not directly
by users.`,
	RunE: runMCP,
}

var (
	mcpWatch bool
)

func init() {
	mcpCmd.Flags().BoolVar(&mcpWatch, "watch", false, "Invalidate cached snapshots when scripts change")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	// stdout carries the protocol, so logs go to stderr as JSON
	logger := logging.NewLogger(logging.Config{
		Format: logging.JSONFormat,
		Level:  logging.InfoLevel,
		Output: os.Stderr,
	})

	logger.Info("Starting MCP server", map[string]interface{}{
		"version": version.Version,
	})

	projectRoot := mustGetProjectRoot()
	engine := mustGetEngine(projectRoot, logger)

	if mcpWatch {
		cfg, err := config.LoadConfig(projectRoot)
		if err != nil {
			cfg = config.DefaultConfig()
		}
		w, err := watcher.New(cfg.Watcher.DebounceMs, logger, func(root string) {
			if err := engine.Reset(root); err != nil {
				logger.Warn("Snapshot invalidation failed", map[string]interface{}{
					"root":  root,
					"error": err.Error(),
				})
			}
		})
		if err != nil {
			return err
		}
		defer w.Close()

		if err := w.WatchProject(projectRoot); err != nil {
			logger.Warn("Watch setup failed, continuing without invalidation", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	server := mcp.NewServer(version.Version, engine, logger)

	if err := server.Start(); err != nil {
		logger.Error("MCP server error", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	return nil
}
