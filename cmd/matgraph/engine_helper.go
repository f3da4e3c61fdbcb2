package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"matgraph/internal/config"
	"matgraph/internal/logging"
	"matgraph/internal/query"
)

var (
	engineOnce   sync.Once
	sharedEngine *query.Engine
	engineErr    error
)

// getEngine returns a shared Query Engine instance.
// The engine is lazily initialized on first use.
func getEngine(projectRoot string, logger *logging.Logger) (*query.Engine, error) {
	engineOnce.Do(func() {
		cfg, err := config.LoadConfig(projectRoot)
		if err != nil {
			logger.Warn("Failed to load config, using defaults", map[string]interface{}{
				"error": err.Error(),
			})
			cfg = config.DefaultConfig()
		}

		sharedEngine, engineErr = query.NewEngine(cfg, logger)
	})

	return sharedEngine, engineErr
}

// mustGetEngine returns the shared Query Engine or exits on error.
func mustGetEngine(projectRoot string, logger *logging.Logger) *query.Engine {
	engine, err := getEngine(projectRoot, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing engine: %v\n", err)
		os.Exit(1)
	}
	return engine
}

// getProjectRoot resolves the project root from the --project flag,
// falling back to the current working directory.
func getProjectRoot() (string, error) {
	if projectFlag != "" {
		return filepath.Abs(projectFlag)
	}
	return os.Getwd()
}

// mustGetProjectRoot returns the project root or exits on error.
func mustGetProjectRoot() string {
	root, err := getProjectRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return root
}

// newLogger creates a logger matching the output format. Queries with
// json output log in json too, so stderr stays machine-readable.
func newLogger(format string) *logging.Logger {
	logFormat := logging.HumanFormat
	if format == "json" {
		logFormat = logging.JSONFormat
	}
	level := logging.InfoLevel
	if logLevelFlag != "" {
		level = logging.ParseLevel(logLevelFlag)
	}
	return logging.NewLogger(logging.Config{
		Format: logFormat,
		Level:  level,
	})
}
