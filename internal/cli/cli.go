// Package cli implements the agentcanvas command-line interface.
//
// This package provides commands for running the canvas HTTP server, applying
// layout strategies to persisted snapshots, and inspecting the stored graph.
// The CLI is built using cobra and supports verbose logging via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - serve: Run the canvas HTTP API with snapshot persistence
//   - layout: Recompute node positions in a snapshot file offline
//   - show: Print a styled summary of the persisted graph
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The shared
// logger lives on the CLI struct and is injected into the canvas and the
// snapshot writer.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/agentcanvas/pkg/buildinfo"
)

// appName is the application name used for directories and display.
const appName = "agentcanvas"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Agentcanvas is the graph engine behind the agent workflow canvas",
		Long:         `Agentcanvas manages the node-and-edge graph of a visual AI-agent workflow: creating and connecting workflow entities, enriching sparse configurations, planning positions, and persisting light snapshots.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.showCommand())

	return root
}

// =============================================================================
// Paths
// =============================================================================

// configDir returns the configuration directory using the XDG standard
// (~/.config/agentcanvas/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// defaultSnapshotPath returns the default snapshot file location.
func defaultSnapshotPath() string {
	dir, err := configDir()
	if err != nil {
		return "canvas.json"
	}
	return filepath.Join(dir, "canvas.json")
}
