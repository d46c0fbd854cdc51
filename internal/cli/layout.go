package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/agentcanvas/pkg/canvas"
	"github.com/matzehuels/agentcanvas/pkg/snapshot"
)

// layoutCommand creates the layout command for offline snapshot relayout.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		spacing      float64
		snapshotPath string
		configPath   string
	)

	cmd := &cobra.Command{
		Use:   "layout <strategy>",
		Short: "Recompute node positions in a snapshot file",
		Long: `Recompute node positions in a persisted snapshot without a running server.

The snapshot is loaded into an in-memory canvas, the chosen strategy (grid,
hierarchical, or force) repositions every node, and the result is written
back to the same file.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"grid", "hierarchical", "force"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("spacing") {
				spacing = cfg.Layout.Spacing
			}
			return c.runLayout(cmd.Context(), args[0], spacing, snapshotPath)
		},
	}

	cmd.Flags().Float64Var(&spacing, "spacing", canvas.DefaultSpacing, "minimum node spacing")
	cmd.Flags().StringVar(&snapshotPath, "snapshot", defaultSnapshotPath(), "snapshot file to relayout")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: ~/.config/agentcanvas/config.toml)")

	return cmd
}

// runLayout loads the snapshot, applies the strategy, and writes it back.
func (c *CLI) runLayout(ctx context.Context, strategy string, spacing float64, path string) error {
	store, err := snapshot.NewFileStore(path, c.Logger)
	if err != nil {
		return err
	}

	snap := snapshot.LoadOrEmpty(ctx, store)
	if len(snap.Nodes) == 0 {
		printWarning("snapshot %s is empty, nothing to lay out", path)
		return nil
	}

	cv := canvas.New(c.Logger)
	nodes, edges := snap.Materialize()
	cv.SyncFromClient(nodes, edges)

	if err := cv.ApplyLayout(canvas.LayoutStrategy(strings.ToLower(strategy)), spacing); err != nil {
		return fmt.Errorf("apply layout: %w", err)
	}

	if err := store.Save(ctx, snapshot.FromState(cv.State())); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	printSuccess("applied %s layout to %d nodes", strategy, len(snap.Nodes))
	printFile(path)
	return nil
}
