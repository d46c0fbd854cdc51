package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/agentcanvas/pkg/canvas"
	"github.com/matzehuels/agentcanvas/pkg/snapshot"
)

// showCommand creates the show command that summarizes the persisted graph.
func (c *CLI) showCommand() *cobra.Command {
	var snapshotPath string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a summary of the persisted graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runShow(cmd.Context(), snapshotPath)
		},
	}

	cmd.Flags().StringVar(&snapshotPath, "snapshot", defaultSnapshotPath(), "snapshot file to inspect")

	return cmd
}

// runShow loads the snapshot and prints a styled summary.
func (c *CLI) runShow(ctx context.Context, path string) error {
	store, err := snapshot.NewFileStore(path, c.Logger)
	if err != nil {
		return err
	}

	snap := snapshot.LoadOrEmpty(ctx, store)

	fmt.Println(StyleTitle.Render("Canvas"))
	printFile(path)
	printStats(len(snap.Nodes), len(snap.Edges))
	printNewline()

	if len(snap.Nodes) == 0 {
		printInfo("canvas is empty")
		return nil
	}

	byType := make(map[canvas.NodeType]int)
	for _, n := range snap.Nodes {
		byType[n.Type]++
	}
	for _, t := range []canvas.NodeType{
		canvas.TypeAgent, canvas.TypeHook, canvas.TypeMCPServer, canvas.TypeCommand,
		canvas.TypeSkill, canvas.TypePool, canvas.TypeDepartment,
	} {
		if byType[t] > 0 {
			printKeyValue(string(t), fmt.Sprintf("%d", byType[t]))
			delete(byType, t)
		}
	}
	// Coerced categories outside the closed set, if any.
	for t, count := range byType {
		printKeyValue(string(t), fmt.Sprintf("%d", count))
	}

	printNewline()
	for _, n := range snap.Nodes {
		label := n.Label
		if label == "" {
			label = n.ID
		}
		line := StyleValue.Render(label) + " " + StyleDim.Render(fmt.Sprintf("(%s)", n.Type))
		if n.ParentID != "" {
			line += StyleDim.Render(" in " + n.ParentID)
		}
		fmt.Println("  " + line)
	}

	if len(snap.Edges) > 0 {
		printNewline()
		for _, e := range snap.Edges {
			fmt.Println("  " + StyleDim.Render(e.SourceID) + " " + StyleHighlight.Render(iconArrow) + " " +
				StyleDim.Render(e.TargetID) + " " + StyleDim.Render(fmt.Sprintf("[%s]", e.EdgeType)))
		}
	}

	return nil
}
