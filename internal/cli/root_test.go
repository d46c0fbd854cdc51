package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/agentcanvas/pkg/snapshot"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	want := map[string]bool{"serve": false, "layout": false, "show": false}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestRunLayoutRewritesSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canvas.json")
	seed := `{
  "nodes": [
    {"id": "a", "type": "AGENT", "label": "A", "position": {"x": 5, "y": 5}},
    {"id": "b", "type": "AGENT", "label": "B", "position": {"x": 5, "y": 5}}
  ],
  "edges": []
}`
	if err := os.WriteFile(path, []byte(seed), 0644); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}

	c := New(io.Discard, LogInfo)
	if err := c.runLayout(context.Background(), "grid", 0, path); err != nil {
		t.Fatalf("runLayout: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	var snap snapshot.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("parse snapshot: %v", err)
	}
	if len(snap.Nodes) != 2 {
		t.Fatalf("nodes = %d, want 2", len(snap.Nodes))
	}
	// Grid layout moved the stacked nodes onto the root grid.
	if snap.Nodes[0].Position == snap.Nodes[1].Position {
		t.Error("nodes still share a position after grid layout")
	}
	for _, n := range snap.Nodes {
		if n.Position.X < 100 || n.Position.Y < 100 {
			t.Errorf("node %s at %+v, outside the root grid", n.ID, n.Position)
		}
	}
}

func TestRunLayoutEmptySnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canvas.json")
	c := New(io.Discard, LogInfo)
	// Missing snapshot file is not an error: nothing to lay out.
	if err := c.runLayout(context.Background(), "grid", 0, path); err != nil {
		t.Errorf("runLayout on empty: %v", err)
	}
}
