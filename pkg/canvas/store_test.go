package canvas

import (
	"slices"
	"testing"
)

func TestStoreNodes(t *testing.T) {
	s := NewStore()

	s.AddNode(&Node{ID: "a", Type: TypeAgent})
	s.AddNode(&Node{ID: "b", Type: TypePool})
	s.AddNode(&Node{ID: "c", Type: TypeAgent, ParentID: "b"})

	if got := s.NodeCount(); got != 3 {
		t.Fatalf("NodeCount = %d, want 3", got)
	}
	if _, ok := s.Node("a"); !ok {
		t.Error("Node(a) not found")
	}
	if _, ok := s.Node("missing"); ok {
		t.Error("Node(missing) found")
	}
	if got := s.ChildCount("b"); got != 1 {
		t.Errorf("ChildCount(b) = %d, want 1", got)
	}
	if got := s.RootCount(); got != 2 {
		t.Errorf("RootCount = %d, want 2", got)
	}

	s.RemoveNode("c")
	if got := s.ChildCount("b"); got != 0 {
		t.Errorf("ChildCount(b) after removal = %d, want 0", got)
	}
	if got := s.NodeCount(); got != 2 {
		t.Errorf("NodeCount after removal = %d, want 2", got)
	}
}

func TestStoreReparent(t *testing.T) {
	s := NewStore()
	s.AddNode(&Node{ID: "p1", Type: TypePool})
	s.AddNode(&Node{ID: "p2", Type: TypePool})
	s.AddNode(&Node{ID: "c", Type: TypeAgent, ParentID: "p1"})

	s.Reparent("c", "p2")

	if got := s.ChildCount("p1"); got != 0 {
		t.Errorf("ChildCount(p1) = %d, want 0", got)
	}
	if got := s.Children("p2"); !slices.Contains(got, "c") {
		t.Errorf("Children(p2) = %v, want [c]", got)
	}
	n, _ := s.Node("c")
	if n.ParentID != "p2" {
		t.Errorf("ParentID = %q, want p2", n.ParentID)
	}

	// Detach to root.
	s.Reparent("c", "")
	if n.ParentID != "" {
		t.Errorf("ParentID after detach = %q, want empty", n.ParentID)
	}
	if got := s.RootCount(); got != 3 {
		t.Errorf("RootCount = %d, want 3", got)
	}
}

func TestStoreEdgePairIndex(t *testing.T) {
	s := NewStore()
	s.AddNode(&Node{ID: "a"})
	s.AddNode(&Node{ID: "b"})
	s.AddEdge(&Edge{ID: "e1", SourceID: "a", TargetID: "b", EdgeType: EdgeData})

	if id, ok := s.EdgeBetween("a", "b"); !ok || id != "e1" {
		t.Errorf("EdgeBetween(a, b) = %q, %v, want e1, true", id, ok)
	}
	// The reverse pair is distinct.
	if _, ok := s.EdgeBetween("b", "a"); ok {
		t.Error("EdgeBetween(b, a) found, want absent")
	}

	s.RemoveEdge("e1")
	if _, ok := s.EdgeBetween("a", "b"); ok {
		t.Error("EdgeBetween(a, b) found after removal")
	}
	if got := s.EdgeCount(); got != 0 {
		t.Errorf("EdgeCount = %d, want 0", got)
	}
}

func TestStoreEdgesTouching(t *testing.T) {
	s := NewStore()
	for _, id := range []string{"a", "b", "c"} {
		s.AddNode(&Node{ID: id})
	}
	s.AddEdge(&Edge{ID: "e1", SourceID: "a", TargetID: "b"})
	s.AddEdge(&Edge{ID: "e2", SourceID: "b", TargetID: "c"})
	s.AddEdge(&Edge{ID: "e3", SourceID: "c", TargetID: "a"})

	got := s.EdgesTouching("b")
	slices.Sort(got)
	if !slices.Equal(got, []string{"e1", "e2"}) {
		t.Errorf("EdgesTouching(b) = %v, want [e1 e2]", got)
	}
}

func TestStoreSortedOutput(t *testing.T) {
	s := NewStore()
	for _, id := range []string{"c", "a", "b"} {
		s.AddNode(&Node{ID: id})
	}

	var ids []string
	for _, n := range s.SortedNodes() {
		ids = append(ids, n.ID)
	}
	if !slices.Equal(ids, []string{"a", "b", "c"}) {
		t.Errorf("SortedNodes order = %v, want [a b c]", ids)
	}
}

func TestStoreClear(t *testing.T) {
	s := NewStore()
	s.AddNode(&Node{ID: "a"})
	s.AddNode(&Node{ID: "b", ParentID: "a"})
	s.AddEdge(&Edge{ID: "e", SourceID: "a", TargetID: "b"})

	s.Clear()

	if s.NodeCount() != 0 || s.EdgeCount() != 0 {
		t.Errorf("counts after Clear = %d nodes, %d edges, want 0, 0", s.NodeCount(), s.EdgeCount())
	}
	if _, ok := s.EdgeBetween("a", "b"); ok {
		t.Error("pair index survived Clear")
	}
	if s.ChildCount("a") != 0 {
		t.Error("containment index survived Clear")
	}
}
