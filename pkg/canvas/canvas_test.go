package canvas

import (
	"fmt"
	"strings"
	"testing"

	apperrors "github.com/matzehuels/agentcanvas/pkg/errors"
)

// recordingListener captures every notification for assertions.
type recordingListener struct {
	created []NodeState
	updated []NodeUpdate
	deleted []string

	edgesCreated []EdgeState
	edgesDeleted []string
}

func (r *recordingListener) OnNodeCreated(n NodeState)  { r.created = append(r.created, n) }
func (r *recordingListener) OnNodeUpdated(u NodeUpdate) { r.updated = append(r.updated, u) }
func (r *recordingListener) OnNodeDeleted(id string)    { r.deleted = append(r.deleted, id) }
func (r *recordingListener) OnEdgeCreated(e EdgeState)  { r.edgesCreated = append(r.edgesCreated, e) }
func (r *recordingListener) OnEdgeDeleted(id string)    { r.edgesDeleted = append(r.edgesDeleted, id) }

// countingScheduler counts persistence requests.
type countingScheduler struct{ calls int }

func (c *countingScheduler) Schedule() { c.calls++ }

// newTestCanvas builds a canvas with deterministic sequential IDs, a
// recording listener, and a counting scheduler.
func newTestCanvas(t *testing.T) (*Canvas, *recordingListener, *countingScheduler) {
	t.Helper()
	c := New(nil)
	seq := 0
	c.SetIDGenerator(func() string {
		seq++
		return fmt.Sprintf("id-%03d", seq)
	})
	listener := &recordingListener{}
	c.Notifier().Register(listener)
	sched := &countingScheduler{}
	c.SetScheduler(sched)
	return c, listener, sched
}

func mustCreate(t *testing.T, c *Canvas, typ, label, parentID string) string {
	t.Helper()
	res, err := c.CreateNode(typ, label, parentID, nil, nil)
	if err != nil {
		t.Fatalf("CreateNode(%s, %s): %v", typ, label, err)
	}
	return res.NodeID
}

// =============================================================================
// CreateNode
// =============================================================================

func TestCreateNode(t *testing.T) {
	c, listener, sched := newTestCanvas(t)

	res, err := c.CreateNode("agent", "Researcher", "", nil, nil)
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	if res.NodeID == "" {
		t.Error("NodeID is empty")
	}
	if res.Position != (Position{X: 100, Y: 100}) {
		t.Errorf("Position = %+v, want first grid slot", res.Position)
	}
	if len(listener.created) != 1 {
		t.Fatalf("created events = %d, want 1", len(listener.created))
	}
	if listener.created[0].Type != TypeAgent {
		t.Errorf("event type = %q, want AGENT", listener.created[0].Type)
	}
	if sched.calls != 1 {
		t.Errorf("schedule calls = %d, want 1", sched.calls)
	}
}

func TestCreateNodeValidation(t *testing.T) {
	c, _, _ := newTestCanvas(t)

	tests := []struct {
		name     string
		typ      string
		label    string
		parentID string
		wantCode apperrors.Code
	}{
		{name: "EmptyLabel", typ: "agent", label: "", wantCode: apperrors.ErrCodeInvalidInput},
		{name: "OverlongLabel", typ: "agent", label: strings.Repeat("x", 257), wantCode: apperrors.ErrCodeInvalidInput},
		{name: "MissingParent", typ: "agent", label: "Bot", parentID: "ghost", wantCode: apperrors.ErrCodeNodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.CreateNode(tt.typ, tt.label, tt.parentID, nil, nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := apperrors.GetCode(err); got != tt.wantCode {
				t.Errorf("code = %q, want %q", got, tt.wantCode)
			}
		})
	}
}

func TestCreateNodeExplicitPosition(t *testing.T) {
	c, _, _ := newTestCanvas(t)

	pos := Position{X: 42, Y: 17}
	res, err := c.CreateNode("agent", "Bot", "", &pos, nil)
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	if res.Position != pos {
		t.Errorf("Position = %+v, want explicit %+v", res.Position, pos)
	}
}

func TestCreateNodePoolChildPlacement(t *testing.T) {
	c, _, _ := newTestCanvas(t)

	poolID := mustCreate(t, c, "pool", "Workers", "")
	res, err := c.CreateNode("agent", "Worker 1", poolID, nil, nil)
	if err != nil {
		t.Fatalf("CreateNode child: %v", err)
	}
	// Pool landed at the first root slot (100,100); its first child sits at
	// the pool origin plus the container inset.
	want := Position{X: 140, Y: 180}
	if res.Position != want {
		t.Errorf("child position = %+v, want %+v", res.Position, want)
	}
}

func TestCreateNodeEnriches(t *testing.T) {
	c, _, _ := newTestCanvas(t)

	id := mustCreate(t, c, "agent", "Researcher", "")
	n, ok := c.store.Node(id)
	if !ok {
		t.Fatal("node not in store")
	}
	if n.Data["role"] == nil || n.Data["prompt"] == nil {
		t.Errorf("Data not enriched: %v", n.Data)
	}
}

func TestCreateNodeCoercesUnknownType(t *testing.T) {
	c, listener, _ := newTestCanvas(t)

	mustCreate(t, c, "vector store", "Embeddings", "")
	if got := listener.created[0].Type; got != NodeType("VECTOR_STORE") {
		t.Errorf("type = %q, want VECTOR_STORE", got)
	}
}

// =============================================================================
// ConnectNodes
// =============================================================================

func TestConnectNodes(t *testing.T) {
	c, listener, _ := newTestCanvas(t)
	a := mustCreate(t, c, "agent", "A", "")
	b := mustCreate(t, c, "agent", "B", "")

	res, err := c.ConnectNodes(a, b, "delegation", nil)
	if err != nil {
		t.Fatalf("ConnectNodes: %v", err)
	}
	if res.EdgeID == "" {
		t.Error("EdgeID is empty")
	}
	if len(listener.edgesCreated) != 1 {
		t.Fatalf("edge events = %d, want 1", len(listener.edgesCreated))
	}
	if listener.edgesCreated[0].EdgeType != EdgeDelegation {
		t.Errorf("edge type = %q, want delegation", listener.edgesCreated[0].EdgeType)
	}
}

func TestConnectNodesConflict(t *testing.T) {
	c, _, _ := newTestCanvas(t)
	a := mustCreate(t, c, "agent", "A", "")
	b := mustCreate(t, c, "agent", "B", "")

	if _, err := c.ConnectNodes(a, b, "data", nil); err != nil {
		t.Fatalf("first connect: %v", err)
	}

	// A second edge on the same ordered pair is rejected even with a
	// different edge type.
	_, err := c.ConnectNodes(a, b, "control", nil)
	if err == nil {
		t.Fatal("expected conflict")
	}
	if !apperrors.IsConflict(err) {
		t.Errorf("code = %q, want conflict", apperrors.GetCode(err))
	}
	wantMsg := fmt.Sprintf("edge from %s to %s already exists", a, b)
	if got := apperrors.UserMessage(err); got != wantMsg {
		t.Errorf("message = %q, want %q", got, wantMsg)
	}

	// The reverse pair is a distinct edge.
	if _, err := c.ConnectNodes(b, a, "data", nil); err != nil {
		t.Errorf("reverse connect: %v", err)
	}
}

func TestConnectNodesValidation(t *testing.T) {
	c, _, _ := newTestCanvas(t)
	a := mustCreate(t, c, "agent", "A", "")

	tests := []struct {
		name     string
		source   string
		target   string
		edgeType string
		wantCode apperrors.Code
	}{
		{name: "BadType", source: a, target: a, edgeType: "dependency", wantCode: apperrors.ErrCodeInvalidEdgeType},
		{name: "MissingSource", source: "ghost", target: a, edgeType: "data", wantCode: apperrors.ErrCodeNodeNotFound},
		{name: "MissingTarget", source: a, target: "ghost", edgeType: "data", wantCode: apperrors.ErrCodeNodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.ConnectNodes(tt.source, tt.target, tt.edgeType, nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := apperrors.GetCode(err); got != tt.wantCode {
				t.Errorf("code = %q, want %q", got, tt.wantCode)
			}
		})
	}
}

// =============================================================================
// UpdateProperty
// =============================================================================

func TestUpdateProperty(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		value any
		check func(t *testing.T, n *Node, u NodeUpdate)
	}{
		{
			name:  "Label",
			path:  "label",
			value: "Renamed",
			check: func(t *testing.T, n *Node, u NodeUpdate) {
				if n.Label != "Renamed" {
					t.Errorf("label = %q", n.Label)
				}
				if u.Label == nil || *u.Label != "Renamed" {
					t.Error("update event missing label")
				}
				if u.Position != nil || u.Data != nil || u.ParentID != nil {
					t.Error("update event carries more than the changed slice")
				}
			},
		},
		{
			name:  "Position",
			path:  "position",
			value: map[string]any{"x": 5.0, "y": 6.0},
			check: func(t *testing.T, n *Node, u NodeUpdate) {
				if n.Position != (Position{X: 5, Y: 6}) {
					t.Errorf("position = %+v", n.Position)
				}
				if u.Position == nil || *u.Position != (Position{X: 5, Y: 6}) {
					t.Error("update event missing position")
				}
			},
		},
		{
			name:  "PositionX",
			path:  "position.x",
			value: 77,
			check: func(t *testing.T, n *Node, u NodeUpdate) {
				if n.Position.X != 77 {
					t.Errorf("x = %v", n.Position.X)
				}
				if u.Position == nil {
					t.Error("update event missing position")
				}
			},
		},
		{
			name:  "NestedData",
			path:  "guardrails.maxTurns",
			value: 10,
			check: func(t *testing.T, n *Node, u NodeUpdate) {
				if v, _ := getPath(n.Data, "guardrails.maxTurns"); v != 10 {
					t.Errorf("maxTurns = %v", v)
				}
				if u.Data == nil || u.Data.Path != "guardrails.maxTurns" || u.Data.Value != 10 {
					t.Errorf("update event data = %+v", u.Data)
				}
				if u.Label != nil || u.Position != nil {
					t.Error("update event carries more than the changed slice")
				}
			},
		},
		{
			name:  "DeepNewPath",
			path:  "integrations.slack.channel",
			value: "#alerts",
			check: func(t *testing.T, n *Node, u NodeUpdate) {
				if v, _ := getPath(n.Data, "integrations.slack.channel"); v != "#alerts" {
					t.Errorf("channel = %v", v)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, listener, _ := newTestCanvas(t)
			id := mustCreate(t, c, "agent", "Bot", "")

			if err := c.UpdateProperty(id, tt.path, tt.value); err != nil {
				t.Fatalf("UpdateProperty: %v", err)
			}
			if len(listener.updated) != 1 {
				t.Fatalf("update events = %d, want 1", len(listener.updated))
			}
			n, _ := c.store.Node(id)
			tt.check(t, n, listener.updated[0])
		})
	}
}

func TestUpdatePropertyErrors(t *testing.T) {
	c, _, _ := newTestCanvas(t)
	id := mustCreate(t, c, "agent", "Bot", "")

	tests := []struct {
		name     string
		nodeID   string
		path     string
		value    any
		wantCode apperrors.Code
	}{
		{name: "MissingNode", nodeID: "ghost", path: "label", value: "x", wantCode: apperrors.ErrCodeNodeNotFound},
		{name: "EmptyPath", nodeID: id, path: "", value: "x", wantCode: apperrors.ErrCodeInvalidPath},
		{name: "EmptySegment", nodeID: id, path: "a..b", value: "x", wantCode: apperrors.ErrCodeInvalidPath},
		{name: "NonStringLabel", nodeID: id, path: "label", value: 7, wantCode: apperrors.ErrCodeInvalidInput},
		{name: "NonNumericPosition", nodeID: id, path: "position", value: "nope", wantCode: apperrors.ErrCodeInvalidInput},
		{name: "MissingNewParent", nodeID: id, path: "parentId", value: "ghost", wantCode: apperrors.ErrCodeNodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.UpdateProperty(tt.nodeID, tt.path, tt.value)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := apperrors.GetCode(err); got != tt.wantCode {
				t.Errorf("code = %q, want %q", got, tt.wantCode)
			}
		})
	}
}

func TestUpdatePropertyReparent(t *testing.T) {
	c, listener, _ := newTestCanvas(t)
	dept := mustCreate(t, c, "department", "Research", "")
	agent := mustCreate(t, c, "agent", "Bot", "")

	if err := c.UpdateProperty(agent, "parentId", dept); err != nil {
		t.Fatalf("reparent: %v", err)
	}
	n, _ := c.store.Node(agent)
	if n.ParentID != dept {
		t.Errorf("ParentID = %q, want %q", n.ParentID, dept)
	}
	last := listener.updated[len(listener.updated)-1]
	if last.ParentID == nil || *last.ParentID != dept {
		t.Error("update event missing parentId")
	}
}

func TestUpdatePropertyRejectsParentCycle(t *testing.T) {
	c, _, _ := newTestCanvas(t)
	a := mustCreate(t, c, "department", "A", "")
	b := mustCreate(t, c, "department", "B", a)
	d := mustCreate(t, c, "department", "C", b)

	tests := []struct {
		name   string
		node   string
		parent string
	}{
		{name: "SelfParent", node: a, parent: a},
		{name: "DirectCycle", node: a, parent: b},
		{name: "TransitiveCycle", node: a, parent: d},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.UpdateProperty(tt.node, "parentId", tt.parent)
			if err == nil {
				t.Fatal("expected cycle rejection")
			}
			if got := apperrors.GetCode(err); got != apperrors.ErrCodeCyclicParent {
				t.Errorf("code = %q, want CYCLIC_PARENT", got)
			}
		})
	}

	// Moving a leaf somewhere legal still works.
	if err := c.UpdateProperty(d, "parentId", a); err != nil {
		t.Errorf("legal reparent: %v", err)
	}
}

// =============================================================================
// DeleteNode
// =============================================================================

func TestDeleteNodeCascade(t *testing.T) {
	c, listener, sched := newTestCanvas(t)

	dept := mustCreate(t, c, "department", "Research", "")
	pool := mustCreate(t, c, "pool", "Workers", dept)
	w1 := mustCreate(t, c, "agent", "W1", pool)
	w2 := mustCreate(t, c, "agent", "W2", pool)
	outside := mustCreate(t, c, "agent", "Outside", "")

	if _, err := c.ConnectNodes(outside, w1, "delegation", nil); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := c.ConnectNodes(w1, w2, "data", nil); err != nil {
		t.Fatalf("connect: %v", err)
	}

	schedBefore := sched.calls
	if err := c.DeleteNode(dept); err != nil {
		t.Fatalf("DeleteNode: %v", err)
	}

	// Department, pool, and both workers are gone; the outside node stays.
	if got := c.store.NodeCount(); got != 1 {
		t.Errorf("NodeCount = %d, want 1", got)
	}
	if _, ok := c.store.Node(outside); !ok {
		t.Error("outside node was removed")
	}
	if got := c.store.EdgeCount(); got != 0 {
		t.Errorf("EdgeCount = %d, want 0", got)
	}

	// One delete event per removed entity.
	if got := len(listener.deleted); got != 4 {
		t.Errorf("node delete events = %d, want 4", got)
	}
	if got := len(listener.edgesDeleted); got != 2 {
		t.Errorf("edge delete events = %d, want 2", got)
	}

	// The cascade persists exactly once.
	if got := sched.calls - schedBefore; got != 1 {
		t.Errorf("schedule calls during cascade = %d, want 1", got)
	}
}

func TestDeleteNodeMissing(t *testing.T) {
	c, _, _ := newTestCanvas(t)
	err := c.DeleteNode("ghost")
	if !apperrors.IsNotFound(err) {
		t.Errorf("code = %q, want not-found", apperrors.GetCode(err))
	}
}

// =============================================================================
// State, Clear, SyncFromClient
// =============================================================================

func TestState(t *testing.T) {
	c, _, _ := newTestCanvas(t)
	a := mustCreate(t, c, "agent", "A", "")
	b := mustCreate(t, c, "agent", "B", "")
	if _, err := c.ConnectNodes(a, b, "data", nil); err != nil {
		t.Fatalf("connect: %v", err)
	}

	st := c.State()
	if len(st.Nodes) != 2 || len(st.Edges) != 1 {
		t.Fatalf("state = %d nodes, %d edges", len(st.Nodes), len(st.Edges))
	}
	// Sorted by ID.
	if st.Nodes[0].ID > st.Nodes[1].ID {
		t.Error("nodes not sorted by ID")
	}
	// Node state excludes data payloads by construction; spot-check that
	// labels and positions survived.
	if st.Nodes[0].Label == "" {
		t.Error("node state missing label")
	}
	if st.Edges[0].EdgeType != EdgeData {
		t.Errorf("edge type = %q", st.Edges[0].EdgeType)
	}
}

func TestClear(t *testing.T) {
	c, listener, sched := newTestCanvas(t)
	mustCreate(t, c, "agent", "A", "")
	mustCreate(t, c, "agent", "B", "")

	schedBefore := sched.calls
	c.Clear()

	if got := c.store.NodeCount(); got != 0 {
		t.Errorf("NodeCount = %d, want 0", got)
	}
	if got := len(listener.deleted); got != 2 {
		t.Errorf("delete events = %d, want 2", got)
	}
	if got := sched.calls - schedBefore; got != 1 {
		t.Errorf("schedule calls = %d, want 1", got)
	}
}

func TestSyncFromClient(t *testing.T) {
	c, listener, sched := newTestCanvas(t)
	mustCreate(t, c, "agent", "Stale", "")

	nodes := []*Node{
		{ID: "n1", Type: TypeAgent, Label: "Synced", Position: Position{X: 1, Y: 2}},
		{ID: "n2", Type: TypePool, Label: "Pool"},
	}
	edges := []*Edge{
		{ID: "e1", SourceID: "n1", TargetID: "n2", EdgeType: EdgeControl},
	}

	eventsBefore := len(listener.created) + len(listener.deleted)
	schedBefore := sched.calls
	c.SyncFromClient(nodes, edges)

	st := c.State()
	if len(st.Nodes) != 2 || len(st.Edges) != 1 {
		t.Fatalf("state after sync = %d nodes, %d edges", len(st.Nodes), len(st.Edges))
	}
	if _, ok := c.store.Node("id-001"); ok {
		t.Error("pre-sync node survived replacement")
	}

	// Sync emits no change notifications and persists once.
	if got := len(listener.created) + len(listener.deleted); got != eventsBefore {
		t.Error("sync emitted change notifications")
	}
	if got := sched.calls - schedBefore; got != 1 {
		t.Errorf("schedule calls = %d, want 1", got)
	}
}
