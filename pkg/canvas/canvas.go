package canvas

import (
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	apperrors "github.com/matzehuels/agentcanvas/pkg/errors"
)

// Scheduler requests an asynchronous persistence write. Implementations
// coalesce rapid successive requests; the canvas never waits on disk.
type Scheduler interface {
	Schedule()
}

// Canvas is the mutation API over the graph store. It owns the store, the
// change notifier, and the persistence scheduler, and is the only way nodes
// and edges are created, mutated, or destroyed.
//
// All exported operations are serialized behind one mutex, so each runs to
// completion before another can interleave. Internal failures never escape
// as panics: they are converted to INTERNAL_ERROR results.
type Canvas struct {
	mu       sync.Mutex
	store    *Store
	notifier *Notifier
	logger   *log.Logger
	persist  Scheduler
	newID    func() string
}

// New creates an empty canvas. A nil logger discards all output.
func New(logger *log.Logger) *Canvas {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Canvas{
		store:    NewStore(),
		notifier: NewNotifier(),
		logger:   logger,
		newID:    uuid.NewString,
	}
}

// SetScheduler attaches the persistence scheduler. Without one, mutations
// simply skip the persistence step (useful in tests).
func (c *Canvas) SetScheduler(s Scheduler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.persist = s
}

// SetIDGenerator overrides the node/edge ID generator.
// Intended for deterministic tests; the default is uuid.NewString.
func (c *Canvas) SetIDGenerator(f func() string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.newID = f
}

// Notifier returns the canvas change notifier for listener registration.
func (c *Canvas) Notifier() *Notifier { return c.notifier }

// schedule requests a persistence write if a scheduler is attached.
// Must be called with the canvas lock held.
func (c *Canvas) schedule() {
	if c.persist != nil {
		c.persist.Schedule()
	}
}

// guard converts a panic in an exported operation into an INTERNAL_ERROR
// result, so no exception ever crosses the API boundary.
func (c *Canvas) guard(err *error) {
	if r := recover(); r != nil {
		c.logger.Error("canvas operation panicked", "panic", r)
		*err = apperrors.New(apperrors.ErrCodeInternal, "unexpected failure: %v", r)
	}
}

// =============================================================================
// CreateNode
// =============================================================================

// CreateNode normalizes the type, plans a position unless one is given,
// enriches the config, and inserts the node. A parent reference, when given,
// must exist. Emits NodeCreated and schedules a persistence write.
func (c *Canvas) CreateNode(typ, label, parentID string, pos *Position, config map[string]any) (result CreateResult, err error) {
	defer c.guard(&err)
	c.mu.Lock()
	defer c.mu.Unlock()

	if verr := apperrors.ValidateLabel(label); verr != nil {
		return CreateResult{}, verr
	}

	var parent *Node
	if parentID != "" {
		var ok bool
		parent, ok = c.store.Node(parentID)
		if !ok {
			return CreateResult{}, apperrors.New(apperrors.ErrCodeNodeNotFound, "parent node %s not found", parentID)
		}
	}

	t := NormalizeType(typ)
	if !IsCanonicalType(t) {
		c.logger.Debug("coerced unrecognized node type", "input", typ, "coerced", t)
	}

	position := PlanPosition(parent, c.siblingCount(parentID))
	if pos != nil {
		position = *pos
	}

	node := &Node{
		ID:       c.newID(),
		Type:     t,
		Label:    label,
		Position: position,
		ParentID: parentID,
		Data:     EnrichConfig(t, label, config),
	}
	c.store.AddNode(node)

	c.logger.Debug("node created", "id", node.ID, "type", node.Type, "label", node.Label)
	c.notifier.nodeCreated(nodeState(node))
	c.schedule()

	return CreateResult{NodeID: node.ID, Position: position}, nil
}

// siblingCount returns the number of nodes sharing the given parent
// ("" counts root nodes). Must be called with the lock held.
func (c *Canvas) siblingCount(parentID string) int {
	if parentID == "" {
		return c.store.RootCount()
	}
	return c.store.ChildCount(parentID)
}

// =============================================================================
// ConnectNodes
// =============================================================================

// ConnectNodes inserts a typed edge between two existing nodes. At most one
// edge may exist per ordered endpoint pair, regardless of edge type; the
// reverse pair is a distinct edge. Emits EdgeCreated and schedules a
// persistence write.
func (c *Canvas) ConnectNodes(sourceID, targetID, edgeType string, data map[string]any) (result ConnectResult, err error) {
	defer c.guard(&err)
	c.mu.Lock()
	defer c.mu.Unlock()

	et, ok := ParseEdgeType(edgeType)
	if !ok {
		return ConnectResult{}, apperrors.New(apperrors.ErrCodeInvalidEdgeType,
			"invalid edge type %q (must be one of: data, control, event, delegation, failover)", edgeType)
	}

	if _, ok := c.store.Node(sourceID); !ok {
		return ConnectResult{}, apperrors.New(apperrors.ErrCodeNodeNotFound, "source node %s not found", sourceID)
	}
	if _, ok := c.store.Node(targetID); !ok {
		return ConnectResult{}, apperrors.New(apperrors.ErrCodeNodeNotFound, "target node %s not found", targetID)
	}
	if _, exists := c.store.EdgeBetween(sourceID, targetID); exists {
		return ConnectResult{}, apperrors.New(apperrors.ErrCodeEdgeConflict,
			"edge from %s to %s already exists", sourceID, targetID)
	}

	edge := &Edge{
		ID:       c.newID(),
		SourceID: sourceID,
		TargetID: targetID,
		EdgeType: et,
		Data:     data,
	}
	c.store.AddEdge(edge)

	c.logger.Debug("edge created", "id", edge.ID, "source", sourceID, "target", targetID, "type", et)
	c.notifier.edgeCreated(edgeState(edge))
	c.schedule()

	return ConnectResult{EdgeID: edge.ID}, nil
}

// =============================================================================
// UpdateProperty
// =============================================================================

// UpdateProperty mutates a single property addressed by a dot-separated path.
//
// Top-level special cases: "label" replaces the display label, "position",
// "position.x", and "position.y" replace the coordinate or a component, and
// "parentId" reparents the node (the new parent must exist and must not
// introduce a containment cycle). Every other path mutates the node's data
// tree, creating intermediate objects as needed.
//
// The NodeUpdated notification carries only the changed slice.
func (c *Canvas) UpdateProperty(nodeID, path string, value any) (err error) {
	defer c.guard(&err)
	c.mu.Lock()
	defer c.mu.Unlock()

	if verr := apperrors.ValidatePropertyPath(path); verr != nil {
		return verr
	}

	node, ok := c.store.Node(nodeID)
	if !ok {
		return apperrors.New(apperrors.ErrCodeNodeNotFound, "node %s not found", nodeID)
	}

	var update NodeUpdate
	update.NodeID = nodeID

	switch path {
	case "label":
		label, ok := value.(string)
		if !ok {
			return apperrors.New(apperrors.ErrCodeInvalidInput, "label must be a string, got %T", value)
		}
		if verr := apperrors.ValidateLabel(label); verr != nil {
			return verr
		}
		node.Label = label
		update.Label = &label

	case "position":
		pos, perr := coercePosition(value)
		if perr != nil {
			return perr
		}
		node.Position = pos
		update.Position = &pos

	case "position.x":
		x, ok := coerceFloat(value)
		if !ok {
			return apperrors.New(apperrors.ErrCodeInvalidInput, "position.x must be a number, got %T", value)
		}
		node.Position.X = x
		pos := node.Position
		update.Position = &pos

	case "position.y":
		y, ok := coerceFloat(value)
		if !ok {
			return apperrors.New(apperrors.ErrCodeInvalidInput, "position.y must be a number, got %T", value)
		}
		node.Position.Y = y
		pos := node.Position
		update.Position = &pos

	case "parentId":
		parentID, ok := value.(string)
		if !ok {
			return apperrors.New(apperrors.ErrCodeInvalidInput, "parentId must be a string, got %T", value)
		}
		if parentID != "" {
			if _, ok := c.store.Node(parentID); !ok {
				return apperrors.New(apperrors.ErrCodeNodeNotFound, "parent node %s not found", parentID)
			}
			if c.wouldCycle(nodeID, parentID) {
				return apperrors.New(apperrors.ErrCodeCyclicParent,
					"setting parent of %s to %s would create a containment cycle", nodeID, parentID)
			}
		}
		c.store.Reparent(nodeID, parentID)
		update.ParentID = &parentID

	default:
		if node.Data == nil {
			node.Data = make(map[string]any)
		}
		setPath(node.Data, path, value)
		update.Data = &DataPatch{Path: path, Value: value}
	}

	c.notifier.nodeUpdated(update)
	c.schedule()
	return nil
}

// wouldCycle reports whether making newParentID the parent of nodeID would
// create a cycle in the containment chain. The walk carries a visited set as
// defense in depth against pre-existing corruption.
func (c *Canvas) wouldCycle(nodeID, newParentID string) bool {
	visited := make(map[string]bool)
	for current := newParentID; current != ""; {
		if current == nodeID {
			return true
		}
		if visited[current] {
			return true
		}
		visited[current] = true
		n, ok := c.store.Node(current)
		if !ok {
			return false
		}
		current = n.ParentID
	}
	return false
}

// =============================================================================
// DeleteNode
// =============================================================================

// DeleteNode removes a node, every edge touching it, and transitively every
// node whose parent chain reaches it (depth-first). One delete notification
// is emitted per removed entity; the cascade persists exactly once at the
// outermost call.
func (c *Canvas) DeleteNode(nodeID string) (err error) {
	defer c.guard(&err)
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.store.Node(nodeID); !ok {
		return apperrors.New(apperrors.ErrCodeNodeNotFound, "node %s not found", nodeID)
	}

	removed := c.deleteCascade(nodeID, make(map[string]bool))
	c.logger.Debug("node deleted", "id", nodeID, "removed", removed)
	c.schedule()
	return nil
}

// deleteCascade removes the node, its touching edges, and its descendants.
// The visited set guards against containment cycles in corrupted snapshots.
// Returns the number of removed nodes. Must be called with the lock held.
func (c *Canvas) deleteCascade(nodeID string, visited map[string]bool) int {
	if visited[nodeID] {
		return 0
	}
	visited[nodeID] = true

	removed := 1

	// Children index mutates during removal, so iterate a copy.
	children := append([]string(nil), c.store.Children(nodeID)...)
	for _, child := range children {
		removed += c.deleteCascade(child, visited)
	}

	for _, edgeID := range c.store.EdgesTouching(nodeID) {
		c.store.RemoveEdge(edgeID)
		c.notifier.edgeDeleted(edgeID)
	}

	c.store.RemoveNode(nodeID)
	c.notifier.nodeDeleted(nodeID)
	return removed
}

// =============================================================================
// State, Clear, SyncFromClient
// =============================================================================

// State returns the sanitized relational snapshot of the canvas: ids, types,
// labels, positions, and parent links for nodes, endpoints and edge types for
// edges. Data payloads are deliberately excluded so lightweight consumers
// never receive large configuration blobs. Output is sorted by ID.
func (c *Canvas) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Canvas) stateLocked() State {
	st := State{
		Nodes: make([]NodeState, 0, c.store.NodeCount()),
		Edges: make([]EdgeState, 0, c.store.EdgeCount()),
	}
	for _, n := range c.store.SortedNodes() {
		st.Nodes = append(st.Nodes, nodeState(n))
	}
	for _, e := range c.store.SortedEdges() {
		st.Edges = append(st.Edges, edgeState(e))
	}
	return st
}

// Clear empties the canvas. A delete notification is emitted for every node,
// then an empty snapshot is persisted.
func (c *Canvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, n := range c.store.SortedNodes() {
		c.notifier.nodeDeleted(n.ID)
	}
	c.store.Clear()
	c.schedule()
}

// SyncFromClient replaces the whole graph with an externally authoritative
// snapshot. No per-entity validation is performed and no change notifications
// are emitted: the caller already owns the rendered truth. The replacement is
// persisted once.
func (c *Canvas) SyncFromClient(nodes []*Node, edges []*Edge) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store.Clear()
	for _, n := range nodes {
		c.store.AddNode(n)
	}
	for _, e := range edges {
		c.store.AddEdge(e)
	}
	c.logger.Debug("graph replaced from client", "nodes", len(nodes), "edges", len(edges))
	c.schedule()
}

// =============================================================================
// Conversions
// =============================================================================

func nodeState(n *Node) NodeState {
	return NodeState{
		ID:       n.ID,
		Type:     n.Type,
		Label:    n.Label,
		Position: n.Position,
		ParentID: n.ParentID,
	}
}

func edgeState(e *Edge) EdgeState {
	return EdgeState{
		ID:       e.ID,
		SourceID: e.SourceID,
		TargetID: e.TargetID,
		EdgeType: e.EdgeType,
	}
}

// coercePosition accepts a Position, a pointer to one, or a JSON-shaped map
// with numeric x/y fields.
func coercePosition(value any) (Position, error) {
	switch v := value.(type) {
	case Position:
		return v, nil
	case *Position:
		if v != nil {
			return *v, nil
		}
	case map[string]any:
		x, okX := coerceFloat(v["x"])
		y, okY := coerceFloat(v["y"])
		if okX && okY {
			return Position{X: x, Y: y}, nil
		}
	}
	return Position{}, apperrors.New(apperrors.ErrCodeInvalidInput,
		"position must be an object with numeric x and y, got %T", value)
}

// coerceFloat accepts the numeric types JSON decoding and native callers
// produce.
func coerceFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
