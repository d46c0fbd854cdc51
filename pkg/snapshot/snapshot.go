// Package snapshot persists the light relational snapshot of a canvas.
//
// The snapshot deliberately excludes node configuration payloads: only
// topology (ids, types, parent links, edge endpoints) and positions survive
// the round trip. The in-memory canvas is authoritative; the persisted
// snapshot is a best-effort mirror used to restore state at startup.
//
// # Backends
//
// The [Store] interface has implementations for different deployments:
//   - file: JSON file for single-machine use (the default)
//   - memory: ephemeral storage for tests
//   - redis: shared storage for multi-instance deployments
//   - mongo: durable document storage
//
// # Defensive Loading
//
// Loading is never fatal. A snapshot whose top-level shape is wrong yields an
// empty graph; individual malformed entries are skipped; missing optional
// fields are defaulted (type to AGENT, position to the origin). This is what
// keeps a partially-written or stale snapshot from corrupting startup.
//
// # Writing
//
// [Writer] coalesces rapid successive write requests into a single save and
// never surfaces save errors to the mutation path. Call [Writer.Flush] when
// durability matters (shutdown).
package snapshot

import (
	"encoding/json"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/agentcanvas/pkg/canvas"
	apperrors "github.com/matzehuels/agentcanvas/pkg/errors"
)

// NodeRecord is the persisted form of a node: topology and position only,
// no configuration payload.
type NodeRecord struct {
	ID       string          `json:"id" bson:"id"`
	Type     canvas.NodeType `json:"type" bson:"type"`
	Label    string          `json:"label,omitempty" bson:"label,omitempty"`
	Position canvas.Position `json:"position" bson:"position"`
	ParentID string          `json:"parentId,omitempty" bson:"parentId,omitempty"`
}

// EdgeRecord is the persisted form of an edge.
type EdgeRecord struct {
	ID       string          `json:"id" bson:"id"`
	SourceID string          `json:"sourceId" bson:"sourceId"`
	TargetID string          `json:"targetId" bson:"targetId"`
	EdgeType canvas.EdgeType `json:"edgeType" bson:"edgeType"`
}

// Snapshot is the persisted document: two flat arrays.
type Snapshot struct {
	Nodes []NodeRecord `json:"nodes" bson:"nodes"`
	Edges []EdgeRecord `json:"edges" bson:"edges"`
}

// FromState converts the sanitized canvas state into its persisted form.
func FromState(st canvas.State) Snapshot {
	s := Snapshot{
		Nodes: make([]NodeRecord, len(st.Nodes)),
		Edges: make([]EdgeRecord, len(st.Edges)),
	}
	for i, n := range st.Nodes {
		s.Nodes[i] = NodeRecord{
			ID:       n.ID,
			Type:     n.Type,
			Label:    n.Label,
			Position: n.Position,
			ParentID: n.ParentID,
		}
	}
	for i, e := range st.Edges {
		s.Edges[i] = EdgeRecord{
			ID:       e.ID,
			SourceID: e.SourceID,
			TargetID: e.TargetID,
			EdgeType: e.EdgeType,
		}
	}
	return s
}

// Materialize converts the snapshot into canvas entities for a full-state
// replace. Configuration payloads are not part of the light snapshot, so
// nodes come back with empty data.
func (s Snapshot) Materialize() ([]*canvas.Node, []*canvas.Edge) {
	nodes := make([]*canvas.Node, len(s.Nodes))
	for i, r := range s.Nodes {
		nodes[i] = &canvas.Node{
			ID:       r.ID,
			Type:     r.Type,
			Label:    r.Label,
			Position: r.Position,
			ParentID: r.ParentID,
			Data:     map[string]any{},
		}
	}
	edges := make([]*canvas.Edge, len(s.Edges))
	for i, r := range s.Edges {
		edges[i] = &canvas.Edge{
			ID:       r.ID,
			SourceID: r.SourceID,
			TargetID: r.TargetID,
			EdgeType: r.EdgeType,
		}
	}
	return nodes, edges
}

// Marshal serializes a snapshot to pretty-printed JSON bytes.
func Marshal(s Snapshot) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// =============================================================================
// Defensive Decode
// =============================================================================

// rawDocument mirrors the top-level shape so nodes and edges can be decoded
// entry by entry.
type rawDocument struct {
	Nodes []json.RawMessage `json:"nodes"`
	Edges []json.RawMessage `json:"edges"`
}

// Decode parses a persisted snapshot defensively.
//
// A top-level shape violation (not an object, or nodes/edges not arrays)
// returns an empty snapshot together with an INVALID_SNAPSHOT error so the
// caller can log and continue from empty. Individual malformed entries are
// skipped with a diagnostic; missing node types default to AGENT, missing
// positions to the origin, missing edge types to "data".
func Decode(data []byte, logger *log.Logger) (Snapshot, error) {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return Snapshot{}, apperrors.Wrap(apperrors.ErrCodeInvalidSnapshot, err, "snapshot is not a valid document")
	}

	var s Snapshot
	for i, raw := range doc.Nodes {
		var r NodeRecord
		if err := json.Unmarshal(raw, &r); err != nil {
			logger.Warn("skipping malformed node entry", "index", i, "error", err)
			continue
		}
		if r.ID == "" {
			logger.Warn("skipping node entry without id", "index", i)
			continue
		}
		if r.Type == "" {
			r.Type = canvas.TypeAgent
		}
		s.Nodes = append(s.Nodes, r)
	}

	for i, raw := range doc.Edges {
		var r EdgeRecord
		if err := json.Unmarshal(raw, &r); err != nil {
			logger.Warn("skipping malformed edge entry", "index", i, "error", err)
			continue
		}
		if r.ID == "" {
			logger.Warn("skipping edge entry without id", "index", i)
			continue
		}
		if r.EdgeType == "" {
			r.EdgeType = canvas.EdgeData
		}
		s.Edges = append(s.Edges, r)
	}

	return s, nil
}
