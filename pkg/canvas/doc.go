// Package canvas implements the graph engine behind the agentcanvas authoring
// tool: the in-memory model of workflow nodes and edges, the mutation
// operations that keep it consistent, and the auto-layout passes that compute
// node positions deterministically.
//
// # Architecture
//
// The package is organized around a small set of collaborating pieces:
//
//   - [Store]: the two keyed collections (nodes, edges) that are the sole
//     source of truth, with indices for endpoint pairs and containment
//   - [NormalizeType]: canonicalization of arbitrary category strings
//   - [EnrichConfig]: category-dispatched defaulting that turns a sparse
//     creation request into a fully usable configuration
//   - [PlanPosition]: deterministic default placement for new nodes
//   - [Canvas]: the mutation API (create/connect/update/delete/clear/sync)
//     that orchestrates the above, notifies listeners, and schedules
//     persistence
//   - [Canvas.ApplyLayout]: whole-graph repositioning (grid, hierarchical,
//     force)
//   - [Notifier], [Listener]: fan-out of change notifications to external
//     consumers such as the rendering layer
//
// # Consistency Model
//
// All exported Canvas operations are serialized behind a single mutex, so
// each runs to completion before another can interleave. Deleting a node
// cascades over the whole containment closure and removes every touching
// edge; the cascade emits one notification per removed entity and persists
// exactly once. Persistence itself is asynchronous and best-effort: the
// in-memory graph is authoritative, the snapshot on disk is a cache.
//
// # Usage
//
//	c := canvas.New(logger)
//	c.SetScheduler(writer)
//
//	res, err := c.CreateNode("agent", "Research Agent", "", nil, nil)
//	if err != nil {
//	    return err
//	}
//	_, err = c.ConnectNodes(res.NodeID, other, "delegation", nil)
//
// The persistence side lives in pkg/snapshot; the HTTP surface in
// internal/server.
package canvas
