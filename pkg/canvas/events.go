package canvas

import (
	"sync"
)

// =============================================================================
// Change Notifications
// =============================================================================

// NodeUpdate is the payload of a node update notification. Exactly one of
// Label, Position, ParentID, or Data is set - listeners receive only the
// changed slice, never the whole node.
type NodeUpdate struct {
	NodeID   string     `json:"nodeId"`
	Label    *string    `json:"label,omitempty"`
	Position *Position  `json:"position,omitempty"`
	ParentID *string    `json:"parentId,omitempty"`
	Data     *DataPatch `json:"data,omitempty"`
}

// DataPatch describes a single dot-path assignment into a node's data tree.
type DataPatch struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// Listener receives change notifications from a Canvas. Implementations must
// not call back into the Canvas from a notification: notifications are
// delivered synchronously while the canvas lock is held.
type Listener interface {
	OnNodeCreated(n NodeState)
	OnNodeUpdated(u NodeUpdate)
	OnNodeDeleted(nodeID string)
	OnEdgeCreated(e EdgeState)
	OnEdgeDeleted(edgeID string)
}

// NoopListener is a no-op implementation of Listener, useful for embedding
// when only some notifications matter.
type NoopListener struct{}

func (NoopListener) OnNodeCreated(NodeState)  {}
func (NoopListener) OnNodeUpdated(NodeUpdate) {}
func (NoopListener) OnNodeDeleted(string)     {}
func (NoopListener) OnEdgeCreated(EdgeState)  {}
func (NoopListener) OnEdgeDeleted(string)     {}

var _ Listener = NoopListener{}

// =============================================================================
// Notifier - Listener Fan-Out
// =============================================================================

// Notifier fans change notifications out to registered listeners.
// A Canvas owns one Notifier; external consumers (the rendering layer,
// event streams) register at startup.
type Notifier struct {
	mu        sync.RWMutex
	listeners []Listener
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Register adds a listener. Nil listeners are ignored.
func (n *Notifier) Register(l Listener) {
	if l == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, l)
}

func (n *Notifier) snapshot() []Listener {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.listeners
}

func (n *Notifier) nodeCreated(ns NodeState) {
	for _, l := range n.snapshot() {
		l.OnNodeCreated(ns)
	}
}

func (n *Notifier) nodeUpdated(u NodeUpdate) {
	for _, l := range n.snapshot() {
		l.OnNodeUpdated(u)
	}
}

func (n *Notifier) nodeDeleted(id string) {
	for _, l := range n.snapshot() {
		l.OnNodeDeleted(id)
	}
}

func (n *Notifier) edgeCreated(es EdgeState) {
	for _, l := range n.snapshot() {
		l.OnEdgeCreated(es)
	}
}

func (n *Notifier) edgeDeleted(id string) {
	for _, l := range n.snapshot() {
		l.OnEdgeDeleted(id)
	}
}
