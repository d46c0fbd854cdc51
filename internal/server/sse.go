package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/agentcanvas/pkg/canvas"
)

// subscriberBuffer is the per-client event queue depth. A client that falls
// further behind than this starts losing events; the full state is always
// recoverable through GET /v1/state.
const subscriberBuffer = 64

// event is a single server-sent event: a name and a JSON payload.
type event struct {
	name string
	data []byte
}

// EventHub fans canvas change notifications out to SSE subscribers.
// It implements canvas.Listener and is registered on the canvas notifier at
// server construction.
//
// Notifications arrive synchronously while the canvas lock is held, so
// broadcast must never block: sends to slow subscribers are dropped.
type EventHub struct {
	mu     sync.Mutex
	subs   map[chan event]struct{}
	logger *log.Logger
}

// NewEventHub creates an empty hub.
func NewEventHub(logger *log.Logger) *EventHub {
	return &EventHub{
		subs:   make(map[chan event]struct{}),
		logger: logger,
	}
}

// subscribe registers a new client queue.
func (h *EventHub) subscribe() chan event {
	ch := make(chan event, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// unsubscribe removes a client queue.
func (h *EventHub) unsubscribe(ch chan event) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

// SubscriberCount returns the number of connected event stream clients.
func (h *EventHub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// broadcast queues an event on every subscriber without blocking.
func (h *EventHub) broadcast(name string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("event payload marshal failed", "event", name, "error", err)
		return
	}
	ev := event{name: name, data: data}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			h.logger.Warn("dropping event for slow subscriber", "event", name)
		}
	}
}

func (h *EventHub) OnNodeCreated(n canvas.NodeState)  { h.broadcast("node_created", n) }
func (h *EventHub) OnNodeUpdated(u canvas.NodeUpdate) { h.broadcast("node_updated", u) }
func (h *EventHub) OnNodeDeleted(id string) {
	h.broadcast("node_deleted", map[string]string{"nodeId": id})
}
func (h *EventHub) OnEdgeCreated(e canvas.EdgeState) { h.broadcast("edge_created", e) }
func (h *EventHub) OnEdgeDeleted(id string) {
	h.broadcast("edge_deleted", map[string]string{"edgeId": id})
}

var _ canvas.Listener = (*EventHub)(nil)

// serveStream handles GET /v1/events: an SSE stream of change notifications.
func (h *EventHub) serveStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := h.subscribe()
	defer h.unsubscribe(ch)
	h.logger.Debug("event stream client connected", "remote", r.RemoteAddr)

	for {
		select {
		case <-r.Context().Done():
			h.logger.Debug("event stream client disconnected", "remote", r.RemoteAddr)
			return
		case ev := <-ch:
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.name, ev.data)
			flusher.Flush()
		}
	}
}
