// Package server exposes the canvas operations over HTTP.
//
// The surface is a small JSON API under /v1 plus a server-sent-event stream
// of change notifications. Every response body shares the envelope shape
// {"success": bool, "message": string, ...}; error status codes map from the
// structured error codes of pkg/errors (not-found 404, conflict 409,
// validation 400, everything else 500).
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/agentcanvas/pkg/canvas"
	apperrors "github.com/matzehuels/agentcanvas/pkg/errors"
)

// Server wires the canvas to the HTTP surface.
type Server struct {
	canvas *canvas.Canvas
	hub    *EventHub
	logger *log.Logger
}

// New creates a server over the given canvas and registers its event hub on
// the canvas notifier.
func New(c *canvas.Canvas, logger *log.Logger) *Server {
	s := &Server{
		canvas: c,
		hub:    NewEventHub(logger),
		logger: logger,
	}
	c.Notifier().Register(s.hub)
	return s
}

// Hub returns the SSE event hub.
func (s *Server) Hub() *EventHub { return s.hub }

// Router builds the chi router for the API surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/nodes", s.handleCreateNode)
		r.Patch("/nodes/{id}", s.handleUpdateNode)
		r.Delete("/nodes/{id}", s.handleDeleteNode)
		r.Post("/edges", s.handleConnect)
		r.Get("/state", s.handleState)
		r.Post("/clear", s.handleClear)
		r.Post("/layout", s.handleLayout)
		r.Post("/sync", s.handleSync)
		r.Get("/events", s.hub.serveStream)
	})

	return r
}

// requestLogger logs each request at debug level with its duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

// =============================================================================
// Request / Response Shapes
// =============================================================================

type createNodeRequest struct {
	Type     string           `json:"type"`
	Label    string           `json:"label"`
	ParentID string           `json:"parentId,omitempty"`
	Position *canvas.Position `json:"position,omitempty"`
	Config   map[string]any   `json:"config,omitempty"`
}

type connectRequest struct {
	SourceID string         `json:"sourceId"`
	TargetID string         `json:"targetId"`
	EdgeType string         `json:"edgeType"`
	Data     map[string]any `json:"data,omitempty"`
}

type updateRequest struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

type layoutRequest struct {
	Strategy string  `json:"strategy"`
	Spacing  float64 `json:"spacing,omitempty"`
}

type syncRequest struct {
	Nodes []*canvas.Node `json:"nodes"`
	Edges []*canvas.Edge `json:"edges"`
}

// envelope is the uniform response shape. Extra keys carry operation results.
type envelope map[string]any

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, envelope{"success": true, "status": "ok"})
}

func (s *Server) handleCreateNode(w http.ResponseWriter, r *http.Request) {
	var req createNodeRequest
	if !s.decode(w, r, &req) {
		return
	}

	res, err := s.canvas.CreateNode(req.Type, req.Label, req.ParentID, req.Position, req.Config)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusCreated, envelope{
		"success":  true,
		"nodeId":   res.NodeID,
		"position": res.Position,
	})
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if !s.decode(w, r, &req) {
		return
	}

	res, err := s.canvas.ConnectNodes(req.SourceID, req.TargetID, req.EdgeType, req.Data)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusCreated, envelope{"success": true, "edgeId": res.EdgeID})
}

func (s *Server) handleUpdateNode(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.canvas.UpdateProperty(chi.URLParam(r, "id"), req.Path, req.Value); err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, envelope{"success": true})
}

func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	if err := s.canvas.DeleteNode(chi.URLParam(r, "id")); err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, envelope{"success": true})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	st := s.canvas.State()
	s.respond(w, http.StatusOK, envelope{
		"success": true,
		"nodes":   st.Nodes,
		"edges":   st.Edges,
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.canvas.Clear()
	s.respond(w, http.StatusOK, envelope{"success": true})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.canvas.ApplyLayout(canvas.LayoutStrategy(req.Strategy), req.Spacing); err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, envelope{"success": true})
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if !s.decode(w, r, &req) {
		return
	}

	s.canvas.SyncFromClient(req.Nodes, req.Edges)
	s.respond(w, http.StatusOK, envelope{
		"success": true,
		"nodes":   len(req.Nodes),
		"edges":   len(req.Edges),
	})
}

// =============================================================================
// Encoding Helpers
// =============================================================================

// decode parses the request body into dst, responding 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.respond(w, http.StatusBadRequest, envelope{
			"success": false,
			"message": "invalid request body: " + err.Error(),
			"code":    apperrors.ErrCodeInvalidInput,
		})
		return false
	}
	return true
}

func (s *Server) respond(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("response encoding failed", "error", err)
	}
}

// respondError maps a structured error to its HTTP status and envelope.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	s.respond(w, status, envelope{
		"success": false,
		"message": apperrors.UserMessage(err),
		"code":    apperrors.GetCode(err),
	})
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	switch {
	case apperrors.IsNotFound(err):
		return http.StatusNotFound
	case apperrors.IsConflict(err):
		return http.StatusConflict
	}
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeInvalidInput, apperrors.ErrCodeInvalidType,
		apperrors.ErrCodeInvalidEdgeType, apperrors.ErrCodeInvalidStrategy,
		apperrors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
