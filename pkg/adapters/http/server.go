package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/runner"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// OpenRequest is the body of POST /sessions.
type OpenRequest struct {
	ID string `json:"id,omitempty"`
}

// EventRequest is the body of POST /sessions/{id}/events.
type EventRequest struct {
	Target  string `json:"target"`
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// FrameResponse describes a container after a commit.
type FrameResponse struct {
	ID     string              `json:"id"`
	Tree   *domain.Snapshot    `json:"tree"`
	Report domain.CommitReport `json:"report"`
}

// SessionList is the body of GET /sessions.
type SessionList struct {
	Live   []string `json:"live"`
	Stored []string `json:"stored"`
}

// Server exposes a session manager over HTTP.
type Server struct {
	Sessions *session.Manager
	// Views is optional; without it GET /views answers 404.
	Views   ports.ViewLoader
	Streams *StreamManager

	logger    *slog.Logger
	sanitizer runner.Sanitizer
	gatherer  prometheus.Gatherer
}

// Option configures the Server.
type Option func(*Server)

// WithViews exposes the view catalogue on GET /views.
func WithViews(views ports.ViewLoader) Option {
	return func(s *Server) {
		s.Views = views
	}
}

// WithLogger configures the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithGatherer mounts GET /metrics for the given registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// NewServer creates a Server over sessions.
func NewServer(sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		Sessions:  sessions,
		Streams:   NewStreamManager(),
		logger:    logging.NewNop(),
		sanitizer: runner.NewSanitizer(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewHandler creates a new HTTP handler for the session manager.
func NewHandler(sessions *session.Manager, opts ...Option) http.Handler {
	return NewServer(sessions, opts...).Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/views", s.ListViews)
	r.Get("/events", s.SubscribeEvents)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.OpenSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSnapshot)
			r.Get("/markup", s.GetMarkup)
			r.Post("/events", s.Dispatch)
			r.Delete("/", s.CloseSession)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// OpenSession handles the POST /sessions request.
func (s *Server) OpenSession(w http.ResponseWriter, r *http.Request) {
	var body OpenRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			s.logger.Warn("OpenSession: Invalid request body", "err", err)
			return
		}
	}

	sess, err := s.Sessions.Open(r.Context(), body.ID)
	if err != nil {
		http.Error(w, fmt.Sprintf("Open error: %v", err), http.StatusInternalServerError)
		s.logger.Error("OpenSession failed", "err", err)
		return
	}

	frame, err := s.Sessions.Frame(r.Context(), sess.ID)
	if err != nil {
		http.Error(w, fmt.Sprintf("Snapshot error: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, frameResponse(frame), s.logger)
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	stored, err := s.Sessions.List(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("List error: %v", err), http.StatusInternalServerError)
		s.logger.Error("ListSessions failed", "err", err)
		return
	}
	writeJSON(w, http.StatusOK, SessionList{Live: s.Sessions.Live(), Stored: stored}, s.logger)
}

// GetSnapshot handles the GET /sessions/{id} request.
func (s *Server) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.loadSnapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap, s.logger)
}

// GetMarkup handles the GET /sessions/{id}/markup request.
func (s *Server) GetMarkup(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.loadSnapshot(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(snap.Markup()))
}

func (s *Server) loadSnapshot(w http.ResponseWriter, r *http.Request) (*domain.Snapshot, bool) {
	id := chi.URLParam(r, "id")
	snap, err := s.Sessions.Snapshot(r.Context(), id)
	if errors.Is(err, domain.ErrSnapshotNotFound) {
		http.Error(w, fmt.Sprintf("Container not found: %s", id), http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Snapshot error: %v", err), http.StatusInternalServerError)
		s.logger.Error("Snapshot load failed", "container_id", id, "err", err)
		return nil, false
	}
	return snap, true
}

// Dispatch handles the POST /sessions/{id}/events request.
func (s *Server) Dispatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body EventRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Dispatch: Invalid request body", "err", err)
		return
	}
	if body.Target == "" || body.Event == "" {
		http.Error(w, "target and event are required", http.StatusBadRequest)
		return
	}

	payload, err := s.sanitizer.CleanPayload(body.Payload)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid payload: %v", err), http.StatusBadRequest)
		s.logger.Warn("Dispatch: Payload rejected", "err", err)
		return
	}

	frame, handled, err := s.Sessions.DispatchFrame(r.Context(), id, body.Target, body.Event, payload)
	if errors.Is(err, session.ErrSessionNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Dispatch error: %v", err), http.StatusInternalServerError)
		s.logger.Error("Dispatch failed", "container_id", id, "err", err)
		return
	}
	if !handled {
		http.Error(w, fmt.Sprintf("No %q listener on %q", body.Event, body.Target), http.StatusNotFound)
		return
	}

	if bytes, err := json.Marshal(frame.Report); err == nil {
		s.Streams.Broadcast(id, string(bytes))
	}
	writeJSON(w, http.StatusOK, frameResponse(frame), s.logger)
}

// CloseSession handles the DELETE /sessions/{id} request.
func (s *Server) CloseSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Sessions.Close(r.Context(), id); err != nil && !errors.Is(err, domain.ErrSnapshotNotFound) {
		http.Error(w, fmt.Sprintf("Close error: %v", err), http.StatusInternalServerError)
		s.logger.Error("CloseSession failed", "container_id", id, "err", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListViews handles the GET /views request.
func (s *Server) ListViews(w http.ResponseWriter, r *http.Request) {
	if s.Views == nil {
		http.Error(w, "No view catalogue configured", http.StatusNotFound)
		return
	}
	ids, err := s.Views.List(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("List error: %v", err), http.StatusInternalServerError)
		s.logger.Error("ListViews failed", "err", err)
		return
	}
	writeJSON(w, http.StatusOK, ids, s.logger)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.logger)
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{
		"app":     "arbor-http",
		"version": strings.TrimSpace(arbor.Version),
	}
	writeJSON(w, http.StatusOK, resp, s.logger)
}

// SubscribeEvents handles the GET /events?session_id= request (SSE).
// Every commit caused by a dispatch on that session is pushed as a report.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}
	id := r.URL.Query().Get("session_id")
	if id == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(id)
	defer cancel()
	s.logger.Info("SSE: Subscribing to session commits", "container_id", id)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "container_id", id)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: commit\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func frameResponse(f session.Frame) FrameResponse {
	return FrameResponse{ID: f.ID, Tree: f.Tree, Report: f.Report}
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "err", err)
	}
}
