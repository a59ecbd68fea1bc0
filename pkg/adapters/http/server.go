// Package http exposes a live editing session to remote visualizers.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/rescuegrid/pkg/domain"
	"github.com/aretw0/rescuegrid/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	Editor  ports.LiveEditor
	Store   ports.ScenarioStore
	Streams *StreamManager
	Metrics http.Handler
	Version string
	Logger  *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithStore enables the /scenarios routes.
func WithStore(store ports.ScenarioStore) Option {
	return func(s *Server) {
		s.Store = store
	}
}

// WithStreams shares a StreamManager with the session that feeds it.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.Metrics = h
	}
}

// WithVersion sets the version reported by /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.Version = v
	}
}

// WithLogger configures a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// NewHandler creates the HTTP handler for editor.
func NewHandler(editor ports.LiveEditor, opts ...Option) http.Handler {
	s := &Server{Editor: editor, Version: "dev", Logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.Logger)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/snapshot", s.GetSnapshot)
	r.Put("/snapshot", s.PutSnapshot)
	// Route used by the simulation to push its current state.
	r.Post("/state", s.PutSnapshot)
	r.Get("/events", s.SubscribeEvents)

	if s.Store != nil {
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", s.ListScenarios)
			r.Get("/{name}", s.GetScenario)
			r.Put("/{name}", s.PutScenario)
			r.Delete("/{name}", s.DeleteScenario)
			r.Post("/{name}/open", s.OpenScenario)
		})
	}
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "rescuegrid-http",
		"version": strings.TrimSpace(s.Version),
	})
}

// GetSnapshot handles GET /snapshot.
func (s *Server) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Editor.Snapshot(r.Context())
	if err != nil {
		s.fail(w, "GetSnapshot", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// PutSnapshot handles PUT /snapshot: the body replaces the authoritative
// snapshot wholesale.
func (s *Server) PutSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.decodeSnapshot(w, r)
	if !ok {
		return
	}
	if err := s.Editor.Replace(r.Context(), snap); err != nil {
		s.fail(w, "PutSnapshot", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListScenarios handles GET /scenarios.
func (s *Server) ListScenarios(w http.ResponseWriter, r *http.Request) {
	names, err := s.Store.List(r.Context())
	if err != nil {
		s.fail(w, "ListScenarios", err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

// GetScenario handles GET /scenarios/{name}.
func (s *Server) GetScenario(w http.ResponseWriter, r *http.Request) {
	name, ok := scenarioName(w, r)
	if !ok {
		return
	}
	snap, err := s.Store.Load(r.Context(), name)
	if err != nil {
		s.fail(w, "GetScenario", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// PutScenario handles PUT /scenarios/{name}. With a body, the body is
// stored; without one, the authoritative snapshot is.
func (s *Server) PutScenario(w http.ResponseWriter, r *http.Request) {
	name, ok := scenarioName(w, r)
	if !ok {
		return
	}

	var snap *domain.Snapshot
	if r.ContentLength != 0 && r.Body != http.NoBody {
		if snap, ok = s.decodeSnapshot(w, r); !ok {
			return
		}
	} else {
		var err error
		if snap, err = s.Editor.Snapshot(r.Context()); err != nil {
			s.fail(w, "PutScenario", err)
			return
		}
	}

	if err := s.Store.Save(r.Context(), name, snap); err != nil {
		s.fail(w, "PutScenario", err)
		return
	}
	s.Logger.Info("scenario saved", "scenario", name)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteScenario handles DELETE /scenarios/{name}.
func (s *Server) DeleteScenario(w http.ResponseWriter, r *http.Request) {
	name, ok := scenarioName(w, r)
	if !ok {
		return
	}
	if err := s.Store.Delete(r.Context(), name); err != nil {
		s.fail(w, "DeleteScenario", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// OpenScenario handles POST /scenarios/{name}/open: the stored scenario
// becomes the authoritative snapshot.
func (s *Server) OpenScenario(w http.ResponseWriter, r *http.Request) {
	name, ok := scenarioName(w, r)
	if !ok {
		return
	}
	snap, err := s.Store.Load(r.Context(), name)
	if err != nil {
		s.fail(w, "OpenScenario", err)
		return
	}
	if err := s.Editor.Replace(r.Context(), snap); err != nil {
		s.fail(w, "OpenScenario", err)
		return
	}
	s.Logger.Info("scenario opened", "scenario", name)
	w.WriteHeader(http.StatusNoContent)
}

// SubscribeEvents handles GET /events (SSE). The first data event carries
// the full snapshot; later events carry diffs. The optional watch query
// (comma separated: cells, drones, entities) filters diffs.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	// Subscribe before reading the snapshot so no change falls in between.
	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	initial, err := s.Editor.Snapshot(r.Context())
	if err != nil {
		s.fail(w, "SubscribeEvents", err)
		return
	}
	full, err := json.Marshal(domain.SnapshotDiff{Full: initial})
	if err != nil {
		s.fail(w, "SubscribeEvents", err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	fmt.Fprintf(w, "data: %s\n\n", full)
	flusher.Flush()

	watch := parseWatch(r.URL.Query().Get("watch"))
	s.Logger.Info("SSE: client subscribed", "watch", r.URL.Query().Get("watch"))

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Info("SSE: client disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watch) > 0 && !matchesWatch(msg, watch) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func parseWatch(raw string) map[string]bool {
	if raw == "" {
		return nil
	}
	out := map[string]bool{}
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out[f] = true
		}
	}
	return out
}

func matchesWatch(msg string, watch map[string]bool) bool {
	var diff domain.SnapshotDiff
	if err := json.Unmarshal([]byte(msg), &diff); err != nil {
		return true
	}
	switch {
	case diff.Full != nil:
		return true
	case watch["cells"] && len(diff.Cells) > 0:
		return true
	case watch["drones"] && len(diff.Drones) > 0:
		return true
	case watch["entities"] && (diff.FirstResponders != nil || diff.Survivors != nil):
		return true
	}
	return false
}

func (s *Server) decodeSnapshot(w http.ResponseWriter, r *http.Request) (*domain.Snapshot, bool) {
	var snap domain.Snapshot
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 8<<20)).Decode(&snap); err != nil {
		s.Logger.Warn("invalid snapshot body", "err", err)
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid snapshot: %v", err))
		return nil, false
	}
	return &snap, true
}

func scenarioName(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := chi.URLParam(r, "name")
	if err := domain.ValidateScenarioName(name); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return name, true
}

// fail maps domain errors to status codes.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrScenarioNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrDimensionMismatch):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidSnapshot),
		errors.Is(err, domain.ErrInvalidCellState),
		errors.Is(err, domain.ErrOutOfBounds),
		errors.Is(err, domain.ErrInvalidScenarioName):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.Logger.Error(op+" failed", "err", err)
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
