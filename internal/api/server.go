// Package api exposes the plot pipeline over HTTP.
//
// The server accepts result bundles, assembles and renders them through the
// shared pipeline runner, and persists the resulting specifications in a
// store so plots can be listed and re-rendered later.
//
// # Routes
//
//	POST   /api/v1/plots               assemble a bundle, store and return the spec
//	GET    /api/v1/plots               list stored plots (newest first)
//	GET    /api/v1/plots/{id}          retrieve one stored plot
//	GET    /api/v1/plots/{id}/artifact render a stored plot (?format=svg|json)
//	DELETE /api/v1/plots/{id}          delete a stored plot
//	GET    /healthz                    liveness probe
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	vpcerrors "github.com/openpmx/vpc/pkg/errors"
	"github.com/openpmx/vpc/pkg/pipeline"
	"github.com/openpmx/vpc/pkg/plot"
	"github.com/openpmx/vpc/pkg/store"
)

// maxBundleBytes caps request bodies; summary tables are small, so anything
// larger is almost certainly a mistake.
const maxBundleBytes = 32 << 20

// Server wires the pipeline runner and plot store behind a chi router.
type Server struct {
	router *chi.Mux
	runner *pipeline.Runner
	store  store.Store
	logger *log.Logger
}

// NewServer creates a server. A nil store falls back to an in-memory store
// and a nil logger to the default logger.
func NewServer(runner *pipeline.Runner, st store.Store, logger *log.Logger) *Server {
	if st == nil {
		st = store.NewMemoryStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		router: chi.NewRouter(),
		runner: runner,
		store:  st,
		logger: logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/api/v1/plots", func(r chi.Router) {
		r.Post("/", s.handleCreatePlot)
		r.Get("/", s.handleListPlots)
		r.Get("/{id}", s.handleGetPlot)
		r.Get("/{id}/artifact", s.handleGetArtifact)
		r.Delete("/{id}", s.handleDeletePlot)
	})
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// createPlotRequest is the POST /api/v1/plots body: a result bundle plus
// optional pipeline options. Runtime-only option fields are ignored.
type createPlotRequest struct {
	Bundle  json.RawMessage  `json:"bundle"`
	Options pipeline.Options `json:"options"`
}

// plotResponse summarizes a stored plot.
type plotResponse struct {
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`
	Modality  string `json:"modality"`
	Source    string `json:"source,omitempty"`
	Layers    int    `json:"layers,omitempty"`
	SpecHit   bool   `json:"spec_cache_hit,omitempty"`
}

func (s *Server) handleCreatePlot(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBundleBytes)

	var req createPlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, vpcerrors.New(vpcerrors.ErrCodeInvalidBundle, "decode request: %v", err))
		return
	}
	if len(req.Bundle) == 0 {
		s.writeError(w, vpcerrors.New(vpcerrors.ErrCodeInvalidBundle, "request has no bundle"))
		return
	}

	opts := req.Options
	opts.Raw = req.Bundle
	opts.Input = ""
	opts.Formats = []string{pipeline.FormatJSON}
	opts.Logger = s.logger

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	specData, err := json.Marshal(res.Spec)
	if err != nil {
		s.writeError(w, vpcerrors.Wrap(vpcerrors.ErrCodeInternal, err, "serialize spec"))
		return
	}
	rec := store.NewRecord(res.Bundle.Modality, res.Bundle.Name, specData)
	if err := s.store.Put(r.Context(), rec); err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Info("stored plot", "id", rec.ID, "modality", rec.Modality, "layers", res.Stats.LayerCount)
	s.writeJSON(w, http.StatusCreated, plotResponse{
		ID:        rec.ID,
		CreatedAt: rec.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		Modality:  string(rec.Modality),
		Source:    rec.Source,
		Layers:    res.Stats.LayerCount,
		SpecHit:   res.CacheInfo.SpecHit,
	})
}

func (s *Server) handleListPlots(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, vpcerrors.New(vpcerrors.ErrCodeInvalidConfig, "invalid limit %q", v))
			return
		}
		limit = n
	}

	recs, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := make([]plotResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, plotResponse{
			ID:        rec.ID,
			CreatedAt: rec.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			Modality:  string(rec.Modality),
			Source:    rec.Source,
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"plots": out})
}

func (s *Server) handleGetPlot(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleGetArtifact(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, vpcerrors.Wrap(vpcerrors.ErrCodeInvalidFormat, err, "artifact format"))
		return
	}

	var spec plot.Spec
	if err := json.Unmarshal(rec.Spec, &spec); err != nil {
		s.writeError(w, vpcerrors.Wrap(vpcerrors.ErrCodeInternal, err, "decode stored spec"))
		return
	}

	opts := pipeline.Options{Formats: []string{format}, Logger: s.logger}
	artifacts, err := s.runner.Render(r.Context(), &spec, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	switch format {
	case pipeline.FormatSVG:
		w.Header().Set("Content-Type", "image/svg+xml")
	default:
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

func (s *Server) handleDeletePlot(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Response Helpers
// =============================================================================

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

// writeError maps structured error codes to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch vpcerrors.GetCode(err) {
	case vpcerrors.ErrCodeNotFound:
		status = http.StatusNotFound
	case vpcerrors.ErrCodeInvalidShowOption,
		vpcerrors.ErrCodeInvalidConfig,
		vpcerrors.ErrCodeInvalidFormat,
		vpcerrors.ErrCodeInvalidTheme,
		vpcerrors.ErrCodeInvalidBundle,
		vpcerrors.ErrCodeInvalidModality,
		vpcerrors.ErrCodeStratification:
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	s.writeJSON(w, status, map[string]string{
		"error": vpcerrors.UserMessage(err),
		"code":  string(vpcerrors.GetCode(err)),
	})
}
