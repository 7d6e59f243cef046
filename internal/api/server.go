// Package api exposes the workspace, the single-document services and
// asynchronous batch jobs over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/pdfsuite/internal/config"
	"github.com/dgallion1/pdfsuite/internal/document"
	"github.com/dgallion1/pdfsuite/internal/parser"
	"github.com/dgallion1/pdfsuite/internal/pipeline"
	"github.com/dgallion1/pdfsuite/internal/questions"
	"github.com/dgallion1/pdfsuite/internal/service"
	"github.com/dgallion1/pdfsuite/internal/workspace"
)

// Server is the HTTP API server for pdfsuite.
type Server struct {
	router       chi.Router
	adapter      parser.Adapter
	stats        *parser.AdapterStats
	extractor    *service.Extractor
	checker      *service.Checker
	searcher     *service.Searcher
	merger       *service.Merger
	orchestrator *pipeline.Orchestrator
	sessions     *workspace.Store
	limits       workspace.Limits
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. stats may be nil when
// the adapter is not instrumented.
func NewServer(adapter parser.Adapter, stats *parser.AdapterStats, orch *pipeline.Orchestrator, sessions *workspace.Store, log *slog.Logger, cfg config.Config) *Server {
	validator := questions.Validator{Ceiling: cfg.MarkerCeiling}
	s := &Server{
		adapter:      adapter,
		stats:        stats,
		extractor:    service.NewExtractor(adapter, validator),
		checker:      service.NewChecker(adapter, validator),
		searcher:     service.NewSearcher(adapter),
		merger:       service.NewMerger(adapter),
		orchestrator: orch,
		sessions:     sessions,
		limits:       workspace.LimitsFromMB(cfg.MaxFileMB, cfg.MaxBatchMB, cfg.MaxBatchFiles),
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/sessions", s.handleCreateSession)
		r.Route("/api/sessions/{sessionID}", func(r chi.Router) {
			r.Delete("/", s.handleDeleteSession)
			r.Post("/reset", s.handleResetSession)
			r.Get("/documents", s.handleListDocuments)
			r.Post("/documents", s.handleAddDocuments)
			r.Delete("/documents/{docID}", s.handleDeleteDocument)
			r.Post("/documents/{docID}/pages/remove", s.handleRemovePages)
			r.Get("/documents/{docID}/pages/{page}/thumbnail", s.handleThumbnail)
			r.Post("/merge", s.handleMerge)
		})

		r.Post("/api/extract", s.handleExtract)
		r.Post("/api/validate", s.handleValidate)
		r.Post("/api/search", s.handleSearch)

		r.Post("/api/batch/{op}", s.handleBatchSubmit)
		r.Get("/api/batch/jobs/{jobID}", s.handleBatchStatus)
		r.Get("/api/batch/jobs/{jobID}/bundle", s.handleBatchBundle)
		r.Get("/api/batch/jobs/{jobID}/report", s.handleBatchReport)

		r.Get("/api/stats/adapter", s.handleAdapterStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"sessions":    s.sessions.Len(),
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// errorStatus maps the error taxonomy onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case document.IsValidation(err) && errors.Is(err, document.ErrLimitExceeded):
		return http.StatusRequestEntityTooLarge
	case document.IsValidation(err):
		return http.StatusBadRequest
	case document.IsParsing(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errorStatus(err)
	if code == http.StatusInternalServerError {
		s.log.Error("request failed",
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
	}
	jsonError(w, err.Error(), code)
}
