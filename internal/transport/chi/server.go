// Package chi exposes the search service over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/request"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/queue"
	clusteruc "github.com/Srujan0798/Rest-iN-U-sub002/internal/usecase/cluster"
	healthuc "github.com/Srujan0798/Rest-iN-U-sub002/internal/usecase/health"
	searchuc "github.com/Srujan0798/Rest-iN-U-sub002/internal/usecase/search"
	similaruc "github.com/Srujan0798/Rest-iN-U-sub002/internal/usecase/similar"
)

// userIDHeader carries the authenticated end-user identity for
// personalization. Absent for anonymous traffic.
const userIDHeader = "X-User-ID"

// Triggerer runs named sync passes on demand.
type Triggerer interface {
	Trigger(ctx context.Context, name string) error
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server routes the HTTP API.
type Server struct {
	search        *searchuc.Service
	similar       *similaruc.Service
	clusters      *clusteruc.Service
	health        *healthuc.Service
	sync          Triggerer
	deadLetters   queue.DeadLetterSink
	limits        request.Limits
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. sync and deadLetters may be nil on
// read-only deployments; their endpoints then return 404.
func NewServer(
	search *searchuc.Service,
	similar *similaruc.Service,
	clusters *clusteruc.Service,
	health *healthuc.Service,
	sync Triggerer,
	deadLetters queue.DeadLetterSink,
	limits request.Limits,
	logger *zap.Logger,
) *Server {
	limits.ApplyDefaults()
	s := &Server{
		search:      search,
		similar:     similar,
		clusters:    clusters,
		health:      health,
		sync:        sync,
		deadLetters: deadLetters,
		limits:      limits,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		validationHandler,
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, "not_found"),
		sentinelHandler(domain.ErrUnknownPass, http.StatusNotFound, "unknown_pass"),
		sentinelHandler(domain.ErrPassRunning, http.StatusConflict, "pass_running"),
		sentinelHandler(domain.ErrConflict, http.StatusConflict, "conflict"),
		sentinelHandler(domain.ErrIndexUnavailable, http.StatusServiceUnavailable, "index_unavailable"),
		sentinelHandler(domain.ErrSourceUnavailable, http.StatusServiceUnavailable, "source_unavailable"),
	}
	return s
}

// Routes mounts every endpoint on the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/api/v1/search", s.handleSearch)
	r.Post("/api/v1/search/similar", s.handleSimilar)
	r.Post("/api/v1/search/clusters", s.handleClusters)
	r.Post("/internal/sync/{pass}", s.handleSyncTrigger)
	r.Get("/internal/deadletters", s.handleDeadLetters)
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
}

// handleSearch handles POST /api/v1/search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var dto searchRequestDTO
	if err := decodeStrict(r, &dto); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body: "+err.Error())
		return
	}

	req, err := dto.toDomain(s.limits)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	page, err := s.search.Search(r.Context(), r.Header.Get(userIDHeader), &req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// handleSimilar handles POST /api/v1/search/similar.
func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	var dto similarRequestDTO
	if err := decodeStrict(r, &dto); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body: "+err.Error())
		return
	}

	req, err := dto.toDomain()
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	res, err := s.similar.Similar(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleClusters handles POST /api/v1/search/clusters.
func (s *Server) handleClusters(w http.ResponseWriter, r *http.Request) {
	var dto clusterRequestDTO
	if err := decodeStrict(r, &dto); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body: "+err.Error())
		return
	}

	req, err := dto.toDomain(s.limits)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	res, err := s.clusters.Clusters(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleSyncTrigger handles POST /internal/sync/{pass}. The pass runs
// synchronously; slow passes are expected to be triggered by operators who
// want to watch them finish.
func (s *Server) handleSyncTrigger(w http.ResponseWriter, r *http.Request) {
	if s.sync == nil {
		writeError(w, http.StatusNotFound, "not_found", "sync is not enabled on this instance")
		return
	}

	pass := chi.URLParam(r, "pass")
	if err := s.sync.Trigger(r.Context(), pass); err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"pass":   pass,
		"status": "completed",
	})
}

// handleDeadLetters handles GET /internal/deadletters.
func (s *Server) handleDeadLetters(w http.ResponseWriter, r *http.Request) {
	if s.deadLetters == nil {
		writeError(w, http.StatusNotFound, "not_found", "dead letters are not enabled on this instance")
		return
	}

	letters := s.deadLetters.List()
	writeJSON(w, http.StatusOK, map[string]any{
		"dead_letters": letters,
		"count":        len(letters),
	})
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"code":    code,
		"message": message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrConflict,
		domain.ErrIndexUnavailable,
		domain.ErrSourceUnavailable,
		domain.ErrPassRunning,
		domain.ErrUnknownPass,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// validationHandler maps validation failures to 400 with the offending field.
func validationHandler(w http.ResponseWriter, err error, _ string) bool {
	if !errors.Is(err, domain.ErrValidation) {
		return false
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"code":    "validation_failed",
			"message": ve.Reason,
			"field":   ve.Field,
		})
		return true
	}
	writeError(w, http.StatusBadRequest, "validation_failed", domain.ErrValidation.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}
