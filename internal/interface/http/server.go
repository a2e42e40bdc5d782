package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/taskrouter/taskrouter-api/internal/domain"
	"github.com/taskrouter/taskrouter-api/internal/domain/repository"
	"github.com/taskrouter/taskrouter-api/internal/usecase/dispatch"
)

const (
	maxBodyBytes        = 10 << 20
	defaultSimilarLimit = 5
	internalErrorDetail = "An unexpected error occurred. Please try again later."
)

// Dispatcher is the use case layer the HTTP adapter calls into.
type Dispatcher interface {
	ExecuteTask(ctx context.Context, provider domain.Provider, name string, body any) (*domain.TaskEnvelope, error)
	ExecuteRouter(ctx context.Context, provider domain.Provider, name string, body any) (*domain.RouterEnvelope, error)
	ListTasks(provider domain.Provider) map[string]dispatch.TaskInfo
	ListRouters(provider domain.Provider) map[string]dispatch.RouterInfo
	Similar(ctx context.Context, provider domain.Provider, text string, limit int) ([]repository.IndexMatch, error)
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

type Server struct {
	svc    Dispatcher
	checks map[string]HealthCheck
	log    *zap.SugaredLogger
}

// NewServer creates the HTTP adapter. checks are run by GET /health.
func NewServer(svc Dispatcher, checks map[string]HealthCheck, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Server{svc: svc, checks: checks, log: log.Named("http")}
}

// SimilarRequest is the body of POST /api/v1/{provider}/similar.
type SimilarRequest struct {
	Text  string `json:"text"`
	Limit int    `json:"limit,omitempty"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1/{provider}", func(r chi.Router) {
		r.Post("/task/{task_name}", s.handleExecuteTask)
		r.Get("/tasks", s.handleListTasks)
		r.Post("/router/{router_name}", s.handleExecuteRouter)
		r.Get("/routers", s.handleListRouters)
		r.Post("/similar", s.handleSimilar)
	})
	return r
}

// accessLog logs each request on the way in and its status on the way out.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := middleware.GetReqID(r.Context())
		s.log.Infow("Incoming request", "method", r.Method, "url", r.URL.String(), "request_id", reqID)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Infow("Outgoing response",
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", reqID,
		)
	})
}

func (s *Server) handleExecuteTask(w http.ResponseWriter, r *http.Request) {
	provider, ok := s.provider(w, r)
	if !ok {
		return
	}
	body, ok := s.decodeBody(w, r)
	if !ok {
		return
	}
	env, err := s.svc.ExecuteTask(r.Context(), provider, chi.URLParam(r, "task_name"), body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, env)
}

func (s *Server) handleExecuteRouter(w http.ResponseWriter, r *http.Request) {
	provider, ok := s.provider(w, r)
	if !ok {
		return
	}
	body, ok := s.decodeBody(w, r)
	if !ok {
		return
	}
	env, err := s.svc.ExecuteRouter(r.Context(), provider, chi.URLParam(r, "router_name"), body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, env)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	provider, ok := s.provider(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, s.svc.ListTasks(provider))
}

func (s *Server) handleListRouters(w http.ResponseWriter, r *http.Request) {
	provider, ok := s.provider(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, s.svc.ListRouters(provider))
}

func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	provider, ok := s.provider(w, r)
	if !ok {
		return
	}
	var req SimilarRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.writeDetail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Text == "" {
		s.writeDetail(w, http.StatusBadRequest, "text must not be empty")
		return
	}
	if req.Limit <= 0 {
		req.Limit = defaultSimilarLimit
	}

	matches, err := s.svc.Similar(r.Context(), provider, req.Text, req.Limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"matches": matches})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	components := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			components[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		components[name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	s.writeJSON(w, status, map[string]any{"status": overall, "components": components})
}

func (s *Server) provider(w http.ResponseWriter, r *http.Request) (domain.Provider, bool) {
	p, err := domain.ParseProvider(chi.URLParam(r, "provider"))
	if err != nil {
		s.writeDetail(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return p, true
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request) (any, bool) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeDetail(w, http.StatusBadRequest, fmt.Sprintf("Failed to read request body: %v", err))
		return nil, false
	}
	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		s.writeDetail(w, http.StatusBadRequest, "Invalid JSON body")
		return nil, false
	}
	return body, true
}

// writeError maps domain errors to status codes. Server-side failures are logged
// and answered with a generic message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case domain.IsClientError(err):
		s.writeDetail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrIndexDisabled):
		s.writeDetail(w, http.StatusNotFound, err.Error())
	default:
		s.log.Errorw("Request failed", "method", r.Method, "path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()), "error", err)
		s.writeDetail(w, http.StatusInternalServerError, internalErrorDetail)
	}
}

func (s *Server) writeDetail(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, errorResponse{Detail: detail})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warnw("Failed to encode response", "error", err)
	}
}
