// Package api exposes the HTTP interface for the profiler service.
package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brandworks/siteprofiler/internal/metrics"
	"github.com/brandworks/siteprofiler/internal/profile"
)

// Generator starts or reuses a profile generation run.
type Generator interface {
	Generate(ctx context.Context, req profile.GenerateRequest) (profile.BrandOverview, error)
}

// Server wires HTTP handlers to the orchestrator and overview store.
type Server struct {
	router    chi.Router
	store     profile.OverviewStore
	generator Generator
	logger    *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	store profile.OverviewStore,
	generator Generator,
	requestTimeout time.Duration,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	s := &Server{
		store:     store,
		generator: generator,
		logger:    logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(timeoutMiddleware(requestTimeout))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/overviews", s.listOverviews)
		r.Route("/targets/{target_id}", func(r chi.Router) {
			r.Get("/overview", s.getOverview)
			r.Post("/generate", s.generate)
		})
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	// The store backs every endpoint; a failing read means not ready.
	if _, err := s.store.List(r.Context(), nil, 1, 0); err != nil {
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) getOverview(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "target_id")
	rec, err := s.store.Get(r.Context(), targetID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			writeError(w, http.StatusNotFound, "overview not found")
			return
		}
		s.logger.Error("get overview failed", zap.String("target_id", targetID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load overview")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"overview": rec})
}

type generateRequest struct {
	SiteURL   string `json:"site_url"`
	BrandName string `json:"brand_name"`
	Force     bool   `json:"force"`
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "target_id")

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.SiteURL == "" {
		writeError(w, http.StatusBadRequest, "site_url is required")
		return
	}

	rec, err := s.generator.Generate(r.Context(), profile.GenerateRequest{
		TargetID:  targetID,
		SiteURL:   req.SiteURL,
		BrandHint: req.BrandName,
		Force:     req.Force,
	})
	if err != nil {
		s.logger.Error("generate failed", zap.String("target_id", targetID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to start generation")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"overview": rec})
}

func (s *Server) listOverviews(w http.ResponseWriter, r *http.Request) {
	var status *profile.OverviewStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		st := profile.OverviewStatus(raw)
		switch st {
		case profile.StatusRunning, profile.StatusComplete, profile.StatusFailed:
			status = &st
		default:
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", raw))
			return
		}
	}
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)
	if limit <= 0 || limit > 500 {
		writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
		return
	}
	if offset < 0 {
		writeError(w, http.StatusBadRequest, "offset must be >= 0")
		return
	}

	recs, err := s.store.List(r.Context(), status, limit, offset)
	if err != nil {
		s.logger.Error("list overviews failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list overviews")
		return
	}
	if recs == nil {
		recs = []profile.BrandOverview{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"overviews": recs})
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return n
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			duration := time.Since(start)
			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = r.URL.Path
			}
			metrics.ObserveHTTPRequest(r.Method, route, ww.status, duration)
			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Int64("duration_ms", duration.Milliseconds()),
			)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", zap.Any("error", rec))
					writeError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}
	return n, nil
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := rw.ResponseWriter.(http.Hijacker); ok {
		conn, buf, err := h.Hijack()
		if err != nil {
			return nil, nil, fmt.Errorf("hijack connection: %w", err)
		}
		return conn, buf, nil
	}
	return nil, nil, errors.New("hijacker not supported")
}

type requestIDKey struct{}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
