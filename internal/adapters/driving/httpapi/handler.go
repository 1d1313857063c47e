// Package httpapi serves lookups over HTTP: a JSON lookup endpoint, the
// ldapsearch proxy endpoint consumed by the command backend, Prometheus
// metrics and a health check.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/jlumbroso/ptonppl/internal/connectors/ldapcmd"
	"github.com/jlumbroso/ptonppl/internal/core/domain"
	"github.com/jlumbroso/ptonppl/internal/core/ports/driving"
	"github.com/jlumbroso/ptonppl/internal/logger"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 60 * time.Second

// CommandSearcher produces raw ldapsearch output. *ldapcmd.Connector implements it.
type CommandSearcher interface {
	LocalOutput(ctx context.Context, attr, value string) ([]byte, error)
}

// Ensure the command connector serves the proxy endpoint.
var _ CommandSearcher = (*ldapcmd.Connector)(nil)

// proxyAttributes are the attributes the proxy endpoint accepts.
var proxyAttributes = map[string]bool{
	domain.DirectoryMapping.ID:       true,
	domain.DirectoryMapping.Username: true,
	domain.DirectoryMapping.Email:    true,
}

// Handler serves the HTTP API.
type Handler struct {
	lookup   driving.LookupService
	command  CommandSearcher
	gatherer prometheus.Gatherer
	timeout  time.Duration
	group    singleflight.Group
}

// Option configures a Handler.
type Option func(*Handler)

// WithCommand enables the ldapsearch proxy endpoint.
func WithCommand(c CommandSearcher) Option {
	return func(h *Handler) {
		h.command = c
	}
}

// WithGatherer exposes g on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(h *Handler) {
		h.gatherer = g
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// NewHandler creates a handler over lookup.
func NewHandler(lookup driving.LookupService, opts ...Option) *Handler {
	h := &Handler{
		lookup:  lookup,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the router with every endpoint registered.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(middleware.Timeout(h.timeout))

	r.Get("/healthz", h.handleHealth)
	r.Get("/v1/lookup/{query}", h.handleLookup)
	r.Get("/ldapsearch", h.handleLDAPSearch)
	if h.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

type lookupResponse struct {
	Complete bool           `json:"complete"`
	Record   domain.Mapping `json:"record"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	backends := h.lookup.Backends()
	names := make([]string, len(backends))
	for i, b := range backends {
		names[i] = b.String()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"backends": names,
	})
}

// handleLookup resolves the path query. Concurrent requests for the same
// query share one search, bounded by the handler timeout rather than by any
// single caller's request.
func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(chi.URLParam(r, "query"))

	ch := h.group.DoChan(query, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.timeout)
		defer cancel()
		return h.lookup.Search(ctx, query)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-r.Context().Done():
		writeError(w, r.Context().Err())
		return
	}
	if res.Err != nil {
		writeError(w, res.Err)
		return
	}

	record := res.Val.(domain.Record)
	writeJSON(w, http.StatusOK, lookupResponse{
		Complete: record.IsComplete(),
		Record:   record.ToMapping(),
	})
}

// handleLDAPSearch answers "?attr=value" with raw ldapsearch output, the
// format the command backend's proxy path parses.
func (h *Handler) handleLDAPSearch(w http.ResponseWriter, r *http.Request) {
	if h.command == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_configured"})
		return
	}

	params := r.URL.Query()
	if len(params) != 1 {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "bad_request",
			Message: "expected exactly one attribute=value parameter",
		})
		return
	}

	var attr, value string
	for k, vs := range params {
		attr = strings.ToLower(k)
		if len(vs) > 0 {
			value = vs[0]
		}
	}
	if !proxyAttributes[attr] {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "unsupported attribute " + attr})
		return
	}

	clean, ok := ldapcmd.Sanitize(value, attr == domain.DirectoryMapping.Email)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "value rejected"})
		return
	}

	out, err := h.command.LocalOutput(r.Context(), attr, clean)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := "internal"
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = http.StatusBadRequest, "invalid_input"
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrBackendDisabled), errors.Is(err, domain.ErrNoBackends):
		status, code = http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		status, code = http.StatusGatewayTimeout, "timeout"
	default:
		logger.Warn("request failed: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: code, Message: err.Error()})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.L().Debug("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
