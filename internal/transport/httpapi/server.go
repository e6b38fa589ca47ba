// Package httpapi serves the action layer over HTTP and provides a client
// that lets the wizard use a remote server as its action backend.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/sant0-9/policygen/internal/catalog"
	"github.com/sant0-9/policygen/internal/contract"
	"github.com/sant0-9/policygen/internal/metrics"
	"github.com/sant0-9/policygen/internal/wizard"
)

const (
	RequestIDHeader = "X-Request-ID"

	maxBodyBytes = 1 << 20
)

// Backend is the action surface the server exposes.
type Backend interface {
	wizard.Actions
	wizard.Suggester
}

type Server struct {
	actions Backend
	catalog *catalog.Catalog
	ping    func(context.Context) error
	logger  *zap.Logger
}

// NewServer wires the routes. ping backs /readyz and may be nil.
func NewServer(actions Backend, cat *catalog.Catalog, ping func(context.Context) error, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{actions: actions, catalog: cat, ping: ping, logger: logger}
}

func (s *Server) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/actions/generate-policy", s.withMetrics(s.handleGeneratePolicy)).Methods(http.MethodPost)
	api.HandleFunc("/actions/summarize-policy", s.withMetrics(s.handleSummarizePolicy)).Methods(http.MethodPost)
	api.HandleFunc("/actions/suggest-template", s.withMetrics(s.handleSuggestTemplate)).Methods(http.MethodPost)
	api.HandleFunc("/templates", s.withMetrics(s.handleTemplates)).Methods(http.MethodGet)

	r.HandleFunc("/healthz", s.withMetrics(s.handleHealth)).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.withMetrics(s.handleReady)).Methods(http.MethodGet)

	// Prometheus
	r.Handle("/metrics", metrics.Handler())
}

// Handler returns the router wrapped in request ids, panic recovery, access
// logging and CORS.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(requestID)
	s.RegisterRoutes(r)

	stdLog := zap.NewStdLog(s.logger)
	var h http.Handler = r
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(stdLog), handlers.PrintRecoveryStack(false))(h)
	h = handlers.CombinedLoggingHandler(stdLog.Writer(), h)
	h = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", RequestIDHeader}),
	)(h)
	return h
}

// ListenAndServe runs until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-errCh
	return nil
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withMetrics(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rw, r)

		metrics.IncHTTPRequest(route, strconv.Itoa(rw.status))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// decode reads a contract record. A malformed body leaves v at its zero
// value; the action then fails its input contract and answers with the
// substitute, so the endpoint still never errors.
func (s *Server) decode(r *http.Request, v any) {
	body := io.LimitReader(r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		s.logger.Warn("bad request body",
			zap.String("path", r.URL.Path),
			zap.String("request_id", r.Header.Get(RequestIDHeader)),
			zap.Error(err))
	}
}

// POST /api/v1/actions/generate-policy
func (s *Server) handleGeneratePolicy(w http.ResponseWriter, r *http.Request) {
	var req contract.GenerationRequest
	s.decode(r, &req)
	writeJSON(w, http.StatusOK, s.actions.GeneratePolicy(r.Context(), req))
}

// POST /api/v1/actions/summarize-policy
func (s *Server) handleSummarizePolicy(w http.ResponseWriter, r *http.Request) {
	var req contract.SummaryRequest
	s.decode(r, &req)
	writeJSON(w, http.StatusOK, s.actions.SummarizePolicy(r.Context(), req))
}

// POST /api/v1/actions/suggest-template
func (s *Server) handleSuggestTemplate(w http.ResponseWriter, r *http.Request) {
	var req contract.SuggestionRequest
	s.decode(r, &req)
	writeJSON(w, http.StatusOK, s.actions.SuggestTemplate(r.Context(), req))
}

// GET /api/v1/templates
func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	templates := s.catalog.All()
	if templates == nil {
		templates = []*catalog.Template{}
	}
	writeJSON(w, http.StatusOK, templates)
}

// GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()
		if err := s.ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
