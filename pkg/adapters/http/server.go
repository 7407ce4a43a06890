package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/relay/internal/logging"
	"github.com/aretw0/relay/pkg/conversation"
	"github.com/aretw0/relay/pkg/domain"
	"github.com/aretw0/relay/pkg/runner"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Catalog lists the tools the assistant may call.
type Catalog interface {
	Tools() []domain.Tool
}

// Server exposes conversations over HTTP.
type Server struct {
	Threads runner.ThreadEnsurer
	Asker   runner.Asker
	Catalog Catalog

	logger  *slog.Logger
	metrics http.Handler
	timeout time.Duration
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsHandler replaces the default Prometheus handler served on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithRequestTimeout bounds how long one message may wait for its reply.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.timeout = d
	}
}

// MessageRequest is the body of POST /threads/{threadID}/messages.
type MessageRequest struct {
	Message string `json:"message"`
}

// MessageResponse carries the reply of one turn.
type MessageResponse struct {
	ThreadID string `json:"thread_id"`
	Reply    string `json:"reply"`
}

// ThreadResponse is returned when a thread is created.
type ThreadResponse struct {
	ThreadID string `json:"thread_id"`
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewHandler creates the HTTP handler of the relay surface.
func NewHandler(threads runner.ThreadEnsurer, asker runner.Asker, catalog Catalog, opts ...Option) http.Handler {
	s := &Server{
		Threads: threads,
		Asker:   asker,
		Catalog: catalog,
		logger:  logging.NewNop(),
		metrics: promhttp.Handler(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.Health)
	r.Handle("/metrics", s.metrics)
	r.Get("/tools", s.ListTools)
	r.Post("/threads", s.CreateThread)
	r.Post("/threads/{threadID}/messages", s.PostMessage)

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListTools handles GET /tools.
func (s *Server) ListTools(w http.ResponseWriter, r *http.Request) {
	tools := s.Catalog.Tools()
	if tools == nil {
		tools = []domain.Tool{}
	}
	s.writeJSON(w, http.StatusOK, tools)
}

// CreateThread handles POST /threads.
func (s *Server) CreateThread(w http.ResponseWriter, r *http.Request) {
	thread, err := s.Threads.EnsureThread(r.Context(), "")
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, ThreadResponse{ThreadID: thread.ID})
}

// PostMessage handles POST /threads/{threadID}/messages and answers with the reply.
func (s *Server) PostMessage(w http.ResponseWriter, r *http.Request) {
	var body MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.logger.Warn("invalid request body", "err", err)
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	text, err := conversation.Clean(body.Message, 0)
	if err != nil {
		s.writeError(w, err)
		return
	}

	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	thread, err := s.Threads.EnsureThread(ctx, chi.URLParam(r, "threadID"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	reply, err := s.Asker.Ask(ctx, thread, text)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, MessageResponse{ThreadID: thread.ID, Reply: reply})
}

// StatusFor maps an orchestration error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyMessage), errors.Is(err, domain.ErrMessageEncoding):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrMessageTooLong):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrThreadNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRemoteUnavailable), errors.Is(err, domain.ErrRunTerminated):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrUnsupportedTool), errors.Is(err, domain.ErrMalformedArguments):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := StatusFor(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err, "status", code)
	} else {
		s.logger.Warn("request rejected", "err", err, "status", code)
	}
	s.writeJSON(w, code, ErrorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
