// Package serve provides the HTTP API for balance queries and plugin tool calls
package serve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/denysvitali/nbalance/internal/balance"
	"github.com/denysvitali/nbalance/internal/host"
	"github.com/denysvitali/nbalance/internal/logger"
	"github.com/denysvitali/nbalance/internal/metrics"
)

const (
	shutdownTimeout = 5 * time.Second
	maxBodyBytes    = 64 << 10
)

// Config holds the server configuration
type Config struct {
	Host string
	Port int
}

// Addr returns the listen address
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Server represents the HTTP server
type Server struct {
	config  Config
	engine  *host.Engine
	fetcher *balance.Fetcher
	logger  *zap.Logger
	server  *http.Server
}

// NewServer creates a new HTTP server backed by a loaded plugin engine
func NewServer(cfg Config, engine *host.Engine, fetcher *balance.Fetcher, l *zap.Logger) *Server {
	s := &Server{
		config:  cfg,
		engine:  engine,
		fetcher: fetcher,
		logger:  logger.OrNop(l),
	}
	s.server = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the router serving all endpoints
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(s.recoverer)
	r.Use(s.requestLogger)
	r.Use(metrics.Middleware())

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/balance", s.handleBalance)
		r.Get("/plugins", s.handlePlugins)
		r.Get("/tools", s.handleTools)
		r.Post("/tools/call", s.handleToolCall)
		r.Get("/chat", s.handleChat)
	})
	return r
}

// Start starts the HTTP server and shuts it down when ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting server", zap.String("addr", "http://"+s.config.Addr()))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Error during shutdown", zap.Error(err))
		}
	}()

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleBalance runs one balance query. Query failures are still a 200:
// the result text is the reply a chat user would see.
func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, http.StatusOK, s.fetcher.Fetch(r.Context()))
}

func (s *Server) handlePlugins(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Plugins())
}

func (s *Server) handleTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Tools())
}

func (s *Server) handleToolCall(w http.ResponseWriter, r *http.Request) {
	var call openai.ToolCall
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&call); err != nil {
		writeError(w, http.StatusBadRequest, "invalid tool call: "+err.Error())
		return
	}
	if call.Function.Name == "" {
		writeError(w, http.StatusBadRequest, "function name is required")
		return
	}

	ev := &host.TextEvent{From: r.RemoteAddr}
	msg, err := s.engine.CallTool(r.Context(), ev, call)
	switch {
	case errors.Is(err, host.ErrUnknownTool):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, "tool call failed")
	default:
		writeJSON(w, http.StatusOK, msg)
	}
}

// recoverer returns JSON instead of a plain text stacktrace
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				s.logger.Error("panic recovered", zap.Any("panic", rvr), zap.Stack("stacktrace"))
				writeError(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// requestLogger emits one log line per request and puts a request scoped
// logger into the context.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := chiMiddleware.GetReqID(r.Context())
		if requestID != "" {
			w.Header().Set("X-Request-ID", requestID)
		}

		reqLogger := s.logger.With(zap.String("request_id", requestID))
		ctx := logger.ContextWithLogger(r.Context(), reqLogger)

		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		reqLogger.Debug("http_request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", r.RemoteAddr),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
