// Package server exposes the plugin entry points over HTTP.
//
// Each entry point is reachable as POST /v1/functions/{name}. The request
// body is a [pdk.Call] envelope carrying the host facts, the tool config and
// the entry-point input; the response body is the entry-point output, or an
// [pdk.ErrorBody] with a status derived from the error code.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/protocomposer/pkg/buildinfo"
	perrors "github.com/matzehuels/protocomposer/pkg/errors"
	"github.com/matzehuels/protocomposer/pkg/host"
	"github.com/matzehuels/protocomposer/pkg/pdk"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 10 * time.Second
)

// Server dispatches HTTP requests to a function registry.
type Server struct {
	reg    *pdk.Registry
	exec   host.Executor
	logger *log.Logger
	router chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the access and error logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithExecutor sets the executor native_install runs commands through.
// The default runs them as child processes of the server.
func WithExecutor(e host.Executor) Option {
	return func(s *Server) {
		if e != nil {
			s.exec = e
		}
	}
}

// New creates a Server for reg.
func New(reg *pdk.Registry, opts ...Option) *Server {
	s := &Server{
		reg:    reg,
		exec:   host.OSExecutor{},
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1/functions", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/{name}", s.handleCall)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string][]string{"functions": s.reg.Names()})
}

func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	call, err := pdk.DecodeCall(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if call.Function != "" && call.Function != name {
		s.writeError(w, r, perrors.New(perrors.ErrCodeInvalidInput,
			"envelope names %q but the request targets %q", call.Function, name))
		return
	}

	h := &host.Static{Env: call.Host, Config: call.Config, Runner: s.exec}
	out, err := s.reg.Call(r.Context(), name, h, call.Input)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := perrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("call failed",
			"path", r.URL.Path,
			"request_id", requestIDFrom(r.Context()),
			"error", err)
	}
	s.writeJSON(w, r, status, pdk.NewErrorBody(err))
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("write response",
			"path", r.URL.Path,
			"request_id", requestIDFrom(r.Context()),
			"error", err)
	}
}
