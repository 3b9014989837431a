package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Options configures a Server. Root must be an absolute directory; it is
// fixed for the lifetime of the Server.
type Options struct {
	Addr         string
	Root         string
	StaticPrefix string
	Index        string

	// MetricsPath enables Prometheus instrumentation when non-empty.
	MetricsPath     string
	ShutdownTimeout time.Duration

	// Mount registers extra routes (health checks) ahead of the file
	// handler. May be nil.
	Mount func(r chi.Router)
}

type Server struct {
	srv     *http.Server
	ln      net.Listener
	logger  *slog.Logger
	timeout time.Duration
}

func New(opts Options, logger *slog.Logger) *Server {
	r := chi.NewRouter()

	r.Use(injectHeaders(corsHeaders))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(newStructuredLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.GetHead)

	var m *metrics
	if opts.MetricsPath != "" {
		m = newMetrics()
		r.Use(m.middleware(opts.MetricsPath))
	}

	addRoutes(r, logger, opts, m)

	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Server{
		srv: &http.Server{
			Addr:              opts.Addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger:  logger,
		timeout: timeout,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Listen binds the TCP listener and returns the bound address. It is
// separate from Run so callers can report the address before serving.
func (s *Server) Listen() (net.Addr, error) {
	if s.ln != nil {
		return s.ln.Addr(), nil
	}
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}
	s.ln = ln
	return ln.Addr(), nil
}

// Run serves until Shutdown is called. It binds first if Listen was not
// called. The listener is closed when Run returns.
func (s *Server) Run(_ context.Context) error {
	if _, err := s.Listen(); err != nil {
		return err
	}

	err := s.srv.Serve(s.ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and waits for in-flight requests
// up to the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.srv.Shutdown(ctx)
	if s.ln != nil {
		// Serve closes the listener itself, but Run may never have started.
		if cerr := s.ln.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) && err == nil {
			err = cerr
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		s.logger.Warn("shutdown timed out, abandoning in-flight requests", "timeout", s.timeout)
		return s.srv.Close()
	}
	return err
}

func newStructuredLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("http request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration_ms", time.Since(start).Milliseconds(),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
