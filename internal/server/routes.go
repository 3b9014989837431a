package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func addRoutes(r chi.Router, logger *slog.Logger, opts Options, m *metrics) {
	if opts.Mount != nil {
		opts.Mount(r)
	}
	if m != nil {
		r.Method(http.MethodGet, opts.MetricsPath, m.handler())
		r.Options(opts.MetricsPath, handlePreflight())
	}

	rw := Rewriter{
		Root:         opts.Root,
		StaticPrefix: opts.StaticPrefix,
		Index:        opts.Index,
	}
	if rw.Index == "" {
		rw.Index = "index.html"
	}
	if rw.StaticPrefix == "" {
		rw.StaticPrefix = "/static"
	}

	files := newFileHandler(rw, logger, m)

	// Everything else is the file tree. Methods other than GET, HEAD and
	// OPTIONS get chi's 405.
	r.Get("/*", files.ServeHTTP)
	r.Options("/*", handlePreflight())

	logger.Info("serving spa", "dir", rw.Root, "static_prefix", rw.StaticPrefix, "index", rw.Index)
}
