package server

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Rewriter maps a request path to the path that is actually served.
// Anything that is not a real file and not under StaticPrefix is answered
// with the index document so the SPA can route it client side.
type Rewriter struct {
	Root         string
	StaticPrefix string
	Index        string

	// Exists reports whether rel (slash-separated, relative to Root)
	// exists. Nil means os.Stat under Root.
	Exists func(rel string) bool
}

// Rewrite returns the path to serve for urlPath. Directories count as
// existing. The existence probe uses the path as given, uncleaned, so a
// trailing slash on a file does not match; delivery goes through
// http.Dir, which keeps reads inside Root. An empty StaticPrefix exempts
// nothing.
func (rw Rewriter) Rewrite(urlPath string) string {
	index := "/" + rw.Index
	if urlPath == "/" {
		return index
	}
	if !rw.exists(strings.TrimPrefix(urlPath, "/")) && !rw.isStatic(urlPath) {
		return index
	}
	return urlPath
}

func (rw Rewriter) isStatic(urlPath string) bool {
	return rw.StaticPrefix != "" && strings.HasPrefix(urlPath, rw.StaticPrefix)
}

func (rw Rewriter) exists(rel string) bool {
	if rw.Exists != nil {
		return rw.Exists(rel)
	}
	// No filepath.Join: it would clean away trailing slashes and ".." segments.
	_, err := os.Stat(rw.Root + string(filepath.Separator) + filepath.FromSlash(rel))
	return err == nil
}

// fileHandler serves files from root, resolving each path through rw.
type fileHandler struct {
	rw         Rewriter
	fs         http.FileSystem
	fileServer http.Handler
	logger     *slog.Logger
	metrics    *metrics
}

func newFileHandler(rw Rewriter, logger *slog.Logger, m *metrics) *fileHandler {
	fsys := http.Dir(rw.Root)
	return &fileHandler{
		rw:         rw,
		fs:         fsys,
		fileServer: http.FileServer(fsys),
		logger:     logger,
		metrics:    m,
	}
}

func (h *fileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := h.rw.Rewrite(r.URL.Path)
	if name != r.URL.Path {
		h.logger.Debug("spa fallback", "path", r.URL.Path, "target", name)
		h.metrics.fallback()
	}

	f, err := h.fs.Open(name)
	if err != nil {
		msg, code := toHTTPError(err)
		http.Error(w, msg, code)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		msg, code := toHTTPError(err)
		http.Error(w, msg, code)
		return
	}

	// Directories keep the stock behaviour: trailing-slash redirects,
	// index.html lookup and listings.
	if info.IsDir() {
		r2 := r.Clone(r.Context())
		r2.URL.Path = name
		h.fileServer.ServeHTTP(w, r2)
		return
	}

	// ServeContent instead of ServeFile: ServeFile redirects any path
	// ending in /index.html to ./, which would loop for "/".
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// toHTTPError mirrors the messages net/http uses for file errors.
func toHTTPError(err error) (string, int) {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "404 page not found", http.StatusNotFound
	case errors.Is(err, fs.ErrPermission):
		return "403 Forbidden", http.StatusForbidden
	default:
		return "500 Internal Server Error", http.StatusInternalServerError
	}
}
