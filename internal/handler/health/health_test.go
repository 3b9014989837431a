package health_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/playperu/devserver/internal/handler/health"
)

type mockChecker struct{ err error }

func (m mockChecker) Check(_ context.Context) error { return m.err }

func TestHandler(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]health.Checker
		wantStatus int
		wantBody   map[string]string
	}{
		{
			name: "all healthy",
			checks: map[string]health.Checker{
				"root":  mockChecker{},
				"index": mockChecker{},
			},
			wantStatus: http.StatusOK,
			wantBody:   map[string]string{"root": "ok", "index": "ok"},
		},
		{
			name: "index missing",
			checks: map[string]health.Checker{
				"root":  mockChecker{},
				"index": mockChecker{err: errors.New("no such file")},
			},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   map[string]string{"root": "ok", "index": "error"},
		},
		{
			name: "both down",
			checks: map[string]health.Checker{
				"root":  mockChecker{err: errors.New("permission denied")},
				"index": mockChecker{err: errors.New("no such file")},
			},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   map[string]string{"root": "error", "index": "error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := health.NewHandler(slog.Default(), tt.checks)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			h.Routes().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body map[string]struct{ Status, Error string }
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decoding response: %v", err)
			}

			for name, want := range tt.wantBody {
				got := body[name]
				if got.Status != want {
					t.Errorf("%s status = %q, want %q", name, got.Status, want)
				}
				if want == "error" && got.Error == "" {
					t.Errorf("%s: expected an error message", name)
				}
			}
		})
	}
}

func TestDirAndFile(t *testing.T) {
	dir := t.TempDir()
	index := filepath.Join(dir, "index.html")
	if err := os.WriteFile(index, []byte("<html></html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := health.Dir(dir).Check(ctx); err != nil {
		t.Errorf("Dir(existing dir) = %v, want nil", err)
	}
	if err := health.Dir(index).Check(ctx); err == nil {
		t.Error("Dir(file) = nil, want error")
	}
	if err := health.Dir(filepath.Join(dir, "missing")).Check(ctx); err == nil {
		t.Error("Dir(missing) = nil, want error")
	}

	if err := health.File(index).Check(ctx); err != nil {
		t.Errorf("File(existing file) = %v, want nil", err)
	}
	if err := health.File(dir).Check(ctx); err == nil {
		t.Error("File(dir) = nil, want error")
	}
	if err := health.File(filepath.Join(dir, "gone.html")).Check(ctx); err == nil {
		t.Error("File(missing) = nil, want error")
	}
}

// brokenWriter accepts headers but fails every body write.
type brokenWriter struct{ header http.Header }

func (b *brokenWriter) Header() http.Header       { return b.header }
func (b *brokenWriter) WriteHeader(int)           {}
func (b *brokenWriter) Write([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestHandlerLogsWriteFailure(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	h := health.NewHandler(logger, map[string]health.Checker{"root": mockChecker{}})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	h.Routes().ServeHTTP(&brokenWriter{header: http.Header{}}, req)

	if !strings.Contains(logs.String(), "encoding health response") {
		t.Errorf("write failure not logged:\n%s", logs.String())
	}
	if !strings.Contains(logs.String(), "connection reset") {
		t.Errorf("log line missing the underlying error:\n%s", logs.String())
	}
}
