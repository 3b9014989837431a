package server

import "net/http"

// HeaderFunc adds headers to a response before the handler writes it.
type HeaderFunc func(h http.Header)

// corsHeaders relaxes cross-origin restrictions for local testing.
func corsHeaders(h http.Header) {
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
}

// injectHeaders applies fn ahead of next, so every response next produces,
// error pages included, carries the headers.
func injectHeaders(fn HeaderFunc) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fn(w.Header())
			next.ServeHTTP(w, r)
		})
	}
}

func handlePreflight() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}
