// Package console prints the human-readable startup and shutdown lines.
// Colour is dropped automatically when the output is not a terminal or
// NO_COLOR is set.
package console

import (
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/fatih/color"
)

var (
	accent  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen, color.Bold)
	muted   = color.New(color.Faint)
	failure = color.New(color.FgRed, color.Bold)
)

// URL returns the browser URL for a bound address. Unspecified hosts
// (all interfaces) are shown as localhost.
func URL(addr net.Addr) string {
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return "http://" + addr.String()
	}
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

func Ready(w io.Writer, url, dir, staticPrefix string) {
	accent.Fprintf(w, "Dev server running at %s\n", url)
	fmt.Fprintf(w, "Serving files from: %s\n", dir)
	fmt.Fprintf(w, "Static assets (no SPA fallback): %s\n", staticPrefix)
	success.Fprintln(w, "Ready.")
	muted.Fprintln(w, "Press Ctrl+C to stop the server")
	muted.Fprintln(w, strings.Repeat("-", 50))
}

func Stopped(w io.Writer) {
	fmt.Fprintln(w)
	success.Fprintln(w, "Server stopped")
}

func Failed(w io.Writer, err error) {
	failure.Fprintf(w, "error: %v\n", err)
}
