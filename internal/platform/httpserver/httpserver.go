// Package httpserver constructs the process's HTTP server. The lookup API is
// read-only and serves small JSON documents, so the timeouts are tight.
package httpserver

import (
	"net/http"
	"time"
)

// New builds the lookup server. Responses are bounded result sets, never
// streams, so a short write timeout is safe.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
