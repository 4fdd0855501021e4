package httpserver

import (
	"net/http"
	"time"
)

// New builds the API server. Requests are small JSON bodies and every
// operation is an in-memory or single-row round trip, so the timeouts are
// tight; evaluation against the coprocessor simulator stays well inside them.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
