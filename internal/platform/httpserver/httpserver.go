package httpserver

import (
	"net/http"
	"time"
)

// New builds the HTTP server. Read limits fit the score-report upload; the
// write timeout leaves room for the score-validation step, which may spend
// up to 90s retrying the upstream before responding.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       90 * time.Second,
	}
}
