package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with timeouts suited to a small API that also
// serves uploaded images. ReadHeaderTimeout guards against slowloris clients;
// the write timeout stays generous enough for multipart uploads.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
