// Package api exposes the operational HTTP surface: health, catalog reload,
// and balance inspection. Players never touch this; they speak the binary
// protocol through the gateway.
package api

import (
	"net/http"
	"time"
)

// NewServer creates a configured *http.Server for the admin API.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
