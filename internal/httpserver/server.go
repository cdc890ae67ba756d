package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Timeouts bounds the server's request lifecycle. Write runs from the end of
// the request headers until the response is written, so it must cover a full
// multipart video upload.
type Timeouts struct {
	ReadHeader time.Duration
	Write      time.Duration
	Shutdown   time.Duration
}

// Server wraps the http.Server with the timeouts the service runs with.
type Server struct {
	inner *http.Server
	grace time.Duration
}

// New constructs a server listening on the provided port.
func New(port int, handler http.Handler, timeouts Timeouts) *Server {
	return &Server{
		inner: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
			WriteTimeout:      timeouts.Write,
		},
		grace: timeouts.Shutdown,
	}
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown stops accepting connections and waits up to the shutdown grace
// period for in-flight requests to drain.
func (s *Server) Shutdown(parent context.Context) error {
	ctx, cancel := context.WithTimeout(parent, s.grace)
	defer cancel()
	return s.inner.Shutdown(ctx)
}
