package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"bidding-engine/utils"
)

// Runner is an ifrit.Runner serving an http.Handler until signalled
type Runner struct {
	addr            string
	handler         http.Handler
	shutdownTimeout time.Duration
}

// NewRunner creates a Runner listening on addr
func NewRunner(addr string, handler http.Handler, shutdownTimeout time.Duration) *Runner {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &Runner{addr: addr, handler: handler, shutdownTimeout: shutdownTimeout}
}

// Run listens, reports ready once the socket is bound and drains in-flight requests on a signal
func (r *Runner) Run(signals <-chan os.Signal, ready chan<- struct{}) error {
	listener, err := net.Listen("tcp", r.addr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", r.addr, err)
	}

	srv := &http.Server{
		Handler:           r.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(listener)
	}()

	utils.Info("HTTP server listening", map[string]any{"addr": listener.Addr().String()})
	close(ready)

	select {
	case err := <-serveErr:
		return fmt.Errorf("server: %w", err)
	case sig := <-signals:
		utils.Info("HTTP server shutting down", map[string]any{"signal": sig.String()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
