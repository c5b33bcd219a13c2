// Package adminhttp exposes corectld's operational surface over HTTP:
// liveness/readiness probes, Prometheus metrics, introspection of the entity
// handle table and the FSM control loop, and one debug endpoint that deletes
// a handle table entry. It carries none of the daemon's actual protocol
// traffic.
package adminhttp

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/marmos91/corectl/internal/corelog"
	"github.com/marmos91/corectl/pkg/fsmctl"
	"github.com/marmos91/corectl/pkg/handle"
)

// Config configures the admin HTTP server.
type Config struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

func (c *Config) applyDefaults() {
	if c.Port <= 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
}

// Server wraps an *http.Server exposing the admin/debug endpoints.
type Server struct {
	server       *http.Server
	config       Config
	shutdownOnce sync.Once
}

// NewServer creates the admin HTTP server in a stopped state. Call Start to
// begin serving requests. handles and control may be nil; the debug listing
// endpoints then report an empty snapshot, while readiness and handle
// deletion report 503 Service Unavailable.
func NewServer(config Config, handles *handle.Server, control *fsmctl.Control) *Server {
	config.applyDefaults()

	router := NewRouter(handles, control)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return &Server{server: httpServer, config: config}
}

// Start serves admin HTTP requests until ctx is cancelled, then shuts down
// gracefully and returns.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		corelog.Info("admin HTTP server listening", "port", s.config.Port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			default:
			}
		}
	}()

	select {
	case <-ctx.Done():
		corelog.Info("admin HTTP server shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("admin HTTP server failed: %w", err)
	}
}

// Stop initiates graceful shutdown. Safe to call more than once and
// concurrently with Start.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		corelog.Debug("admin HTTP server shutdown initiated")
		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("admin HTTP server shutdown error: %w", err)
			corelog.Error("admin HTTP server shutdown error", corelog.Err(err))
		} else {
			corelog.Info("admin HTTP server stopped gracefully")
		}
	})
	return shutdownErr
}

// Port returns the TCP port the server is listening on.
func (s *Server) Port() int {
	return s.config.Port
}
