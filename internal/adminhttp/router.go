package adminhttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marmos91/corectl/internal/corelog"
	"github.com/marmos91/corectl/pkg/fsmctl"
	"github.com/marmos91/corectl/pkg/handle"
)

// NewRouter creates and configures the chi router for the admin/debug HTTP
// surface.
//
// The router is configured with:
//   - Request ID middleware for request tracking
//   - Real IP extraction for proper client identification
//   - Custom request logging via corelog
//   - Panic recovery to prevent server crashes
//   - Request timeout to prevent hung requests
//
// Routes:
//   - GET /healthz - liveness probe
//   - GET /readyz - readiness probe
//   - GET /metrics - Prometheus metrics
//   - GET /debug/handles - entity handle table snapshot
//   - DELETE /debug/handles/{handle} - delete one handle table entry
//   - GET /debug/fsm - FSM control snapshot
func NewRouter(handles *handle.Server, control *fsmctl.Control) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	h := &handlers{handles: handles, control: control}

	r.Get("/healthz", h.Liveness)
	r.Get("/readyz", h.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/debug", func(r chi.Router) {
		r.Get("/handles", h.DebugHandles)
		r.Delete("/handles/{handle}", h.DeleteHandle)
		r.Get("/fsm", h.DebugFSM)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/healthz", http.StatusTemporaryRedirect)
	})

	return r
}

// requestLogger logs request start at DEBUG and request completion at INFO,
// mirroring the rest of the daemon's structured logging.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		corelog.Debug("admin request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		corelog.Info("admin request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
		)
	})
}
