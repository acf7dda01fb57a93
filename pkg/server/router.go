package server

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	rgerrors "github.com/NVIDIA/rgvalidator/pkg/errors"
	"github.com/NVIDIA/rgvalidator/pkg/serializer"
)

const (
	routeRoot    = "/"
	routeHealth  = "/health"
	routeReady   = "/ready"
	routeMetrics = "/metrics"
)

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	// Default handler
	mux.HandleFunc(routeRoot, s.handleDefault)

	// System endpoints (no rate limiting)
	mux.HandleFunc(routeHealth, s.handleHealth)
	mux.HandleFunc(routeReady, s.handleReady)
	mux.Handle(routeMetrics, promhttp.Handler())

	// API endpoints with middleware
	for route, h := range s.handlers {
		mux.HandleFunc(route, s.withMiddleware(route, h))
	}

	return mux
}

func (s *Server) routes() []string {
	routes := []string{routeHealth, routeReady, routeMetrics}
	for route := range s.handlers {
		routes = append(routes, route)
	}
	slices.Sort(routes)
	return routes
}

func (s *Server) handleDefault(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handling default route",
		"path", r.URL.Path,
		"method", r.Method,
		"remote_addr", r.RemoteAddr,
		"user_agent", r.UserAgent(),
	)

	if r.URL.Path != routeRoot {
		WriteError(w, r, http.StatusNotFound, rgerrors.ErrCodeNotFound,
			"no route for "+r.URL.Path, false, nil)
		return
	}
	if !allowGet(w, r) {
		return
	}

	serializer.RespondJSON(w, http.StatusOK, InfoResponse{
		Name:      s.name,
		Version:   s.version,
		Ready:     s.isReady(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Routes:    s.routes(),
	})
}
