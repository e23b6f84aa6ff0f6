// internal/httpapi/server.go

// Package httpapi exposes the core pipeline as plain-JSON HTTP endpoints
// consumable by any rendering layer.
package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"recruitment-analytics/internal/common/logger"
	"recruitment-analytics/internal/dashboard"
)

// Server routes HTTP requests to the dashboard service.
type Server struct {
	svc    *dashboard.Service
	logger logger.Logger
}

func NewServer(svc *dashboard.Service, log logger.Logger) *Server {
	return &Server{
		svc:    svc,
		logger: log.WithFields(map[string]interface{}{"component": "httpapi"}),
	}
}

// Handler builds the full route table, wrapped in the request middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/dashboard", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: s.handleDashboard,
	}))
	mux.HandleFunc("/api/dimensions", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: s.handleDimensions,
	}))
	mux.HandleFunc("/api/records", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: s.handleRecords,
	}))
	mux.HandleFunc("/api/export", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: s.handleExport,
	}))
	mux.HandleFunc("/api/reload", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: s.handleReload,
	}))
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.Handler())

	return withRequestContext(s.logger, mux)
}

func methodMux(m map[string]http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h, ok := m[r.Method]; ok {
			h(w, r)
			return
		}
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
