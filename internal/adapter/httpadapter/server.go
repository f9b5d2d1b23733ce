package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/weather-dashboard-service/internal/dashboard"
	"github.com/couchcryptid/weather-dashboard-service/internal/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dashboard is the session-scoped application surface served over HTTP.
type Dashboard interface {
	CreateSession() dashboard.Session
	Session(id string) (dashboard.Session, error)
	SetLocation(ctx context.Context, id, query string) (dashboard.Session, error)
	LocateByIP(ctx context.Context, id string) (dashboard.Session, error)
	Refresh(ctx context.Context, id string) (dashboard.Session, error)
	SetUnit(ctx context.Context, id string, unit domain.Unit) (dashboard.Session, error)
	AddFavorite(id string) (dashboard.Session, error)
	RemoveFavorite(id string, i int) (dashboard.Session, error)
	LoadFavorite(ctx context.Context, id string, i int) (dashboard.Session, error)
	Assistant(ctx context.Context, id string) (dashboard.Assistant, error)
	Insight(ctx context.Context, id string, kind dashboard.InsightKind) (string, error)
	Trends(id string) (dashboard.TrendReport, error)
}

// Server exposes the dashboard API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	dashboard  Dashboard
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the /api/v1 routes and the
// /healthz, /readyz, and /metrics routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, d Dashboard, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:    addr,
			Handler: mux,
			// Writes cover a geocode, three provider calls and an LLM call.
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		dashboard: d,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/v1/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/v1/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("POST /api/v1/sessions/{id}/location", s.handleSetLocation)
	mux.HandleFunc("POST /api/v1/sessions/{id}/location/ip", s.handleLocateByIP)
	mux.HandleFunc("POST /api/v1/sessions/{id}/refresh", s.handleRefresh)
	mux.HandleFunc("PUT /api/v1/sessions/{id}/unit", s.handleSetUnit)
	mux.HandleFunc("POST /api/v1/sessions/{id}/favorites", s.handleAddFavorite)
	mux.HandleFunc("DELETE /api/v1/sessions/{id}/favorites/{index}", s.handleRemoveFavorite)
	mux.HandleFunc("POST /api/v1/sessions/{id}/favorites/{index}/load", s.handleLoadFavorite)
	mux.HandleFunc("GET /api/v1/sessions/{id}/assistant", s.handleAssistant)
	mux.HandleFunc("POST /api/v1/sessions/{id}/insights/{kind}", s.handleInsight)
	mux.HandleFunc("GET /api/v1/sessions/{id}/trends", s.handleTrends)
	mux.HandleFunc("GET /api/v1/realfeel", s.handleRealFeel)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
