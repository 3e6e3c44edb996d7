package server

import (
	"log/slog"
	"net/http"

	"tastybites-dashboard/internal/handlers"
	"tastybites-dashboard/internal/services"
)

type Server struct {
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(
	facets *services.FacetService,
	projections *services.ProjectionService,
	loader handlers.StatsProvider,
	logger *slog.Logger,
	templateHandlers *TemplateHandlers,
) *Server {
	s := &Server{
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(facets, projections, loader, logger),
		sseHandlers: handlers.NewSSEHandlers(projections, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard page
	s.mux.HandleFunc("GET /{$}", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST API endpoints
	s.mux.HandleFunc("GET /api/facets", s.apiHandlers.HandleFacets)
	s.mux.HandleFunc("POST /api/projection", s.apiHandlers.HandleApply)
	s.mux.HandleFunc("GET /api/summaries", s.apiHandlers.HandleSummaries)
	s.mux.HandleFunc("GET /api/forecast", s.apiHandlers.HandleForecast)

	// Datastar SSE endpoint behind the sidebar's apply button
	s.mux.HandleFunc("GET /sse/apply", s.sseHandlers.HandleApply)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
