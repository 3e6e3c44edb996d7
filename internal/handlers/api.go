package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"tastybites-dashboard/internal/errors"
	"tastybites-dashboard/internal/models"
	"tastybites-dashboard/internal/observability"
	"tastybites-dashboard/internal/services"
)

const facetCacheControl = "public, max-age=300"

// StatsProvider exposes counters for the admin surface.
type StatsProvider interface {
	Stats() map[string]any
}

type APIHandlers struct {
	facets      *services.FacetService
	projections *services.ProjectionService
	loader      StatsProvider
	logger      *slog.Logger
}

func NewAPIHandlers(facets *services.FacetService, projections *services.ProjectionService, loader StatsProvider, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		facets:      facets,
		projections: projections,
		loader:      loader,
		logger:      logger,
	}
}

// HandleFacets serves the filter choices. The index is computed on first use
// and never changes afterwards, so it caches well.
func (h *APIHandlers) HandleFacets(w http.ResponseWriter, r *http.Request) {
	index, err := h.facets.Index(r.Context())
	if err != nil {
		requestID := observability.GetRequestID(r.Context())
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "failed to compute facet index"), requestID)
		return
	}

	errors.WriteSuccessWithHeaders(w, index, map[string]string{
		"Cache-Control": facetCacheControl,
	})
}

// HandleApply is the explicit "apply" trigger: it runs the full pipeline for
// the posted criteria and returns the complete projection result.
func (h *APIHandlers) HandleApply(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	var criteria models.FilterCriteria
	if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil {
		errors.WriteError(w, h.logger, errors.BadRequestWrap(err, "invalid filter criteria payload"), requestID)
		return
	}

	if appErr := validateCriteria(criteria); appErr != nil {
		errors.WriteError(w, h.logger, appErr, requestID)
		return
	}

	result, err := h.projections.Apply(r.Context(), criteria)
	if err != nil {
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "projection failed"), requestID)
		return
	}

	errors.WriteSuccess(w, result)
}

// HandleSummaries serves the segment summaries of the last applied query.
func (h *APIHandlers) HandleSummaries(w http.ResponseWriter, r *http.Request) {
	last := h.projections.Last()
	if last == nil {
		errors.WriteSuccess(w, []models.SegmentSummary{})
		return
	}
	errors.WriteSuccess(w, last.Summaries)
}

// HandleForecast serves the merged actual+forecast sequences of the last
// applied query.
func (h *APIHandlers) HandleForecast(w http.ResponseWriter, r *http.Request) {
	last := h.projections.Last()
	if last == nil {
		errors.WriteSuccess(w, []models.CategoryForecast{})
		return
	}
	errors.WriteSuccess(w, last.Forecasts)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]any{
		"loader":      h.loader.Stats(),
		"projections": h.projections.Stats(),
	}

	errors.WriteSuccess(w, stats)
}

func validateCriteria(c models.FilterCriteria) *errors.AppError {
	if c.MinYear != 0 && c.MaxYear != 0 && c.MinYear > c.MaxYear {
		return errors.Validation("min_year must not exceed max_year")
	}
	return nil
}
