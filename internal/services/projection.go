package services

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"tastybites-dashboard/internal/config"
	"tastybites-dashboard/internal/models"
	"tastybites-dashboard/internal/observability"
)

// ProjectionResult is the complete output of one applied query.
type ProjectionResult struct {
	QueryID    string                    `json:"query_id"`
	Criteria   models.FilterCriteria     `json:"criteria"`
	Records    int                       `json:"records"`
	Summaries  []models.SegmentSummary   `json:"summaries"`
	Forecasts  []models.CategoryForecast `json:"forecasts"`
	ComputedAt time.Time                 `json:"computed_at"`
}

// ProjectionService orchestrates one explicit "apply": criteria in, segment
// summaries and category forecasts out. The pipeline stages are pure
// functions of (dataset, criteria); this service only sequences them and
// keeps the last result for the render surface. Nothing recomputes until the
// user applies again.
type ProjectionService struct {
	facets     *FacetService
	filter     *FilterEngine
	forecaster *Forecaster
	cfg        config.PipelineConfig
	logger     *slog.Logger

	mu      sync.RWMutex
	last    *ProjectionResult
	applied atomic.Int64
}

func NewProjectionService(
	facets *FacetService,
	filter *FilterEngine,
	forecaster *Forecaster,
	cfg config.PipelineConfig,
	logger *slog.Logger,
) *ProjectionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProjectionService{
		facets:     facets,
		filter:     filter,
		forecaster: forecaster,
		cfg:        cfg,
		logger:     logger,
	}
}

// Apply runs the full pipeline for one criteria selection. The context flows
// through every stage, so an abandoned request cancels the scan and any
// in-flight model fits. An empty working set is not an error: summaries and
// forecasts come back empty and the caller renders "no data".
func (s *ProjectionService) Apply(ctx context.Context, criteria models.FilterCriteria) (*ProjectionResult, error) {
	// Facet initialization is a startup prerequisite; if a query arrives
	// first, it waits here rather than racing it.
	if _, err := s.facets.Index(ctx); err != nil {
		return nil, err
	}

	ctx, span := observability.StartSpan(ctx, "pipeline.apply")
	defer span.Finish()

	start := time.Now()

	ws, err := s.filter.WorkingSet(ctx, criteria)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	summaries, err := SegmentSummaries(ctx, ws, s.cfg.TopSegments)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	series := CategorySeriesSet(ws, s.cfg.DropTrailingWeek)

	forecasts, err := s.forecaster.ForecastAll(ctx, series)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	result := &ProjectionResult{
		QueryID:    uuid.NewString(),
		Criteria:   criteria,
		Records:    ws.Len(),
		Summaries:  sanitizeSummaries(summaries),
		Forecasts:  sanitizeForecasts(forecasts),
		ComputedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.last = result
	s.mu.Unlock()
	s.applied.Add(1)

	s.logger.Info("projection applied",
		"query_id", result.QueryID,
		"records", result.Records,
		"summaries", len(result.Summaries),
		"forecasts", len(result.Forecasts),
		"duration", time.Since(start),
	)
	return result, nil
}

// Last returns the most recently applied result, or nil before any apply.
func (s *ProjectionService) Last() *ProjectionResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

func (s *ProjectionService) Stats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"queries_applied": s.applied.Load(),
	}
	if s.last != nil {
		stats["last_query_id"] = s.last.QueryID
		stats["last_records"] = s.last.Records
		stats["last_computed_at"] = s.last.ComputedAt
	}
	return stats
}

func sanitizeSummaries(summaries []models.SegmentSummary) []models.SegmentSummary {
	for i := range summaries {
		summaries[i].Subcategory = sanitizeText(summaries[i].Subcategory)
	}
	return summaries
}

func sanitizeForecasts(forecasts []models.CategoryForecast) []models.CategoryForecast {
	for i := range forecasts {
		forecasts[i].Category = sanitizeText(forecasts[i].Category)
		for j := range forecasts[i].Points {
			forecasts[i].Points[j].Category = forecasts[i].Category
		}
	}
	return forecasts
}
