// Package services implements the filter → aggregate → forecast pipeline
// behind the sales exploration dashboard.
package services

import (
	"context"
	"log/slog"
	"math/rand"
	"sort"
	"sync"

	"tastybites-dashboard/internal/models"
)

// RecordSource streams transaction records in batches. The parquet loader is
// the production implementation; tests feed slices through the same contract.
type RecordSource interface {
	Scan(ctx context.Context, visit func(batch []models.TransactionRecord) error) error
}

// FacetService computes the filter facets exactly once per process from a
// seeded sample of the dataset. The same seed over the same file yields the
// same sample, so restarts surface identical filter choices. There is no
// invalidation path: an index computed at startup stays for the process
// lifetime even if the dataset file is replaced underneath it.
type FacetService struct {
	source   RecordSource
	fraction float64
	seed     int64
	logger   *slog.Logger

	once  sync.Once
	index models.FacetIndex
	err   error
}

func NewFacetService(source RecordSource, fraction float64, seed int64, logger *slog.Logger) *FacetService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FacetService{
		source:   source,
		fraction: fraction,
		seed:     seed,
		logger:   logger,
	}
}

// Index returns the facet index, computing it on first use. Concurrent
// callers block until the one-time computation finishes.
func (s *FacetService) Index(ctx context.Context) (models.FacetIndex, error) {
	s.once.Do(func() {
		s.index, s.err = s.compute(ctx)
		if s.err == nil {
			s.logger.Info("facet index computed",
				"brands", len(s.index.Brands)-1,
				"cities", len(s.index.Cities)-1,
				"categories", len(s.index.Categories)-1,
				"min_year", s.index.MinYear,
				"max_year", s.index.MaxYear,
			)
		}
	})
	return s.index, s.err
}

func (s *FacetService) compute(ctx context.Context) (models.FacetIndex, error) {
	// One rand draw per record in file order keeps the sample deterministic
	// for a given seed and dataset.
	rng := rand.New(rand.NewSource(s.seed))

	brands := make(map[string]struct{})
	cities := make(map[string]struct{})
	categories := make(map[string]struct{})
	minYear, maxYear := 0, 0

	err := s.source.Scan(ctx, func(batch []models.TransactionRecord) error {
		for _, r := range batch {
			if rng.Float64() >= s.fraction {
				continue
			}
			brands[r.Brand] = struct{}{}
			cities[r.City] = struct{}{}
			categories[r.Category] = struct{}{}

			year := r.Date.Year()
			if minYear == 0 || year < minYear {
				minYear = year
			}
			if year > maxYear {
				maxYear = year
			}
		}
		return nil
	})
	if err != nil {
		return models.FacetIndex{}, err
	}

	return models.FacetIndex{
		Brands:     facetValues(brands),
		Cities:     facetValues(cities),
		Categories: facetValues(categories),
		MinYear:    minYear,
		MaxYear:    maxYear,
	}, nil
}

// facetValues sorts the distinct values and prefixes the All sentinel.
func facetValues(set map[string]struct{}) []string {
	values := make([]string, 0, len(set)+1)
	for v := range set {
		values = append(values, sanitizeText(v))
	}
	sort.Strings(values)
	return append([]string{models.All}, values...)
}
