package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"tastybites-dashboard/internal/models"
)

// FilterEngine turns FilterCriteria into a WorkingSet by streaming the
// dataset and keeping only matching records, partitioned by city so the
// aggregation stages can fan out. The most recent (criteria, working set)
// pair is cached: re-applying identical criteria costs no dataset I/O.
type FilterEngine struct {
	source     RecordSource
	partitions int
	logger     *slog.Logger

	mu      sync.Mutex
	lastKey string
	lastSet *models.WorkingSet
}

func NewFilterEngine(source RecordSource, partitions int, logger *slog.Logger) *FilterEngine {
	if partitions < 1 {
		partitions = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FilterEngine{
		source:     source,
		partitions: partitions,
		logger:     logger,
	}
}

// predicate is the compiled form of FilterCriteria. A nil set means the
// dimension is unfiltered.
type predicate struct {
	brands     map[string]struct{}
	cities     map[string]struct{}
	categories map[string]struct{}
	minYear    int
	maxYear    int
}

func compilePredicate(c models.FilterCriteria) predicate {
	var citySelection []string
	if c.City != "" {
		citySelection = []string{c.City}
	}
	return predicate{
		brands:     selectionSet(c.Brands),
		cities:     selectionSet(citySelection),
		categories: selectionSet(c.Categories),
		minYear:    c.MinYear,
		maxYear:    c.MaxYear,
	}
}

// selectionSet returns nil when the selection is unfiltered: empty, or
// containing the All sentinel anywhere, regardless of other values.
func selectionSet(selection []string) map[string]struct{} {
	if len(selection) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(selection))
	for _, v := range selection {
		if v == models.All {
			return nil
		}
		set[v] = struct{}{}
	}
	return set
}

func (p predicate) matches(r models.TransactionRecord) bool {
	if p.brands != nil {
		if _, ok := p.brands[r.Brand]; !ok {
			return false
		}
	}
	if p.cities != nil {
		if _, ok := p.cities[r.City]; !ok {
			return false
		}
	}
	if p.categories != nil {
		if _, ok := p.categories[r.Category]; !ok {
			return false
		}
	}
	year := r.Date.Year()
	if p.minYear != 0 && year < p.minYear {
		return false
	}
	if p.maxYear != 0 && year > p.maxYear {
		return false
	}
	return true
}

// WorkingSet streams the dataset through the compiled predicate. Records land
// in partitions keyed by city hash; the partition count is fixed per engine.
func (e *FilterEngine) WorkingSet(ctx context.Context, c models.FilterCriteria) (*models.WorkingSet, error) {
	key := criteriaKey(c)

	e.mu.Lock()
	if e.lastSet != nil && e.lastKey == key {
		set := e.lastSet
		e.mu.Unlock()
		e.logger.Debug("working set cache hit", "criteria", key)
		return set, nil
	}
	e.mu.Unlock()

	pred := compilePredicate(c)
	partitions := make([][]models.TransactionRecord, e.partitions)

	start := time.Now()
	err := e.source.Scan(ctx, func(batch []models.TransactionRecord) error {
		for _, r := range batch {
			if !pred.matches(r) {
				continue
			}
			idx := cityPartition(r.City, e.partitions)
			partitions[idx] = append(partitions[idx], r)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("filter scan: %w", err)
	}

	set := &models.WorkingSet{Partitions: partitions}
	e.logger.Info("working set built",
		"criteria", key,
		"records", set.Len(),
		"partitions", e.partitions,
		"duration", time.Since(start),
	)

	e.mu.Lock()
	e.lastKey = key
	e.lastSet = set
	e.mu.Unlock()

	return set, nil
}

func cityPartition(city string, partitions int) int {
	h := fnv.New32a()
	h.Write([]byte(city))
	return int(h.Sum32() % uint32(partitions))
}

// criteriaKey is a canonical cache key: selections are sorted so that the
// same logical criteria always map to the same key.
func criteriaKey(c models.FilterCriteria) string {
	brands := append([]string(nil), c.Brands...)
	categories := append([]string(nil), c.Categories...)
	sort.Strings(brands)
	sort.Strings(categories)
	return fmt.Sprintf("b=%s|c=%s|k=%s|y=%d-%d",
		strings.Join(brands, ","),
		c.City,
		strings.Join(categories, ","),
		c.MinYear,
		c.MaxYear,
	)
}
