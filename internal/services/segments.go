package services

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"tastybites-dashboard/internal/models"
)

// Presentation labels derived from the subcategory name. Cosmetic only; the
// ranking never looks at them.
const (
	LabelHot  = "Hot Option"
	LabelCold = "Cold Option"
	LabelWarm = "Warm Option"
)

type segmentTotals struct {
	sum   float64
	count int64
}

// SegmentSummaries groups the working set by item subcategory, ranks by total
// sales, and returns the top `limit` segments with their daily revenue
// series. Fewer than `limit` distinct subcategories is not an error — the
// result just shrinks. An empty working set yields an empty, non-nil slice.
func SegmentSummaries(ctx context.Context, ws *models.WorkingSet, limit int) ([]models.SegmentSummary, error) {
	totals, err := aggregateSegments(ctx, ws)
	if err != nil {
		return nil, err
	}

	ranked := rankSegments(totals, limit)

	summaries := make([]models.SegmentSummary, 0, len(ranked))
	for _, sub := range ranked {
		t := totals[sub]
		summaries = append(summaries, models.SegmentSummary{
			Subcategory:  sub,
			Label:        classifySegment(sub),
			AvgSpending:  t.sum / float64(t.count),
			TotalSales:   t.sum,
			DailyRevenue: dailyRevenueSeries(ws, sub),
		})
	}
	return summaries, nil
}

// aggregateSegments computes per-subcategory price sums and counts. Each city
// partition is reduced by its own worker into a local map, then merged under
// a lock, so partitions never contend while scanning.
func aggregateSegments(ctx context.Context, ws *models.WorkingSet) (map[string]segmentTotals, error) {
	global := make(map[string]segmentTotals)
	var mu sync.Mutex

	var wg errgroup.Group
	for _, partition := range ws.Partitions {
		wg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			local := make(map[string]segmentTotals)
			for _, r := range partition {
				t := local[r.Subcategory]
				t.sum += r.Price
				t.count++
				local[r.Subcategory] = t
			}

			mu.Lock()
			for sub, t := range local {
				g := global[sub]
				g.sum += t.sum
				g.count += t.count
				global[sub] = g
			}
			mu.Unlock()
			return nil
		})
	}

	if err := wg.Wait(); err != nil {
		return nil, err
	}
	return global, nil
}

// rankSegments orders subcategories by total sales descending and keeps the
// first `limit`. Exact ties break alphabetically so repeated queries rank
// identically.
func rankSegments(totals map[string]segmentTotals, limit int) []string {
	subs := make([]string, 0, len(totals))
	for sub := range totals {
		subs = append(subs, sub)
	}
	slices.SortFunc(subs, func(a, b string) int {
		if totals[a].sum > totals[b].sum {
			return -1
		}
		if totals[a].sum < totals[b].sum {
			return 1
		}
		return strings.Compare(a, b)
	})
	if len(subs) > limit {
		subs = subs[:limit]
	}
	return subs
}

// dailyRevenueSeries sums price by calendar date for one subcategory,
// ascending by date.
func dailyRevenueSeries(ws *models.WorkingSet, subcategory string) []models.DailyPoint {
	daily := make(map[time.Time]float64)
	ws.Each(func(r models.TransactionRecord) {
		if r.Subcategory == subcategory {
			daily[r.Date] += r.Price
		}
	})

	series := make([]models.DailyPoint, 0, len(daily))
	for date, revenue := range daily {
		series = append(series, models.DailyPoint{Date: date, Revenue: revenue})
	}
	slices.SortFunc(series, func(a, b models.DailyPoint) int {
		return a.Date.Compare(b.Date)
	})
	return series
}

func classifySegment(subcategory string) string {
	lower := strings.ToLower(subcategory)
	switch {
	case strings.Contains(lower, "hot"):
		return LabelHot
	case strings.Contains(lower, "cold"):
		return LabelCold
	default:
		return LabelWarm
	}
}
