package services

import (
	"sort"
	"time"

	"tastybites-dashboard/internal/models"
)

// CategorySeriesSet pivots the working set into one weekly revenue series per
// top-level item category. Every category shares the same continuous weekly
// index from the first to the last observed date, with zero revenue where a
// category sold nothing that week.
//
// dropTrailing removes the final bucket, which is usually a partial week.
// The upstream behavior dropped it unconditionally — even when the data ends
// exactly on a week boundary — so the policy is a parameter rather than a
// hard-coded rule.
func CategorySeriesSet(ws *models.WorkingSet, dropTrailing bool) []models.CategorySeries {
	// Group by (date, category), summing price.
	type dayKey struct {
		date     time.Time
		category string
	}
	grouped := make(map[dayKey]float64)
	var minDate, maxDate time.Time
	categories := make(map[string]struct{})

	ws.Each(func(r models.TransactionRecord) {
		grouped[dayKey{r.Date, r.Category}] += r.Price
		categories[r.Category] = struct{}{}
		if minDate.IsZero() || r.Date.Before(minDate) {
			minDate = r.Date
		}
		if r.Date.After(maxDate) {
			maxDate = r.Date
		}
	})

	if len(grouped) == 0 {
		return []models.CategorySeries{}
	}

	// Continuous weekly index spanning the full observed range.
	firstWeek := weekStart(minDate)
	lastWeek := weekStart(maxDate)
	weekCount := int(lastWeek.Sub(firstWeek)/(7*24*time.Hour)) + 1

	names := make([]string, 0, len(categories))
	for c := range categories {
		names = append(names, c)
	}
	sort.Strings(names)

	result := make([]models.CategorySeries, 0, len(names))
	for _, category := range names {
		weekly := make([]models.WeeklyPoint, weekCount)
		for i := range weekly {
			weekly[i].WeekStart = firstWeek.AddDate(0, 0, 7*i)
		}
		for key, revenue := range grouped {
			if key.category != category {
				continue
			}
			idx := int(weekStart(key.date).Sub(firstWeek) / (7 * 24 * time.Hour))
			weekly[idx].Revenue += revenue
		}
		if dropTrailing && len(weekly) > 0 {
			weekly = weekly[:len(weekly)-1]
		}
		result = append(result, models.CategorySeries{Category: category, Weekly: weekly})
	}
	return result
}

// weekStart truncates a date to the Monday of its calendar week.
func weekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}
