package models

import "time"

// All is the sentinel facet value meaning "do not filter this dimension".
const All = "All"

// TransactionRecord is one loaded order line. Date and Hour are derived from
// the raw order timestamp at load time; records are never mutated afterwards.
type TransactionRecord struct {
	Brand       string
	MenuType    string
	Price       float64
	City        string
	Category    string
	Subcategory string
	OrderTotal  float64
	Date        time.Time
	Hour        int
}

// FacetIndex holds the filter choices offered to the user. It is computed once
// per process from a seeded sample of the dataset and never refreshed, so it
// may lag the full dataset.
type FacetIndex struct {
	Brands     []string `json:"brands"`
	Cities     []string `json:"cities"`
	Categories []string `json:"categories"`
	MinYear    int      `json:"min_year"`
	MaxYear    int      `json:"max_year"`
}

// FilterCriteria is one user selection. A dimension whose selection contains
// the All sentinel (or is empty) is unfiltered.
type FilterCriteria struct {
	Brands     []string `json:"brands"`
	City       string   `json:"city"`
	Categories []string `json:"categories"`
	MinYear    int      `json:"min_year"`
	MaxYear    int      `json:"max_year"`
}

// WorkingSet is the filtered record subset for one query, partitioned by city
// hash. Partitioning exists only so downstream aggregation can fan out; it
// never changes the logical content of the set.
type WorkingSet struct {
	Partitions [][]TransactionRecord
}

func (ws *WorkingSet) Len() int {
	n := 0
	for _, p := range ws.Partitions {
		n += len(p)
	}
	return n
}

// Each visits every record across all partitions.
func (ws *WorkingSet) Each(visit func(TransactionRecord)) {
	for _, p := range ws.Partitions {
		for _, r := range p {
			visit(r)
		}
	}
}

type DailyPoint struct {
	Date    time.Time `json:"date"`
	Revenue float64   `json:"revenue"`
}

// SegmentSummary backs one top-subcategory card. Label is cosmetic metadata
// for the presentation layer and plays no part in ranking.
type SegmentSummary struct {
	Subcategory  string       `json:"subcategory"`
	Label        string       `json:"label"`
	AvgSpending  float64      `json:"avg_spending"`
	TotalSales   float64      `json:"total_sales"`
	DailyRevenue []DailyPoint `json:"daily_revenue"`
}

type WeeklyPoint struct {
	WeekStart time.Time `json:"week_start"`
	Revenue   float64   `json:"revenue"`
}

// CategorySeries is one top-level category's weekly revenue history.
type CategorySeries struct {
	Category string        `json:"category"`
	Weekly   []WeeklyPoint `json:"weekly"`
}

type PointType string

const (
	PointActual   PointType = "Actual"
	PointForecast PointType = "Forecast"
)

type ForecastPoint struct {
	Date     time.Time `json:"date"`
	Revenue  float64   `json:"revenue"`
	Category string    `json:"category"`
	Type     PointType `json:"type"`
}

// CategoryForecast is the merged actual+forecast sequence for one category,
// ascending by date with every Actual point preceding every Forecast point.
type CategoryForecast struct {
	Category string          `json:"category"`
	Points   []ForecastPoint `json:"points"`
}
