package handlers

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"tastybites-dashboard/internal/models"
	"tastybites-dashboard/internal/services"
)

const (
	sparkWidth  = 100
	sparkHeight = 28
)

var segmentCardsTemplate = template.Must(template.New("segmentCards").Parse(`
<div id="segment-cards">
{{if .Cards}}{{range .Cards}}<div class="card">
<div class="card-title">{{.Icon}} {{.Subcategory}}</div>
<div class="card-metric"><span>Total Sales</span><strong>$ {{printf "%.0f" .TotalSales}}</strong></div>
<div class="card-metric"><span>Average Spending</span><strong>$ {{printf "%.2f" .AvgSpending}}</strong></div>
<svg class="sparkline" viewBox="0 0 100 28" preserveAspectRatio="none"><polyline fill="none" stroke="currentColor" points="{{.SparkPoints}}"/></svg>
</div>{{end}}{{else}}<div class="card empty">No data for the selected filters.</div>{{end}}
</div>`))

type segmentCard struct {
	Subcategory string
	Icon        string
	TotalSales  float64
	AvgSpending float64
	SparkPoints string
}

type SSEHandlers struct {
	projections *services.ProjectionService
	logger      *slog.Logger
}

func NewSSEHandlers(projections *services.ProjectionService, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		projections: projections,
		logger:      logger,
	}
}

// HandleApply runs the pipeline for the criteria carried in the query string
// and pushes the refreshed cards plus the chart signals over one SSE stream.
func (h *SSEHandlers) HandleApply(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	criteria := criteriaFromQuery(r.URL.Query())
	result, err := h.projections.Apply(r.Context(), criteria)
	if err != nil {
		h.logger.Error("apply projection", "error", err)
		sse.PatchElements(`<div id="segment-cards"><div class="card error">Projection failed, try again.</div></div>`)
		return
	}

	html, err := renderSegmentCards(result.Summaries)
	if err != nil {
		h.logger.Error("render segment cards", "error", err)
		return
	}
	sse.PatchElements(html)

	signals, err := json.Marshal(map[string]any{
		"forecastData":  result.Forecasts,
		"summariesData": result.Summaries,
		"recordCount":   result.Records,
	})
	if err != nil {
		h.logger.Error("marshal projection signals", "error", err)
		return
	}
	sse.PatchSignals(signals)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// criteriaFromQuery decodes filter widgets' state. Absent dimensions default
// to the All sentinel, matching an untouched sidebar.
func criteriaFromQuery(q url.Values) models.FilterCriteria {
	criteria := models.FilterCriteria{
		Brands:     splitParam(q.Get("brands")),
		City:       q.Get("city"),
		Categories: splitParam(q.Get("categories")),
	}
	if criteria.City == "" {
		criteria.City = models.All
	}
	if v, err := strconv.Atoi(q.Get("min_year")); err == nil {
		criteria.MinYear = v
	}
	if v, err := strconv.Atoi(q.Get("max_year")); err == nil {
		criteria.MaxYear = v
	}
	return criteria
}

func splitParam(value string) []string {
	if value == "" {
		return []string{models.All}
	}
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func renderSegmentCards(summaries []models.SegmentSummary) (string, error) {
	cards := make([]segmentCard, 0, len(summaries))
	for _, s := range summaries {
		cards = append(cards, segmentCard{
			Subcategory: s.Subcategory,
			Icon:        labelIcon(s.Label),
			TotalSales:  s.TotalSales,
			AvgSpending: s.AvgSpending,
			SparkPoints: sparklinePoints(s.DailyRevenue),
		})
	}

	var buf strings.Builder
	err := segmentCardsTemplate.Execute(&buf, struct{ Cards []segmentCard }{cards})
	return buf.String(), err
}

func labelIcon(label string) string {
	switch label {
	case services.LabelHot:
		return "🌶️"
	case services.LabelCold:
		return "🍦"
	default:
		return "🍜"
	}
}

// sparklinePoints scales a daily revenue series into SVG polyline points.
func sparklinePoints(series []models.DailyPoint) string {
	if len(series) == 0 {
		return ""
	}
	maxRevenue := 0.0
	for _, p := range series {
		if p.Revenue > maxRevenue {
			maxRevenue = p.Revenue
		}
	}
	if maxRevenue == 0 {
		maxRevenue = 1
	}

	step := float64(sparkWidth)
	if len(series) > 1 {
		step = float64(sparkWidth) / float64(len(series)-1)
	}

	var b strings.Builder
	for i, p := range series {
		x := float64(i) * step
		y := float64(sparkHeight) * (1 - p.Revenue/maxRevenue)
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%.1f,%.1f", x, y)
	}
	return b.String()
}
