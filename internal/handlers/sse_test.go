package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"
	"time"

	"tastybites-dashboard/internal/models"
	"tastybites-dashboard/internal/services"
)

func createTestSSEHandlers() *SSEHandlers {
	_, projections := createTestServices()
	return NewSSEHandlers(projections, testLogger())
}

func TestNewSSEHandlers(t *testing.T) {
	_, projections := createTestServices()
	logger := testLogger()

	handlers := NewSSEHandlers(projections, logger)

	if handlers == nil {
		t.Fatal("NewSSEHandlers() returned nil")
	}
	if handlers.projections != projections {
		t.Error("NewSSEHandlers() should set projections field")
	}
	if handlers.logger != logger {
		t.Error("NewSSEHandlers() should set logger field")
	}
}

func TestCriteriaFromQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  models.FilterCriteria
	}{
		{
			"empty query defaults to All",
			"",
			models.FilterCriteria{
				Brands:     []string{models.All},
				City:       models.All,
				Categories: []string{models.All},
			},
		},
		{
			"full selection",
			"brands=Guac+n%27+Roll,Smoky+BBQ&city=Warsaw&categories=Food&min_year=2020&max_year=2023",
			models.FilterCriteria{
				Brands:     []string{"Guac n' Roll", "Smoky BBQ"},
				City:       "Warsaw",
				Categories: []string{"Food"},
				MinYear:    2020,
				MaxYear:    2023,
			},
		},
		{
			"unparsable years are ignored",
			"city=Krakow&min_year=dawn&max_year=",
			models.FilterCriteria{
				Brands:     []string{models.All},
				City:       "Krakow",
				Categories: []string{models.All},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("bad query fixture: %v", err)
			}
			if got := criteriaFromQuery(q); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("criteriaFromQuery() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSplitParam(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{models.All}},
		{"Food", []string{"Food"}},
		{"Food,Drinks", []string{"Food", "Drinks"}},
		{" Food , Drinks ", []string{"Food", "Drinks"}},
	}

	for _, tt := range tests {
		if got := splitParam(tt.input); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitParam(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLabelIcon(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{services.LabelHot, "🌶️"},
		{services.LabelCold, "🍦"},
		{services.LabelWarm, "🍜"},
		{"anything else", "🍜"},
	}

	for _, tt := range tests {
		if got := labelIcon(tt.label); got != tt.want {
			t.Errorf("labelIcon(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}
}

func TestSparklinePoints(t *testing.T) {
	day1 := time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	tests := []struct {
		name   string
		series []models.DailyPoint
		want   string
	}{
		{"empty", nil, ""},
		{"single point sits on top", []models.DailyPoint{{Date: day1, Revenue: 50}}, "0.0,0.0"},
		{
			"two points span the box",
			[]models.DailyPoint{{Date: day1, Revenue: 0}, {Date: day2, Revenue: 100}},
			"0.0,28.0 100.0,0.0",
		},
		{
			"all-zero series stays on the floor",
			[]models.DailyPoint{{Date: day1, Revenue: 0}, {Date: day2, Revenue: 0}},
			"0.0,28.0 100.0,28.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sparklinePoints(tt.series); got != tt.want {
				t.Errorf("sparklinePoints() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderSegmentCards(t *testing.T) {
	summaries := []models.SegmentSummary{
		{
			Subcategory: "Tacos",
			Label:       services.LabelHot,
			AvgSpending: 9.5,
			TotalSales:  1234,
			DailyRevenue: []models.DailyPoint{
				{Date: time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC), Revenue: 10},
				{Date: time.Date(2023, time.January, 3, 0, 0, 0, 0, time.UTC), Revenue: 20},
			},
		},
	}

	html, err := renderSegmentCards(summaries)
	if err != nil {
		t.Fatalf("renderSegmentCards() failed: %v", err)
	}

	for _, content := range []string{
		`id="segment-cards"`,
		"🌶️ Tacos",
		"$ 1234",
		"$ 9.50",
		"<polyline",
	} {
		if !strings.Contains(html, content) {
			t.Errorf("expected HTML to contain %q:\n%s", content, html)
		}
	}
}

func TestRenderSegmentCards_Empty(t *testing.T) {
	html, err := renderSegmentCards(nil)
	if err != nil {
		t.Fatalf("renderSegmentCards() failed: %v", err)
	}

	if !strings.Contains(html, "No data for the selected filters.") {
		t.Errorf("empty summaries should render the empty state:\n%s", html)
	}
	if strings.Contains(html, "<polyline") {
		t.Error("empty state should not contain a sparkline")
	}
}

func TestSSEHandlers_HandleApply(t *testing.T) {
	handlers := createTestSSEHandlers()

	req := httptest.NewRequest(http.MethodGet, "/sse/apply?brands=All&city=All&categories=All", nil)
	w := httptest.NewRecorder()

	handlers.HandleApply(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
		t.Errorf("expected content-type to contain 'text/event-stream', got %q", ct)
	}

	body := w.Body.String()
	if !strings.Contains(body, "event:") || !strings.Contains(body, "data:") {
		t.Error("response should contain SSE event format")
	}
	if !strings.Contains(body, "segment-cards") {
		t.Error("response should patch the segment cards element")
	}
	for _, signal := range []string{"forecastData", "summariesData", "recordCount"} {
		if !strings.Contains(body, signal) {
			t.Errorf("response should contain %q signal", signal)
		}
	}
}

func TestSSEHandlers_HandleApply_FilteredToNothing(t *testing.T) {
	handlers := createTestSSEHandlers()

	req := httptest.NewRequest(http.MethodGet, "/sse/apply?min_year=1990&max_year=1991", nil)
	w := httptest.NewRecorder()

	handlers.HandleApply(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	body := w.Body.String()
	if !strings.Contains(body, "No data for the selected filters.") {
		t.Error("response should patch in the empty state")
	}
}
