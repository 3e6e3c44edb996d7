package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"tastybites-dashboard/internal/models"
)

const (
	// Forecasts capture yearly seasonality only; weekly and daily cycles are
	// deliberately not modeled.
	seasonPeriodDays = 365.25
	maxHarmonics     = 3
	minFitPoints     = 2
)

// Forecaster fits a per-category revenue model on a weekly series and
// extends it by a fixed daily horizon. Categories are independent, so fits
// run concurrently up to maxWorkers; the combined output is ordered by
// category name regardless of completion order.
type Forecaster struct {
	horizonDays int
	maxWorkers  int
	logger      *slog.Logger
}

func NewForecaster(horizonDays, maxWorkers int, logger *slog.Logger) *Forecaster {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Forecaster{
		horizonDays: horizonDays,
		maxWorkers:  maxWorkers,
		logger:      logger,
	}
}

// ForecastAll forecasts every category series. A series too short to fit is
// skipped with a warning; the remaining categories are still returned. The
// input order (sorted by category) is preserved in the output.
func (f *Forecaster) ForecastAll(ctx context.Context, series []models.CategorySeries) ([]models.CategoryForecast, error) {
	results := make([]*models.CategoryForecast, len(series))

	var wg errgroup.Group
	wg.SetLimit(f.maxWorkers)

	for i, cs := range series {
		wg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			forecast, err := f.forecastCategory(cs)
			if err != nil {
				f.logger.Warn("skipping category forecast",
					"category", cs.Category,
					"weekly_points", len(cs.Weekly),
					"error", err,
				)
				return nil
			}
			results[i] = forecast
			return nil
		})
	}

	if err := wg.Wait(); err != nil {
		return nil, err
	}

	combined := make([]models.CategoryForecast, 0, len(results))
	for _, r := range results {
		if r != nil {
			combined = append(combined, *r)
		}
	}
	return combined, nil
}

// forecastCategory fits the model and stitches the actual and predicted
// series into one ascending-by-date sequence: weekly actuals first, then one
// predicted point per day for the horizon immediately after the last bucket.
func (f *Forecaster) forecastCategory(cs models.CategorySeries) (*models.CategoryForecast, error) {
	model, err := fitSeasonalModel(cs.Weekly)
	if err != nil {
		return nil, err
	}

	points := make([]models.ForecastPoint, 0, len(cs.Weekly)+f.horizonDays)
	for _, w := range cs.Weekly {
		points = append(points, models.ForecastPoint{
			Date:     w.WeekStart,
			Revenue:  w.Revenue,
			Category: cs.Category,
			Type:     models.PointActual,
		})
	}

	origin := cs.Weekly[0].WeekStart
	last := cs.Weekly[len(cs.Weekly)-1].WeekStart
	for d := 1; d <= f.horizonDays; d++ {
		date := last.AddDate(0, 0, d)
		t := date.Sub(origin).Hours() / 24
		points = append(points, models.ForecastPoint{
			Date:     date,
			Revenue:  model.eval(t),
			Category: cs.Category,
			Type:     models.PointForecast,
		})
	}

	return &models.CategoryForecast{Category: cs.Category, Points: points}, nil
}

// seasonalModel is a least-squares fit of a linear trend plus annual Fourier
// harmonics: y(t) = b0 + b1*t + sum_k [ a_k*sin(2πkt/P) + c_k*cos(2πkt/P) ].
type seasonalModel struct {
	coeffs    []float64
	harmonics int
}

// fitSeasonalModel solves the normal problem over the weekly observations.
// The harmonic count shrinks with the series length so the system stays
// overdetermined; two points degrade to a plain line.
func fitSeasonalModel(weekly []models.WeeklyPoint) (*seasonalModel, error) {
	n := len(weekly)
	if n < minFitPoints {
		return nil, fmt.Errorf("need at least %d weekly points, have %d", minFitPoints, n)
	}

	harmonics := (n - minFitPoints) / 2
	if harmonics > maxHarmonics {
		harmonics = maxHarmonics
	}
	params := 2 + 2*harmonics

	origin := weekly[0].WeekStart
	a := mat.NewDense(n, params, nil)
	y := mat.NewVecDense(n, nil)
	for i, w := range weekly {
		t := w.WeekStart.Sub(origin).Hours() / 24
		a.Set(i, 0, 1)
		a.Set(i, 1, t)
		for k := 1; k <= harmonics; k++ {
			phase := 2 * math.Pi * float64(k) * t / seasonPeriodDays
			a.Set(i, 2*k, math.Sin(phase))
			a.Set(i, 2*k+1, math.Cos(phase))
		}
		y.SetVec(i, w.Revenue)
	}

	var beta mat.VecDense
	if err := beta.SolveVec(a, y); err != nil {
		return nil, fmt.Errorf("least squares fit: %w", err)
	}

	coeffs := make([]float64, params)
	for i := range coeffs {
		coeffs[i] = beta.AtVec(i)
	}
	return &seasonalModel{coeffs: coeffs, harmonics: harmonics}, nil
}

// eval predicts revenue at t days past the series origin.
func (m *seasonalModel) eval(t float64) float64 {
	v := m.coeffs[0] + m.coeffs[1]*t
	for k := 1; k <= m.harmonics; k++ {
		phase := 2 * math.Pi * float64(k) * t / seasonPeriodDays
		v += m.coeffs[2*k]*math.Sin(phase) + m.coeffs[2*k+1]*math.Cos(phase)
	}
	return v
}
