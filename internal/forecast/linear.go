package forecast

import (
	"context"
	"math"

	"github.com/dyike/FinSage/internal/models"
)

const z95 = 1.96

// LinearForecaster fits an ordinary least-squares line over the series index
// and projects it forward with a 95% band from the residual spread.
type LinearForecaster struct{}

func NewLinearForecaster() *LinearForecaster {
	return &LinearForecaster{}
}

func (f *LinearForecaster) Forecast(_ context.Context, series []Observation, horizonDays int) ([]models.ForecastPoint, error) {
	if len(series) == 0 {
		return nil, ErrEmptySeries
	}
	if horizonDays <= 0 {
		return nil, nil
	}

	values := make([]float64, len(series))
	for i, o := range series {
		values[i] = o.Value
	}
	slope, intercept, sigma := computeLinearRegression(values)

	last := series[len(series)-1].Date
	n := len(values)
	out := make([]models.ForecastPoint, 0, horizonDays)
	for h := 0; h < horizonDays; h++ {
		predicted := math.Max(slope*float64(n+h)+intercept, 0)
		out = append(out, models.ForecastPoint{
			Date:      last.AddDate(0, 0, h+1),
			Predicted: predicted,
			Lower:     math.Max(predicted-z95*sigma, 0),
			Upper:     predicted + z95*sigma,
		})
	}
	return out, nil
}

// computeLinearRegression returns slope, intercept and the residual standard
// deviation for y-values where x = 0, 1, 2, ...
func computeLinearRegression(points []float64) (slope, intercept, sigma float64) {
	n := float64(len(points))
	if n == 0 {
		return 0, 0, 0
	}
	if n < 2 {
		return 0, points[0], 0
	}
	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range points {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}
	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return 0, sumY / n, 0
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n

	var ssRes float64
	for i, y := range points {
		r := y - (slope*float64(i) + intercept)
		ssRes += r * r
	}
	return slope, intercept, math.Sqrt(ssRes / n)
}
