package forecast

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/dyike/FinSage/internal/models"
)

var ErrEmptySeries = errors.New("forecast: empty series")

// Observation is one point of a daily series.
type Observation struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

//go:generate mockgen -source=forecaster.go -destination=forecaster_mock.go -package=forecast

type Forecaster interface {
	Forecast(ctx context.Context, series []Observation, horizonDays int) ([]models.ForecastPoint, error)
}

// DailySeries sums transactions of the given kind per calendar day, from the
// first to the last day seen, filling gaps with zero.
func DailySeries(txns []models.Transaction, kind models.TransactionKind) []Observation {
	totals := make(map[time.Time]float64)
	var days []time.Time
	for _, t := range txns {
		if t.Kind != kind || t.Date.IsZero() {
			continue
		}
		day := truncateDay(t.Date)
		if _, ok := totals[day]; !ok {
			days = append(days, day)
		}
		totals[day] += t.Value()
	}
	if len(days) == 0 {
		return nil
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	var series []Observation
	for d := days[0]; !d.After(days[len(days)-1]); d = d.AddDate(0, 0, 1) {
		series = append(series, Observation{Date: d, Value: totals[d]})
	}
	return series
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
