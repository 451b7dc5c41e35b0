package forecast

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dyike/FinSage/internal/external"
	"github.com/dyike/FinSage/internal/models"
)

const serviceName = "forecaster"

// HTTPForecaster delegates to a remote time-series model.
type HTTPForecaster struct {
	client *resty.Client
}

type forecastRequest struct {
	Series      []Observation `json:"series"`
	HorizonDays int           `json:"horizon_days"`
}

type forecastResponse struct {
	Forecast []models.ForecastPoint `json:"forecast"`
}

func NewHTTPForecaster(baseURL string, timeout time.Duration) *HTTPForecaster {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)
	client.SetHeader("Content-Type", "application/json")
	return &HTTPForecaster{client: client}
}

func (f *HTTPForecaster) Forecast(ctx context.Context, series []Observation, horizonDays int) ([]models.ForecastPoint, error) {
	if len(series) == 0 {
		return nil, ErrEmptySeries
	}
	resp, err := f.client.R().
		SetContext(ctx).
		SetBody(forecastRequest{Series: series, HorizonDays: horizonDays}).
		Post("/forecast")
	if err != nil {
		return nil, external.Classify(serviceName, err)
	}
	if svcErr := external.StatusCode(serviceName, resp.StatusCode(), resp.String()); svcErr != nil {
		return nil, svcErr
	}

	var out forecastResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, external.NewServiceError(serviceName, external.CodeBadResponse, "decode response", err)
	}
	return out.Forecast, nil
}
