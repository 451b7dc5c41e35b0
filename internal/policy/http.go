package policy

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dyike/FinSage/internal/external"
	"github.com/dyike/FinSage/internal/models"
)

const serviceName = "policy"

// HTTPPolicy calls a remote allocation model over JSON.
type HTTPPolicy struct {
	client *resty.Client
}

type allocateRequest struct {
	Features      []float64 `json:"features"`
	Budget        float64   `json:"budget"`
	RiskTolerance string    `json:"risk_tolerance"`
}

type allocateResponse struct {
	Categories  []string  `json:"categories,omitempty"`
	Proportions []float64 `json:"proportions"`
}

func NewHTTPPolicy(baseURL string, timeout time.Duration) *HTTPPolicy {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)
	client.SetHeader("Content-Type", "application/json")
	return &HTTPPolicy{client: client}
}

func (p *HTTPPolicy) Allocate(ctx context.Context, features FeatureVector, budget float64, tolerance models.RiskTolerance) ([]float64, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(allocateRequest{
			Features:      features[:],
			Budget:        budget,
			RiskTolerance: string(tolerance),
		}).
		Post("/allocate")
	if err != nil {
		return nil, external.Classify(serviceName, err)
	}
	if svcErr := external.StatusCode(serviceName, resp.StatusCode(), resp.String()); svcErr != nil {
		return nil, svcErr
	}

	var out allocateResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, external.NewServiceError(serviceName, external.CodeBadResponse, "decode response", err)
	}
	return reorder(out)
}

// reorder maps a named response onto the canonical category order.
func reorder(out allocateResponse) ([]float64, error) {
	n := len(models.BudgetCategories)
	if len(out.Proportions) != n {
		return nil, external.NewServiceError(serviceName, external.CodeBadResponse,
			fmt.Sprintf("expected %d proportions, got %d", n, len(out.Proportions)), nil)
	}
	if len(out.Categories) == 0 {
		return out.Proportions, nil
	}
	if len(out.Categories) != n {
		return nil, external.NewServiceError(serviceName, external.CodeBadResponse, "category list length mismatch", nil)
	}
	props := make([]float64, n)
	for i, c := range out.Categories {
		idx := models.CategoryIndex(c)
		if idx < 0 {
			return nil, external.NewServiceError(serviceName, external.CodeBadResponse, "unknown category "+c, nil)
		}
		props[idx] = out.Proportions[i]
	}
	return props, nil
}
