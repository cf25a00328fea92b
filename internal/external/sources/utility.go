package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/eco-ops-dashboard/internal/external"
)

// Utility reads the electricity billing summary for a period.
type Utility struct {
	endpoint string
	token    string
	client   *http.Client
	circuit  *gobreaker.CircuitBreaker
	now      func() time.Time
}

// NewUtility builds the adapter. An empty endpoint is allowed: Fetch then
// returns the fallback summary instead of calling anything.
func NewUtility(client *http.Client, endpoint, token string) *Utility {
	return &Utility{
		endpoint: endpoint,
		token:    token,
		client:   client,
		circuit:  newBreaker(string(external.SourceUtility)),
		now:      time.Now,
	}
}

func (p *Utility) ID() external.SourceID { return external.SourceUtility }
func (p *Utility) Kind() external.Kind   { return external.KindUtility }

func (p *Utility) Fetch(ctx context.Context, params external.Params) (external.Result, error) {
	if p.endpoint == "" {
		reason := &external.ConfigurationError{Source: p.ID(), Missing: "UTILITY_API_URL"}
		return external.Fallback(p.ID(), external.FallbackUtility(), reason), nil
	}

	period := params.Period
	if period == "" {
		period = p.now().UTC().Format(external.PeriodLayout)
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		u, err := url.Parse(p.endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint: %w", err)
		}
		q := u.Query()
		q.Set("period", period)
		u.RawQuery = q.Encode()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if p.token != "" {
			req.Header.Set("Authorization", "Bearer "+p.token)
		}
		return req, nil
	}

	var payload struct {
		CostPerKwh float64 `json:"costPerKwh"`
		TotalKwh   float64 `json:"totalKwh"`
		TotalCost  float64 `json:"totalCost"`
		Period     string  `json:"period"`
	}
	if err := getJSON(ctx, p.client, p.circuit, p.ID(), buildRequest, &payload); err != nil {
		return external.Result{}, err
	}

	if payload.Period == "" {
		payload.Period = period
	}

	return external.Ok(p.ID(), external.UtilitySnapshot{
		CostPerKwh: payload.CostPerKwh,
		TotalKwh:   payload.TotalKwh,
		TotalCost:  payload.TotalCost,
		Period:     payload.Period,
	}), nil
}
