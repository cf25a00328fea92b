package sources

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/eco-ops-dashboard/internal/external"
)

// OpenWeather reads current conditions from OpenWeatherMap.
type OpenWeather struct {
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	now     func() time.Time
}

func NewOpenWeather(client *http.Client, apiKey string) *OpenWeather {
	return &OpenWeather{
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		client:  client,
		circuit: newBreaker(string(external.SourceOpenWeather)),
		now:     time.Now,
	}
}

func (p *OpenWeather) ID() external.SourceID { return external.SourceOpenWeather }
func (p *OpenWeather) Kind() external.Kind   { return external.KindWeather }

func (p *OpenWeather) Fetch(ctx context.Context, params external.Params) (external.Result, error) {
	if p.apiKey == "" {
		return external.Result{}, &external.ConfigurationError{Source: p.ID(), Missing: "OPENWEATHER_API_KEY"}
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("q", params.Location)
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")
		return http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+values.Encode(), nil)
	}

	var payload struct {
		Main struct {
			Temp     *float64 `json:"temp"`
			Humidity float64  `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
	}
	if err := getJSON(ctx, p.client, p.circuit, p.ID(), buildRequest, &payload); err != nil {
		return external.Result{}, err
	}
	if payload.Main.Temp == nil {
		return external.Result{}, &external.UpstreamError{Source: p.ID(), Reason: "malformed body: missing main.temp"}
	}

	desc := "Unknown"
	if len(payload.Weather) > 0 && payload.Weather[0].Description != "" {
		desc = payload.Weather[0].Description
	}

	return external.Ok(p.ID(), external.WeatherSnapshot{
		Temperature: roundHalfUp(*payload.Main.Temp),
		Humidity:    payload.Main.Humidity,
		Description: desc,
		Timestamp:   p.now().UTC(),
	}), nil
}
