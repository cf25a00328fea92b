package sources

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/eco-ops-dashboard/internal/external"
)

// WeatherAPI reads current conditions from WeatherAPI.com. It fills the same
// bundle slot as OpenWeather.
type WeatherAPI struct {
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	now     func() time.Time
}

func NewWeatherAPI(client *http.Client, apiKey string) *WeatherAPI {
	return &WeatherAPI{
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/current.json",
		client:  client,
		circuit: newBreaker(string(external.SourceWeatherAPI)),
		now:     time.Now,
	}
}

func (p *WeatherAPI) ID() external.SourceID { return external.SourceWeatherAPI }
func (p *WeatherAPI) Kind() external.Kind   { return external.KindWeather }

func (p *WeatherAPI) Fetch(ctx context.Context, params external.Params) (external.Result, error) {
	if p.apiKey == "" {
		return external.Result{}, &external.ConfigurationError{Source: p.ID(), Missing: "WEATHERAPI_API_KEY"}
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		// accepts "city,country" as well as "lat,lon"
		values.Set("q", params.Location)
		return http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+values.Encode(), nil)
	}

	var payload struct {
		Current struct {
			TempC     *float64 `json:"temp_c"`
			Humidity  float64  `json:"humidity"`
			Condition struct {
				Text string `json:"text"`
			} `json:"condition"`
		} `json:"current"`
	}
	if err := getJSON(ctx, p.client, p.circuit, p.ID(), buildRequest, &payload); err != nil {
		return external.Result{}, err
	}
	if payload.Current.TempC == nil {
		return external.Result{}, &external.UpstreamError{Source: p.ID(), Reason: "malformed body: missing current.temp_c"}
	}

	desc := payload.Current.Condition.Text
	if desc == "" {
		desc = "Unknown"
	}

	return external.Ok(p.ID(), external.WeatherSnapshot{
		Temperature: roundHalfUp(*payload.Current.TempC),
		Humidity:    payload.Current.Humidity,
		Description: desc,
		Timestamp:   p.now().UTC(),
	}), nil
}
