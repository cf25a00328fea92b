package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/eco-ops-dashboard/internal/external"
)

// OpenMeteo reads current conditions from Open-Meteo. It needs no key but
// only understands coordinates: the location is either "lat,lon" or a name
// the optional resolver can geocode.
type OpenMeteo struct {
	baseURL string
	client  *http.Client
	resolve Resolver
	circuit *gobreaker.CircuitBreaker
	now     func() time.Time
}

// NewOpenMeteo builds the adapter. resolve may be nil.
func NewOpenMeteo(client *http.Client, resolve Resolver) *OpenMeteo {
	return &OpenMeteo{
		baseURL: "https://api.open-meteo.com/v1/forecast",
		client:  client,
		resolve: resolve,
		circuit: newBreaker(string(external.SourceOpenMeteo)),
		now:     time.Now,
	}
}

func (p *OpenMeteo) ID() external.SourceID { return external.SourceOpenMeteo }
func (p *OpenMeteo) Kind() external.Kind   { return external.KindWeather }

func (p *OpenMeteo) Fetch(ctx context.Context, params external.Params) (external.Result, error) {
	lat, lon, err := parseCoordinates(params.Location)
	if err != nil {
		if p.resolve == nil {
			return external.Result{}, &external.ConfigurationError{Source: p.ID(), Missing: "GEOCODER_API_KEY (or location as lat,lon)"}
		}
		if lat, lon, err = p.resolve(ctx, params.Location); err != nil {
			return external.Result{}, &external.UpstreamError{Source: p.ID(), Reason: "geocoding failed", Err: err}
		}
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
		values.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
		values.Set("current", "temperature_2m,relative_humidity_2m,weather_code")
		return http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+values.Encode(), nil)
	}

	var payload struct {
		Current struct {
			Temperature *float64 `json:"temperature_2m"`
			Humidity    float64  `json:"relative_humidity_2m"`
			WeatherCode *int     `json:"weather_code"`
		} `json:"current"`
	}
	if err := getJSON(ctx, p.client, p.circuit, p.ID(), buildRequest, &payload); err != nil {
		return external.Result{}, err
	}
	if payload.Current.Temperature == nil {
		return external.Result{}, &external.UpstreamError{Source: p.ID(), Reason: "malformed body: missing current.temperature_2m"}
	}

	desc := "Unknown"
	if payload.Current.WeatherCode != nil {
		desc = describeWeatherCode(*payload.Current.WeatherCode)
	}

	return external.Ok(p.ID(), external.WeatherSnapshot{
		Temperature: roundHalfUp(*payload.Current.Temperature),
		Humidity:    payload.Current.Humidity,
		Description: desc,
		Timestamp:   p.now().UTC(),
	}), nil
}

func parseCoordinates(loc string) (lat, lon float64, err error) {
	parts := strings.Split(loc, ",")
	if len(parts) != 2 {
		return 0, 0, errors.New("want lat,lon")
	}
	if lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64); err != nil {
		return 0, 0, err
	}
	if lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64); err != nil {
		return 0, 0, err
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("coordinates out of range: %v,%v", lat, lon)
	}
	return lat, lon, nil
}

// WMO weather interpretation codes, simplified.
func describeWeatherCode(code int) string {
	switch {
	case code == 0:
		return "Clear sky"
	case code >= 1 && code <= 3:
		return "Partly cloudy"
	case code == 45 || code == 48:
		return "Fog"
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return "Rain"
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return "Snow"
	case code >= 95:
		return "Thunderstorm"
	default:
		return "Unknown"
	}
}
