package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/kelvins/geocoder"
)

// Resolver turns a free-form "City,Country" location into coordinates.
type Resolver func(ctx context.Context, location string) (lat, lon float64, err error)

const (
	geocodeCacheSize   = 256
	geocodeHitTTL      = 24 * time.Hour
	geocodeMissTTL     = time.Minute
	geocodeMissEntries = 64
)

type lookupFunc func(geocoder.Address) (lat, lon float64, err error)

// geocodeCache keeps a bounded set of resolved locations and remembers
// failed lookups for a short while so repeated bad input stays local.
type geocodeCache struct {
	lookup lookupFunc
	hits   *expirable.LRU[string, [2]float64]
	misses *expirable.LRU[string, error]
}

func newGeocodeCache(lookup lookupFunc, size int) *geocodeCache {
	return &geocodeCache{
		lookup: lookup,
		hits:   expirable.NewLRU[string, [2]float64](size, nil, geocodeHitTTL),
		misses: expirable.NewLRU[string, error](geocodeMissEntries, nil, geocodeMissTTL),
	}
}

func (c *geocodeCache) resolve(ctx context.Context, location string) (float64, float64, error) {
	key := cacheKey(location)
	if v, ok := c.hits.Get(key); ok {
		return v[0], v[1], nil
	}
	if err, ok := c.misses.Get(key); ok {
		return 0, 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	lat, lon, err := c.lookup(addressFor(location))
	if err != nil {
		err = fmt.Errorf("geocode %q: %w", location, err)
		c.misses.Add(key, err)
		return 0, 0, err
	}
	c.hits.Add(key, [2]float64{lat, lon})
	return lat, lon, nil
}

// NewGoogleGeocoder resolves locations through the Google Geocoding API.
// The geocoder package keeps its key in a package variable, so only one key
// is used per process.
func NewGoogleGeocoder(apiKey string) Resolver {
	geocoder.ApiKey = apiKey
	c := newGeocodeCache(func(a geocoder.Address) (float64, float64, error) {
		loc, err := geocoder.Geocoding(a)
		if err != nil {
			return 0, 0, err
		}
		return loc.Latitude, loc.Longitude, nil
	}, geocodeCacheSize)
	return c.resolve
}

func cacheKey(location string) string {
	return strings.ToLower(strings.Join(strings.Fields(location), " "))
}

func addressFor(location string) geocoder.Address {
	city, country, _ := strings.Cut(location, ",")
	return geocoder.Address{
		City:    strings.TrimSpace(city),
		Country: strings.TrimSpace(country),
	}
}
