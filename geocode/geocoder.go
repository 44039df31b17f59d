// Package geocode resolves article location strings into coordinates through
// an external geocoding service and backfills them onto stored articles.
package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

const nominatimBaseUrl = "https://nominatim.openstreetmap.org/search"

// Coordinates is one resolved (lat, lon) pair.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Geocoder resolves a free text location into coordinates. Returns ok=false
// when the service has no result for the location.
type Geocoder interface {
	Geocode(ctx context.Context, location string) (Coordinates, bool, error)
}

// NominatimClient geocodes through the public Nominatim search API. Callers
// are responsible for pacing requests to honor the service's rate limit.
type NominatimClient struct {
	client    *http.Client
	baseUrl   string
	userAgent string
}

func NewNominatimClient() *NominatimClient {
	return &NominatimClient{
		client:    &http.Client{Timeout: 10 * time.Second},
		baseUrl:   nominatimBaseUrl,
		userAgent: "newslens-geo/1.0",
	}
}

// NewNominatimClientWithBaseUrl is used in tests to point the client at a
// stub server.
func NewNominatimClientWithBaseUrl(baseUrl string) *NominatimClient {
	c := NewNominatimClient()
	c.baseUrl = baseUrl
	return c
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (c *NominatimClient) Geocode(ctx context.Context, location string) (Coordinates, bool, error) {
	params := url.Values{}
	params.Set("q", location)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseUrl+"?"+params.Encode(), nil)
	if err != nil {
		return Coordinates{}, false, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	res, err := c.client.Do(req)
	if err != nil {
		return Coordinates{}, false, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return Coordinates{}, false, errors.Errorf("nominatim: HTTP %d", res.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(res.Body).Decode(&results); err != nil {
		return Coordinates{}, false, err
	}
	if len(results) == 0 {
		return Coordinates{}, false, nil
	}
	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Coordinates{}, false, errors.Wrap(err, "bad lat")
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Coordinates{}, false, errors.Wrap(err, "bad lon")
	}
	return Coordinates{Lat: lat, Lon: lon}, true, nil
}
