// Package geocode resolves addresses through a Nominatim-compatible search API.
package geocode

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"safeguard/config"
	"safeguard/internal/domain/service"
	"safeguard/internal/errors"
	"safeguard/internal/infra/httpclient"
)

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

type nominatim struct {
	http      *httpclient.RetryClient
	baseURL   string
	userAgent string
}

// NewNominatim creates the geocoder from config.
func NewNominatim(cfg *config.Config, httpClient *httpclient.RetryClient) service.Geocoder {
	return &nominatim{
		http:      httpClient,
		baseURL:   strings.TrimRight(cfg.Geocoder.BaseURL, "/"),
		userAgent: cfg.Geocoder.UserAgent,
	}
}

// Geocode returns the first match for address.
func (g *nominatim) Geocode(ctx context.Context, address string) (*service.GeocodeResult, error) {
	query := url.Values{}
	query.Set("format", "json")
	query.Set("q", address)
	query.Set("limit", "1")

	header := http.Header{}
	// Nominatim's usage policy rejects requests without an identifying agent.
	header.Set("User-Agent", g.userAgent)

	var results []searchResult
	if err := g.http.GetJSON(ctx, g.baseURL+"/search?"+query.Encode(), header, &results); err != nil {
		return nil, errors.Wrap(err, "geocode request failed")
	}
	if len(results) == 0 {
		return nil, service.ErrNoGeocodeMatch
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, errors.Wrap(err, "parse geocode latitude")
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, errors.Wrap(err, "parse geocode longitude")
	}

	return &service.GeocodeResult{
		Latitude:    lat,
		Longitude:   lng,
		DisplayName: results[0].DisplayName,
	}, nil
}
