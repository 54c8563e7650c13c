package service

import (
	"context"

	"safeguard/internal/domain/entity"
)

// EarthquakeFeed fetches recent earthquakes as hazard alerts.
type EarthquakeFeed interface {
	RecentEarthquakes(ctx context.Context) ([]entity.HazardAlert, error)
}

// WeatherProvider fetches live conditions for a point.
type WeatherProvider interface {
	Report(ctx context.Context, lat, lng float64) (*entity.WeatherReport, error)
}

// GeocodeResult is the first match for an address.
type GeocodeResult struct {
	Latitude    float64
	Longitude   float64
	DisplayName string
}

// Geocoder resolves free-text addresses. It returns ErrNoGeocodeMatch when nothing matches.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*GeocodeResult, error)
}

// TokenVerifier resolves a session token to the caller's identity.
type TokenVerifier interface {
	Verify(token string) (*entity.Identity, error)
}
