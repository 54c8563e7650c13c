// Package geo holds the great-circle math used for proximity decisions.
package geo

import (
	"math"

	"safeguard/internal/domain/entity"

	"github.com/paulmach/orb"
)

// EarthRadiusKm is the mean Earth radius used for every distance in the API.
const EarthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two points in kilometers.
// Points are orb points, so X is longitude and Y is latitude.
func HaversineKm(a, b orb.Point) float64 {
	lat1 := toRadians(a.Lat())
	lat2 := toRadians(b.Lat())
	dLat := lat2 - lat1
	dLng := toRadians(b.Lon() - a.Lon())

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	h = math.Min(1, h)

	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Overlaps reports whether an alert's affected circle intersects the query circle.
func Overlaps(alert *entity.HazardAlert, center orb.Point, radiusKm float64) bool {
	return HaversineKm(alert.Center(), center) <= alert.Radius+radiusKm
}

// FilterAlertsNear keeps the alerts whose circle overlaps the query circle, preserving order.
func FilterAlertsNear(alerts []entity.HazardAlert, center orb.Point, radiusKm float64) []entity.HazardAlert {
	out := make([]entity.HazardAlert, 0, len(alerts))
	for i := range alerts {
		if Overlaps(&alerts[i], center, radiusKm) {
			out = append(out, alerts[i])
		}
	}

	return out
}

// ValidLatLng reports whether the pair is inside WGS84 bounds.
func ValidLatLng(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180 &&
		!math.IsNaN(lat) && !math.IsNaN(lng)
}
