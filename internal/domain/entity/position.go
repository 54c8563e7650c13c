package entity

import (
	"math"
	"time"

	"github.com/paulmach/orb"
)

// Position is a single fix from a geolocation source. It is never stored as-is;
// it becomes a LiveLocation when pushed.
type Position struct {
	Latitude  float64
	Longitude float64
	Accuracy  *float64
	Heading   *float64
	Speed     *float64
	Timestamp time.Time
}

// Point returns the position as an orb point (lng, lat).
func (p Position) Point() orb.Point {
	return orb.Point{p.Longitude, p.Latitude}
}

// MovedBeyond reports whether either coordinate differs from prev by more than threshold degrees.
func (p Position) MovedBeyond(prev Position, threshold float64) bool {
	return math.Abs(p.Latitude-prev.Latitude) > threshold ||
		math.Abs(p.Longitude-prev.Longitude) > threshold
}
