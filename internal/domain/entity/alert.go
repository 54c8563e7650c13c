package entity

import (
	"math"
	"time"

	"github.com/paulmach/orb"
)

// AlertType is the hazard category.
type AlertType string

const (
	AlertTypeWeather    AlertType = "weather"
	AlertTypeTraffic    AlertType = "traffic"
	AlertTypeEmergency  AlertType = "emergency"
	AlertTypeEarthquake AlertType = "earthquake"
	AlertTypeSafety     AlertType = "safety"
	AlertTypeSystem     AlertType = "weather_api_status"
)

// Severity is ordered low < medium < high.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Rank returns the ordinal of the severity, 0 for unknown values.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	default:
		return 0
	}
}

// Earthquake thresholds.
const (
	HighMagnitude       = 6.5
	MediumMagnitude     = 5.5
	MinQuakeRadiusKm    = 50.0
	KmPerMagnitudePoint = 20.0
)

// SeverityForMagnitude maps an earthquake magnitude to a severity.
func SeverityForMagnitude(magnitude float64) Severity {
	switch {
	case magnitude >= HighMagnitude:
		return SeverityHigh
	case magnitude >= MediumMagnitude:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// QuakeRadiusKm estimates the affected radius of an earthquake.
func QuakeRadiusKm(magnitude float64) float64 {
	return math.Max(MinQuakeRadiusKm, magnitude*KmPerMagnitudePoint)
}

// Coordinates is the JSON shape used by the dashboard for alert centers.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// HazardAlert is a geotagged hazard. Alerts are read-only to this system.
type HazardAlert struct {
	ID          string      `json:"id"`
	Type        AlertType   `json:"type"`
	Severity    Severity    `json:"severity"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Location    string      `json:"location"`    // Free-text location label.
	Coordinates Coordinates `json:"coordinates"` // Center of the affected area.
	Radius      float64     `json:"radius"`      // Affected radius in km.
	Issued      time.Time   `json:"issued"`
	Expires     time.Time   `json:"expires"`
	Source      string      `json:"source"`
}

// Center returns the alert center as an orb point.
func (a *HazardAlert) Center() orb.Point {
	return orb.Point{a.Coordinates.Lng, a.Coordinates.Lat}
}
