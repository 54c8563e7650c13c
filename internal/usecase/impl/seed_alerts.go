package impl

import (
	"time"

	"safeguard/internal/domain/entity"
)

// seedAlerts is the static demo dataset served with every alert listing.
// Times are relative to now so the set never expires.
func seedAlerts(now time.Time) []entity.HazardAlert {
	at := func(d time.Duration) time.Time { return now.Add(d) }

	return []entity.HazardAlert{
		{
			ID:          "mock-1",
			Type:        entity.AlertTypeWeather,
			Severity:    entity.SeverityHigh,
			Title:       "Severe Thunderstorm Warning",
			Description: "Damaging winds up to 70mph and large hail expected.",
			Location:    "Brooklyn, NY",
			Coordinates: entity.Coordinates{Lat: 40.6892, Lng: -74.0445},
			Radius:      10,
			Issued:      now,
			Expires:     at(time.Hour),
			Source:      "National Weather Service",
		},
		{
			ID:          "mock-traffic-1",
			Type:        entity.AlertTypeTraffic,
			Severity:    entity.SeverityMedium,
			Title:       "Accident on Brooklyn Bridge",
			Description: "Multi-vehicle collision on Brooklyn Bridge, eastbound. Expect major delays. Emergency services on scene.",
			Location:    "Brooklyn Bridge, New York, NY",
			Coordinates: entity.Coordinates{Lat: 40.7061, Lng: -73.9969},
			Radius:      3,
			Issued:      at(-15 * time.Minute),
			Expires:     at(2 * time.Hour),
			Source:      "Local Traffic Authority",
		},
		{
			ID:          "mock-traffic-2",
			Type:        entity.AlertTypeTraffic,
			Severity:    entity.SeverityLow,
			Title:       "Road Closure - Main St",
			Description: "Main Street closed between 1st Ave and 3rd Ave due to a local event. Detours in place.",
			Location:    "Main Street, Anytown, USA",
			Coordinates: entity.Coordinates{Lat: 34.0522, Lng: -118.2437},
			Radius:      2,
			Issued:      at(-2 * time.Hour),
			Expires:     at(4 * time.Hour),
			Source:      "Anytown Police Department",
		},
		{
			ID:          "mock-traffic-3",
			Type:        entity.AlertTypeTraffic,
			Severity:    entity.SeverityHigh,
			Title:       "Major Highway Standstill - I-5 North",
			Description: "Complete standstill on I-5 Northbound near exit 167 due to overturned truck. Avoid area if possible. Expected clearance in 3+ hours.",
			Location:    "I-5 Northbound, Seattle, WA",
			Coordinates: entity.Coordinates{Lat: 47.6205, Lng: -122.3493},
			Radius:      10,
			Issued:      at(-5 * time.Minute),
			Expires:     at(210 * time.Minute),
			Source:      "State DOT",
		},
		{
			ID:          "mock-emergency-1",
			Type:        entity.AlertTypeEmergency,
			Severity:    entity.SeverityLow,
			Title:       "Power Outage Reported",
			Description: "Scattered power outages affecting approximately 1,200 customers in Lower Manhattan.",
			Location:    "Lower Manhattan, New York, NY",
			Coordinates: entity.Coordinates{Lat: 40.7282, Lng: -73.7949},
			Radius:      8,
			Issued:      at(-time.Hour),
			Expires:     at(2 * time.Hour),
			Source:      "Con Edison",
		},
		{
			ID:          "mock-unrest-1",
			Type:        entity.AlertTypeSafety,
			Severity:    entity.SeverityMedium,
			Title:       "Planned Protest - City Hall",
			Description: "A large demonstration is planned for City Hall plaza today from 2 PM to 5 PM. Expect road closures and increased police presence in the area.",
			Location:    "City Hall, MajorCity, USA",
			Coordinates: entity.Coordinates{Lat: 39.9526, Lng: -75.1652},
			Radius:      2,
			Issued:      at(-24 * time.Hour),
			Expires:     at(6 * time.Hour),
			Source:      "City Police Advisory",
		},
		{
			ID:          "mock-safety-1",
			Type:        entity.AlertTypeSafety,
			Severity:    entity.SeverityHigh,
			Title:       "Industrial Fire - Evacuation Order",
			Description: "Large fire at industrial complex in the West Port area. Smoke plume visible. Evacuation ordered for a 5km radius. Follow emergency personnel instructions.",
			Location:    "West Port Industrial Area",
			Coordinates: entity.Coordinates{Lat: 33.7339, Lng: -118.2830},
			Radius:      7,
			Issued:      at(-10 * time.Minute),
			Expires:     at(12 * time.Hour),
			Source:      "County Emergency Services",
		},
		{
			ID:          "mock-unrest-2",
			Type:        entity.AlertTypeSafety,
			Severity:    entity.SeverityLow,
			Title:       "Election Polling Station Congestion",
			Description: "High voter turnout reported at downtown polling stations. Expect longer than usual wait times. Consider off-peak hours if possible.",
			Location:    "Downtown Polling Centers",
			Coordinates: entity.Coordinates{Lat: 40.7580, Lng: -73.9855},
			Radius:      3,
			Issued:      at(-2 * time.Hour),
			Expires:     at(4 * time.Hour),
			Source:      "Board of Elections Update",
		},
	}
}
