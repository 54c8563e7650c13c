package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSeverityForMagnitude(t *testing.T) {
	tests := []struct {
		magnitude float64
		want      Severity
	}{
		{magnitude: 7.1, want: SeverityHigh},
		{magnitude: 6.5, want: SeverityHigh},
		{magnitude: 6.4999, want: SeverityMedium},
		{magnitude: 5.5, want: SeverityMedium},
		{magnitude: 5.4999, want: SeverityLow},
		{magnitude: 4.5, want: SeverityLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SeverityForMagnitude(tt.magnitude), "magnitude %v", tt.magnitude)
	}
	assert.Less(t, SeverityLow.Rank(), SeverityMedium.Rank())
	assert.Less(t, SeverityMedium.Rank(), SeverityHigh.Rank())
}

func TestQuakeRadiusKm(t *testing.T) {
	assert.InDelta(t, 50.0, QuakeRadiusKm(2.0), 1e-9)
	assert.InDelta(t, 50.0, QuakeRadiusKm(2.5), 1e-9)
	assert.InDelta(t, 130.0, QuakeRadiusKm(6.5), 1e-9)
}

func TestLiveLocation_VisibleTo(t *testing.T) {
	owner, viewer, stranger := uuid.New(), uuid.New(), uuid.New()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	window := 30 * time.Minute

	loc := LiveLocation{
		UserID:      owner,
		IsSharing:   true,
		ShareWith:   []uuid.UUID{viewer},
		LastUpdated: now.Add(-5 * time.Minute),
	}

	assert.True(t, loc.VisibleTo(viewer, false, now, window))
	assert.False(t, loc.VisibleTo(stranger, true, now, window))
	assert.False(t, loc.VisibleTo(owner, false, now, window))
	assert.True(t, loc.VisibleTo(owner, true, now, window))

	stale := loc
	stale.LastUpdated = now.Add(-31 * time.Minute)
	assert.False(t, stale.VisibleTo(viewer, false, now, window))

	edge := loc
	edge.LastUpdated = now.Add(-window)
	assert.True(t, edge.VisibleTo(viewer, false, now, window))

	stopped := loc
	stopped.IsSharing = false
	assert.False(t, stopped.VisibleTo(viewer, false, now, window))
	assert.False(t, stopped.VisibleTo(owner, true, now, window))
}

func TestNormalizeRecipients(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	assert.Equal(t, []uuid.UUID{a, b}, NormalizeRecipients([]uuid.UUID{a, uuid.Nil, b, a}))
	assert.Empty(t, NormalizeRecipients(nil))
}

func TestPosition_MovedBeyond(t *testing.T) {
	prev := Position{Latitude: 40.0, Longitude: -74.0}

	assert.False(t, Position{Latitude: 40.00005, Longitude: -74.0}.MovedBeyond(prev, 0.0001))
	assert.True(t, Position{Latitude: 40.0002, Longitude: -74.0}.MovedBeyond(prev, 0.0001))
	assert.True(t, Position{Latitude: 40.0, Longitude: -74.0002}.MovedBeyond(prev, 0.0001))
}
