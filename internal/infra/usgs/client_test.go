package usgs

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"safeguard/config"
	"safeguard/internal/domain/entity"
	"safeguard/internal/infra/httpclient"

	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const featureCollection = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "id": "us7000abcd",
      "properties": {"mag": 6.5, "place": "10 km S of Somewhere", "time": 1700000000000, "title": "M 6.5 - 10 km S of Somewhere"},
      "geometry": {"type": "Point", "coordinates": [142.5, 38.1, 10.0]}
    },
    {
      "type": "Feature",
      "id": "us7000efgh",
      "properties": {"mag": 2.4, "place": "Nowhere", "time": 1700000000000},
      "geometry": {"type": "Point", "coordinates": [-120.0, 35.0, 5.0]}
    },
    {
      "type": "Feature",
      "id": "broken",
      "properties": {"place": "No magnitude"},
      "geometry": {"type": "Point", "coordinates": [0, 0]}
    }
  ]
}`

func TestClient_RecentEarthquakes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "geojson", q.Get("format"))
		assert.Equal(t, "4.5", q.Get("minmagnitude"))
		assert.Equal(t, "time", q.Get("orderby"))
		assert.Equal(t, "10", q.Get("limit"))
		_, _ = w.Write([]byte(featureCollection))
	}))
	defer srv.Close()

	cfg := &config.Config{}
	cfg.ApplyDefaults()
	cfg.Alerts.USGSEndpoint = srv.URL

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	feed := NewClient(cfg, httpclient.NewRetryClient(http.DefaultClient, 1, time.Millisecond, logger))

	alerts, err := feed.RecentEarthquakes(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 1, "events below the magnitude floor are dropped")

	big := alerts[0]
	assert.Equal(t, "us7000abcd", big.ID)
	assert.Equal(t, entity.AlertTypeEarthquake, big.Type)
	assert.Equal(t, entity.SeverityHigh, big.Severity)
	assert.Equal(t, "M 6.5 Earthquake: 10 km S of Somewhere", big.Title)
	assert.Equal(t, "M 6.5 - 10 km S of Somewhere", big.Description)
	assert.InDelta(t, 38.1, big.Coordinates.Lat, 1e-9)
	assert.InDelta(t, 142.5, big.Coordinates.Lng, 1e-9)
	assert.InDelta(t, 130.0, big.Radius, 1e-9)
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), big.Issued)
	assert.Equal(t, big.Issued.Add(7*24*time.Hour), big.Expires)
	assert.Equal(t, SourceLabel, big.Source)
}

// summaryFeed mimics a static feed that ignores query parameters.
const summaryFeed = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": "old", "properties": {"mag": 5.0, "place": "A", "time": 1700000000000}, "geometry": {"type": "Point", "coordinates": [1, 1]}},
    {"type": "Feature", "id": "tiny", "properties": {"mag": 1.2, "place": "B", "time": 1700000300000}, "geometry": {"type": "Point", "coordinates": [2, 2]}},
    {"type": "Feature", "id": "newest", "properties": {"mag": 4.5, "place": "C", "time": 1700000200000}, "geometry": {"type": "Point", "coordinates": [3, 3]}},
    {"type": "Feature", "id": "middle", "properties": {"mag": 4.8, "place": "D", "time": 1700000100000}, "geometry": {"type": "Point", "coordinates": [4, 4]}}
  ]
}`

func TestClient_RecentEarthquakes_AppliesFloorAndLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(summaryFeed))
	}))
	defer srv.Close()

	cfg := &config.Config{}
	cfg.ApplyDefaults()
	cfg.Alerts.USGSEndpoint = srv.URL
	cfg.Alerts.Limit = 2

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	feed := NewClient(cfg, httpclient.NewRetryClient(http.DefaultClient, 1, time.Millisecond, logger))

	alerts, err := feed.RecentEarthquakes(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "newest", alerts[0].ID)
	assert.Equal(t, "middle", alerts[1].ID)
}

func TestClient_RecentEarthquakes_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := &config.Config{}
	cfg.ApplyDefaults()
	cfg.Alerts.USGSEndpoint = srv.URL

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	feed := NewClient(cfg, httpclient.NewRetryClient(http.DefaultClient, 2, time.Millisecond, logger))

	_, err := feed.RecentEarthquakes(context.Background())
	assert.Error(t, err)
}

func TestToAlert_DescriptionFallback(t *testing.T) {
	fc, err := geojson.UnmarshalFeatureCollection([]byte(featureCollection))
	require.NoError(t, err)

	small, ok := ToAlert(fc.Features[1])
	require.True(t, ok)
	assert.Equal(t, entity.SeverityLow, small.Severity)
	assert.InDelta(t, 50.0, small.Radius, 1e-9)
	assert.Equal(t, "Magnitude 2.4 earthquake reported near Nowhere.", small.Description)

	_, ok = ToAlert(fc.Features[2])
	assert.False(t, ok, "features without a magnitude are skipped")
}
