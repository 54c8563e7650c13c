// Package usgs reads the USGS earthquake catalog and converts events to hazard alerts.
package usgs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"safeguard/config"
	"safeguard/internal/domain/entity"
	"safeguard/internal/domain/service"
	"safeguard/internal/errors"
	"safeguard/internal/infra/httpclient"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const (
	// SourceLabel is attached to every alert built from this feed.
	SourceLabel = "USGS Earthquake Hazards Program"

	alertLifetime = 7 * 24 * time.Hour
)

type client struct {
	http         *httpclient.RetryClient
	endpoint     string
	minMagnitude float64
	limit        int
}

// NewClient creates the earthquake feed from config.
func NewClient(cfg *config.Config, httpClient *httpclient.RetryClient) service.EarthquakeFeed {
	return &client{
		http:         httpClient,
		endpoint:     cfg.Alerts.USGSEndpoint,
		minMagnitude: cfg.Alerts.MinMagnitude,
		limit:        cfg.Alerts.Limit,
	}
}

// RecentEarthquakes returns the most recent events above the configured magnitude.
func (c *client) RecentEarthquakes(ctx context.Context) ([]entity.HazardAlert, error) {
	query := url.Values{}
	query.Set("format", "geojson")
	query.Set("minmagnitude", strconv.FormatFloat(c.minMagnitude, 'f', -1, 64))
	query.Set("orderby", "time")
	query.Set("limit", strconv.Itoa(c.limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &httpclient.StatusError{StatusCode: resp.StatusCode, URL: c.endpoint}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read USGS response")
	}

	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		return nil, errors.Wrap(err, "decode USGS feature collection")
	}

	return c.selectRecent(fc), nil
}

// selectRecent keeps events at or above the magnitude floor, newest first, capped at the limit.
// Summary feeds ignore the query parameters, so the rules are applied here as well.
func (c *client) selectRecent(fc *geojson.FeatureCollection) []entity.HazardAlert {
	alerts := make([]entity.HazardAlert, 0, len(fc.Features))
	for _, feature := range fc.Features {
		if feature.Properties.MustFloat64("mag", 0) < c.minMagnitude {
			continue
		}
		alert, ok := ToAlert(feature)
		if !ok {
			continue
		}
		alerts = append(alerts, alert)
	}

	slices.SortStableFunc(alerts, func(a, b entity.HazardAlert) int {
		return b.Issued.Compare(a.Issued)
	})
	if c.limit > 0 && len(alerts) > c.limit {
		alerts = alerts[:c.limit]
	}

	return alerts
}

// ToAlert converts one catalog feature. Features without a point geometry or magnitude are skipped.
func ToAlert(feature *geojson.Feature) (entity.HazardAlert, bool) {
	point, ok := feature.Geometry.(orb.Point)
	if !ok {
		return entity.HazardAlert{}, false
	}
	magnitude, ok := feature.Properties["mag"].(float64)
	if !ok {
		return entity.HazardAlert{}, false
	}

	place := feature.Properties.MustString("place", "Unknown location")
	description := feature.Properties.MustString("title", "")
	if description == "" {
		description = fmt.Sprintf("Magnitude %s earthquake reported near %s.", formatMagnitude(magnitude), place)
	}

	issued := time.UnixMilli(int64(feature.Properties.MustFloat64("time", 0))).UTC()

	return entity.HazardAlert{
		ID:          fmt.Sprint(feature.ID),
		Type:        entity.AlertTypeEarthquake,
		Severity:    entity.SeverityForMagnitude(magnitude),
		Title:       fmt.Sprintf("M %s Earthquake: %s", formatMagnitude(magnitude), place),
		Description: description,
		Location:    place,
		Coordinates: entity.Coordinates{Lat: point.Lat(), Lng: point.Lon()},
		Radius:      entity.QuakeRadiusKm(magnitude),
		Issued:      issued,
		Expires:     issued.Add(alertLifetime),
		Source:      SourceLabel,
	}, true
}

func formatMagnitude(m float64) string {
	return strconv.FormatFloat(m, 'f', -1, 64)
}
