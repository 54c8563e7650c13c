package geocode

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"safeguard/config"
	"safeguard/internal/domain/service"
	"safeguard/internal/infra/httpclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNominatim_Geocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "safeguard-radar", r.Header.Get("User-Agent"))

		if r.URL.Query().Get("q") == "nowhere at all" {
			_, _ = w.Write([]byte(`[]`))

			return
		}
		_, _ = w.Write([]byte(`[{"lat":"40.6892","lon":"-74.0445","display_name":"Statue of Liberty"}]`))
	}))
	defer srv.Close()

	cfg := &config.Config{}
	cfg.ApplyDefaults()
	cfg.Geocoder.BaseURL = srv.URL + "/"

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	geocoder := NewNominatim(cfg, httpclient.NewRetryClient(http.DefaultClient, 1, time.Millisecond, logger))

	result, err := geocoder.Geocode(context.Background(), "Liberty Island, New York")
	require.NoError(t, err)
	assert.InDelta(t, 40.6892, result.Latitude, 1e-9)
	assert.InDelta(t, -74.0445, result.Longitude, 1e-9)
	assert.Equal(t, "Statue of Liberty", result.DisplayName)

	_, err = geocoder.Geocode(context.Background(), "nowhere at all")
	assert.ErrorIs(t, err, service.ErrNoGeocodeMatch)
}
