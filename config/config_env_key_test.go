package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"weather": map[string]any{
			"apiKey": "",
		},
		"liveLocation": map[string]any{
			"freshnessWindow": "30m",
		},
		"pubsub": map[string]any{
			"topicId": "",
		},
		"auth": map[string]any{
			"jwtSecret": "",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "WEATHER_APIKEY", want: "weather.apiKey"},
		{envKey: "LIVELOCATION_FRESHNESSWINDOW", want: "liveLocation.freshnessWindow"},
		{envKey: "PUBSUB_TOPICID", want: "pubsub.topicId"},
		{envKey: "AUTH_JWTSECRET", want: "auth.jwtSecret"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			assert.Equal(t, tt.want, canonicalizeEnvKey(tt.envKey, existing))
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	assert.Equal(t, defaultMaxRequestBodySize, cfg.HTTP.MaxRequestBodySize)
	assert.Equal(t, 30*time.Minute, cfg.LiveLocation.FreshnessWindow)
	assert.Equal(t, 4.5, cfg.Alerts.MinMagnitude)
	assert.Equal(t, 10, cfg.Alerts.Limit)
	assert.Equal(t, 3, cfg.Retry.Attempts)
	assert.Equal(t, time.Second, cfg.Retry.BaseDelay)
	assert.Equal(t, "memory", cfg.Cache.Provider)
	assert.Equal(t, 30*time.Second, cfg.Tracker.RefreshInterval)
	assert.InDelta(t, 0.0001, cfg.Tracker.MoveThreshold, 1e-12)
	assert.Empty(t, cfg.Weather.APIKey)
}

func TestLoadWithEnv_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	yamlBody := []byte("weather:\n  apiKey: from-file\nliveLocation:\n  freshnessWindow: 10m\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.yaml"), yamlBody, 0o600))

	t.Chdir(dir)
	t.Setenv("WEATHER_APIKEY", "from-env")

	cfg, err := LoadWithEnv[Config]("test")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Weather.APIKey)
	assert.Equal(t, 10*time.Minute, cfg.LiveLocation.FreshnessWindow)
}

func TestShippedConfig(t *testing.T) {
	for _, key := range []string{"ALERTS_USGSENDPOINT", "ALERTS_MINMAGNITUDE", "ALERTS_LIMIT", "WEATHER_FORECASTCOUNT", "RETRY_BASEDELAY"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := LoadWithEnv[Config]("config", ".")
	require.NoError(t, err)
	cfg.ApplyDefaults()

	assert.Equal(t, "https://earthquake.usgs.gov/fdsnws/event/1/query", cfg.Alerts.USGSEndpoint)
	assert.Equal(t, 4.5, cfg.Alerts.MinMagnitude)
	assert.Equal(t, 10, cfg.Alerts.Limit)
	assert.Equal(t, 6, cfg.Weather.ForecastCount)
	assert.Equal(t, 3, cfg.Retry.Attempts)
	assert.Equal(t, time.Second, cfg.Retry.BaseDelay)
	assert.Equal(t, "memory", cfg.Storage.Driver)
}

func TestLoadWithEnv_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := LoadWithEnv[Config]("absent")
	assert.Error(t, err)
}
