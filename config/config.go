package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "100KB"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port               int    `json:"port" yaml:"port"`
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	// Storage selects the backing store for user-owned records
	Storage *StorageConfig `json:"storage" yaml:"storage"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	// Auth configures verification of backend-issued session tokens
	Auth *AuthConfig `json:"auth" yaml:"auth"`

	LiveLocation *LiveLocationConfig `json:"liveLocation" yaml:"liveLocation"`

	Alerts *AlertsConfig `json:"alerts" yaml:"alerts"`

	Weather *WeatherConfig `json:"weather" yaml:"weather"`

	Geocoder *GeocoderConfig `json:"geocoder" yaml:"geocoder"`

	// Retry applies to outbound third-party HTTP calls only
	Retry *RetryConfig `json:"retry" yaml:"retry"`

	Cache *CacheConfig `json:"cache" yaml:"cache"`

	// PubSub configuration for live location change events
	PubSub *PubSubConfig `json:"pubsub" yaml:"pubsub"`

	// Tracker configures the sharing client run by cmd/tracker
	Tracker *TrackerConfig `json:"tracker" yaml:"tracker"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// StorageConfig defines which repository implementation backs the API
type StorageConfig struct {
	// Driver is "postgres" or "memory"
	Driver string `json:"driver" yaml:"driver"`
	// AutoMigrate creates or alters tables on startup (postgres only)
	AutoMigrate bool `json:"autoMigrate" yaml:"autoMigrate"`
}

// AuthConfig defines how bearer/session tokens are verified
type AuthConfig struct {
	JWTSecret  string `json:"jwtSecret" yaml:"jwtSecret"`
	Issuer     string `json:"issuer" yaml:"issuer"`
	CookieName string `json:"cookieName" yaml:"cookieName"`
}

// LiveLocationConfig defines live location sharing behaviour
type LiveLocationConfig struct {
	// Shared positions older than this are excluded from fan-out queries
	FreshnessWindow time.Duration `json:"freshnessWindow" yaml:"freshnessWindow"`
	DefaultName     string        `json:"defaultName" yaml:"defaultName"`
}

// AlertsConfig defines the hazard alert feed
type AlertsConfig struct {
	USGSEndpoint string        `json:"usgsEndpoint" yaml:"usgsEndpoint"`
	MinMagnitude float64       `json:"minMagnitude" yaml:"minMagnitude"`
	Limit        int           `json:"limit" yaml:"limit"`
	CacheTTL     time.Duration `json:"cacheTTL" yaml:"cacheTTL"`
}

// WeatherConfig defines the weather provider. An empty APIKey serves fallback data.
type WeatherConfig struct {
	APIKey        string `json:"apiKey" yaml:"apiKey"`
	BaseURL       string `json:"baseUrl" yaml:"baseUrl"`
	ForecastCount int    `json:"forecastCount" yaml:"forecastCount"`
}

// GeocoderConfig defines the address lookup service
type GeocoderConfig struct {
	BaseURL   string `json:"baseUrl" yaml:"baseUrl"`
	UserAgent string `json:"userAgent" yaml:"userAgent"`
}

// RetryConfig defines backoff for outbound HTTP calls
type RetryConfig struct {
	Attempts       int           `json:"attempts" yaml:"attempts"`
	BaseDelay      time.Duration `json:"baseDelay" yaml:"baseDelay"`
	RequestTimeout time.Duration `json:"requestTimeout" yaml:"requestTimeout"`
}

// CacheConfig defines the response cache backend
type CacheConfig struct {
	// Provider is "memory" or "redis"
	Provider   string        `json:"provider" yaml:"provider"`
	DefaultTTL time.Duration `json:"defaultTTL" yaml:"defaultTTL"`
	// Retention bounds how long entries are kept regardless of the TTL callers ask for
	Retention time.Duration `json:"retention" yaml:"retention"`
	Redis     struct {
		Addr     string `json:"addr" yaml:"addr"`
		Password string `json:"password" yaml:"password"`
		DB       int    `json:"db" yaml:"db"`
	} `json:"redis" yaml:"redis"`
}

// PubSubConfig defines Pub/Sub configuration for event publishing
type PubSubConfig struct {
	// Provider type: "local", "google" or "kafka"; empty disables publishing
	Provider string `json:"provider" yaml:"provider"`

	// Google Cloud project ID (for google provider)
	ProjectID string `json:"projectId" yaml:"projectId"`

	// Pub/Sub topic ID (for google provider)
	TopicID string `json:"topicId" yaml:"topicId"`

	// Local HTTP endpoint for development (for local provider)
	LocalEndpoint string `json:"localEndpoint" yaml:"localEndpoint"`

	// PushSecret is sent by the local publisher and required by /pubsub/push (local provider)
	PushSecret string `json:"pushSecret" yaml:"pushSecret"`

	Kafka struct {
		Brokers []string `json:"brokers" yaml:"brokers"`
		Topic   string   `json:"topic" yaml:"topic"`
		// GroupPrefix names the per-instance consumer group that relays events to local streams
		GroupPrefix string `json:"groupPrefix" yaml:"groupPrefix"`
	} `json:"kafka" yaml:"kafka"`
}

// TrackerConfig defines the live location sharing client
type TrackerConfig struct {
	APIBaseURL      string        `json:"apiBaseUrl" yaml:"apiBaseUrl"`
	Token           string        `json:"token" yaml:"token"`
	RefreshInterval time.Duration `json:"refreshInterval" yaml:"refreshInterval"`
	PositionTimeout time.Duration `json:"positionTimeout" yaml:"positionTimeout"`
	// MoveThreshold is in degrees; 0.0001 is roughly 11 meters
	MoveThreshold float64 `json:"moveThreshold" yaml:"moveThreshold"`
}

// ApplyDefaults fills every optional section that was left unset.
func (c *Config) ApplyDefaults() {
	if strings.TrimSpace(c.HTTP.MaxRequestBodySize) == "" {
		c.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}
	if c.Storage == nil {
		c.Storage = &StorageConfig{}
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "postgres"
	}
	if c.Auth == nil {
		c.Auth = &AuthConfig{}
	}
	if c.Auth.CookieName == "" {
		c.Auth.CookieName = "access_token"
	}
	if c.LiveLocation == nil {
		c.LiveLocation = &LiveLocationConfig{}
	}
	if c.LiveLocation.FreshnessWindow <= 0 {
		c.LiveLocation.FreshnessWindow = 30 * time.Minute
	}
	if c.LiveLocation.DefaultName == "" {
		c.LiveLocation.DefaultName = "My Location"
	}
	if c.Alerts == nil {
		c.Alerts = &AlertsConfig{}
	}
	if c.Alerts.USGSEndpoint == "" {
		c.Alerts.USGSEndpoint = "https://earthquake.usgs.gov/fdsnws/event/1/query"
	}
	if c.Alerts.MinMagnitude <= 0 {
		c.Alerts.MinMagnitude = 4.5
	}
	if c.Alerts.Limit <= 0 {
		c.Alerts.Limit = 10
	}
	if c.Weather == nil {
		c.Weather = &WeatherConfig{}
	}
	if c.Weather.BaseURL == "" {
		c.Weather.BaseURL = "https://api.openweathermap.org/data/2.5"
	}
	if c.Weather.ForecastCount <= 0 {
		c.Weather.ForecastCount = 6
	}
	if c.Geocoder == nil {
		c.Geocoder = &GeocoderConfig{}
	}
	if c.Geocoder.BaseURL == "" {
		c.Geocoder.BaseURL = "https://nominatim.openstreetmap.org"
	}
	if c.Geocoder.UserAgent == "" {
		c.Geocoder.UserAgent = "safeguard-radar"
	}
	if c.Retry == nil {
		c.Retry = &RetryConfig{}
	}
	if c.Retry.Attempts <= 0 {
		c.Retry.Attempts = 3
	}
	if c.Retry.BaseDelay <= 0 {
		c.Retry.BaseDelay = time.Second
	}
	if c.Retry.RequestTimeout <= 0 {
		c.Retry.RequestTimeout = 10 * time.Second
	}
	if c.Cache == nil {
		c.Cache = &CacheConfig{}
	}
	if c.Cache.Provider == "" {
		c.Cache.Provider = "memory"
	}
	if c.Cache.DefaultTTL <= 0 {
		c.Cache.DefaultTTL = 10 * time.Minute
	}
	if c.Cache.Retention <= 0 {
		c.Cache.Retention = 24 * time.Hour
	}
	if c.Tracker == nil {
		c.Tracker = &TrackerConfig{}
	}
	if c.Tracker.APIBaseURL == "" {
		c.Tracker.APIBaseURL = "http://localhost:8080"
	}
	if c.Tracker.RefreshInterval <= 0 {
		c.Tracker.RefreshInterval = 30 * time.Second
	}
	if c.Tracker.PositionTimeout <= 0 {
		c.Tracker.PositionTimeout = 15 * time.Second
	}
	if c.Tracker.MoveThreshold <= 0 {
		c.Tracker.MoveThreshold = 0.0001
	}
}

// LoadWithEnv loads .yaml files through koanf, then overlays environment variables.
// A .env file in the working directory is loaded into the environment first when present.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "load .env failed")
	}

	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}

	configFile, found := findConfigFile(currEnv, searchPaths)
	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Example: WEATHER_APIKEY -> weather.apiKey
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			return canonicalizeEnvKey(k, existingConfigMap), v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func findConfigFile(currEnv string, searchPaths []string) (string, bool) {
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}

	return "", false
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()

	if cfg.Postgres != nil {
		// POSTGRES_REPLICAS_0_HOST, POSTGRES_REPLICAS_0_PORT, ...
		cfg.Postgres.Replicas = buildReplicasFromEnv()
	}

	return cfg, nil
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		matched, next, ok := findExistingSegment(current, segment)
		if !ok {
			canonical = append(canonical, segment)
			current = nil

			continue
		}

		canonical = append(canonical, matched)
		current = next
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			normalized.WriteRune(unicode.ToLower(r))
		}
	}

	return normalized.String()
}

func buildReplicasFromEnv() []postgres.ConnectionConfig {
	var replicas []postgres.ConnectionConfig

	for i := 0; ; i++ {
		prefix := "POSTGRES_REPLICAS_" + strconv.Itoa(i) + "_"

		host := os.Getenv(prefix + "HOST")
		port := os.Getenv(prefix + "PORT")
		if host == "" || port == "" {
			break
		}

		replicas = append(replicas, postgres.ConnectionConfig{
			Host:     host,
			Port:     port,
			UserName: os.Getenv(prefix + "USERNAME"),
			Password: os.Getenv(prefix + "PASSWORD"),
		})
	}

	return replicas
}
