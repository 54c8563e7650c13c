// Package openweather reads current conditions and the short forecast from OpenWeatherMap.
package openweather

import (
	"context"
	"math"
	"net/url"
	"strconv"
	"time"

	"safeguard/config"
	"safeguard/internal/domain/entity"
	"safeguard/internal/domain/service"
	"safeguard/internal/errors"
	"safeguard/internal/infra/httpclient"
)

// ErrMissingAPIKey is returned when no key is configured.
var ErrMissingAPIKey = errors.New("weather API key not configured")

const (
	forecastWindow = 8
	msToKmh        = 3.6
	forecastLabel  = "03:04 PM"
)

type condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type currentResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
		Pressure int     `json:"pressure"`
	} `json:"main"`
	Weather []condition `json:"weather"`
	Wind    struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Visibility float64 `json:"visibility"`
	Timezone   int     `json:"timezone"`
}

type forecastResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []condition `json:"weather"`
	} `json:"list"`
	City struct {
		Timezone int `json:"timezone"`
	} `json:"city"`
}

type client struct {
	http          *httpclient.RetryClient
	baseURL       string
	apiKey        string
	forecastCount int
}

// NewClient creates the weather provider from config.
func NewClient(cfg *config.Config, httpClient *httpclient.RetryClient) service.WeatherProvider {
	return &client{
		http:          httpClient,
		baseURL:       cfg.Weather.BaseURL,
		apiKey:        cfg.Weather.APIKey,
		forecastCount: cfg.Weather.ForecastCount,
	}
}

// Report fetches current conditions. A failed forecast call leaves the forecast empty.
func (c *client) Report(ctx context.Context, lat, lng float64) (*entity.WeatherReport, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	var current currentResponse
	if err := c.http.GetJSON(ctx, c.endpoint("weather", lat, lng, 0), nil, &current); err != nil {
		return nil, errors.Wrap(err, "failed to fetch current weather")
	}
	if len(current.Weather) == 0 {
		return nil, errors.New("current weather response has no conditions")
	}

	report := &entity.WeatherReport{
		Location: entity.WeatherLocation{Lat: lat, Lng: lng, Name: current.Name},
		Current: entity.CurrentWeather{
			Temperature: round(current.Main.Temp),
			Condition:   current.Weather[0].Main,
			Description: current.Weather[0].Description,
			WindSpeed:   round(current.Wind.Speed * msToKmh),
			Humidity:    current.Main.Humidity,
			Pressure:    current.Main.Pressure,
			Visibility:  current.Visibility / 1000,
			Icon:        current.Weather[0].Icon,
		},
		Alerts:   []entity.WeatherNotice{},
		Forecast: []entity.ForecastPeriod{},
	}

	var forecast forecastResponse
	if err := c.http.GetJSON(ctx, c.endpoint("forecast", lat, lng, forecastWindow), nil, &forecast); err == nil {
		report.Forecast = c.toForecast(&forecast)
	}

	return report, nil
}

func (c *client) toForecast(resp *forecastResponse) []entity.ForecastPeriod {
	zone := time.FixedZone("", resp.City.Timezone)

	periods := make([]entity.ForecastPeriod, 0, c.forecastCount)
	for _, item := range resp.List {
		if len(periods) == c.forecastCount {
			break
		}
		if len(item.Weather) == 0 {
			continue
		}
		periods = append(periods, entity.ForecastPeriod{
			Time:        time.Unix(item.Dt, 0).In(zone).Format(forecastLabel),
			Temp:        round(item.Main.Temp),
			Condition:   item.Weather[0].Main,
			Description: item.Weather[0].Description,
			Icon:        item.Weather[0].Icon,
		})
	}

	return periods
}

func (c *client) endpoint(path string, lat, lng float64, count int) string {
	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	query.Set("appid", c.apiKey)
	query.Set("units", "metric")
	if count > 0 {
		query.Set("cnt", strconv.Itoa(count))
	}

	return c.baseURL + "/" + path + "?" + query.Encode()
}

func round(v float64) int {
	return int(math.Round(v))
}
