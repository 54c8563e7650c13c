package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "safeguard/internal/delivery/context"
	"safeguard/internal/domain/entity"
	"safeguard/internal/domain/fetch"
	"safeguard/internal/domain/service"
	"safeguard/internal/usecase"

	"go.uber.org/fx"
)

type weatherService struct {
	provider service.WeatherProvider
	logger   *slog.Logger
	now      func() time.Time
}

// WeatherServiceParams holds dependencies for WeatherService, injected by Fx.
type WeatherServiceParams struct {
	fx.In

	Provider service.WeatherProvider
	Logger   *slog.Logger
}

// NewWeatherService creates a new weather service instance
func NewWeatherService(params WeatherServiceParams) usecase.WeatherUsecase {
	return &weatherService{
		provider: params.Provider,
		logger:   params.Logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetWeather returns live conditions, or the fallback report when the provider
// is unconfigured or failing.
func (s *weatherService) GetWeather(ctx context.Context, lat, lng float64) fetch.Result[*entity.WeatherReport] {
	report, err := s.provider.Report(ctx, lat, lng)
	if err == nil {
		return fetch.OK(report)
	}

	deliverycontext.GetLoggerOrDefault(ctx, s.logger).Warn("Weather provider failed, serving fallback",
		slog.Float64("lat", lat),
		slog.Float64("lng", lng),
		slog.Any("error", err),
	)

	return fetch.Failed[*entity.WeatherReport](err).OrElse(fallbackWeather(lat, lng, s.now()))
}

// fallbackWeather is the fixed report served when live data is unavailable.
func fallbackWeather(lat, lng float64, now time.Time) *entity.WeatherReport {
	return &entity.WeatherReport{
		Location: entity.WeatherLocation{
			Lat:  lat,
			Lng:  lng,
			Name: "Fallback Location (Weather API Error)",
		},
		Current: entity.CurrentWeather{
			Temperature: 20,
			Condition:   "Partly Cloudy",
			Description: "partly cloudy with a chance of showers",
			WindSpeed:   15,
			Humidity:    60,
			Pressure:    1012,
			Visibility:  10,
			Icon:        "02d",
		},
		Alerts: []entity.WeatherNotice{
			{
				ID:          "fallback-weather-alert-1",
				Type:        entity.AlertTypeSystem,
				Title:       "Real-time Weather Unavailable",
				Description: "Currently displaying cached or mock weather data due to an issue fetching live updates. Please try again later.",
				Severity:    entity.SeverityLow,
				Areas:       []string{"Current Location"},
				Expires:     now.Add(time.Hour).Format(time.RFC3339),
				Source:      "System",
			},
		},
		Forecast: []entity.ForecastPeriod{
			{Time: "12:00 PM", Temp: 22, Condition: "Sunny", Description: "clear sky", Icon: "01d"},
			{Time: "03:00 PM", Temp: 23, Condition: "Sunny", Description: "clear sky", Icon: "01d"},
			{Time: "06:00 PM", Temp: 21, Condition: "Clouds", Description: "few clouds", Icon: "02d"},
			{Time: "09:00 PM", Temp: 18, Condition: "Clear", Description: "clear sky", Icon: "01n"},
			{Time: "12:00 AM", Temp: 16, Condition: "Clear", Description: "clear sky", Icon: "01n"},
			{Time: "03:00 AM", Temp: 15, Condition: "Clear", Description: "clear sky", Icon: "01n"},
		},
	}
}
