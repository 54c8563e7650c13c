package usecase

import (
	"context"

	"safeguard/internal/domain/entity"
	"safeguard/internal/domain/fetch"
)

// WeatherUsecase reports conditions for a point. The result is never Failed;
// upstream problems yield a Degraded result carrying fallback data.
type WeatherUsecase interface {
	GetWeather(ctx context.Context, lat, lng float64) fetch.Result[*entity.WeatherReport]
}
