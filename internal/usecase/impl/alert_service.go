package impl

import (
	"context"
	"log/slog"
	"time"

	"safeguard/config"
	deliverycontext "safeguard/internal/delivery/context"
	"safeguard/internal/domain/entity"
	"safeguard/internal/domain/fetch"
	"safeguard/internal/domain/geo"
	"safeguard/internal/domain/service"
	"safeguard/internal/infra/cache"
	"safeguard/internal/usecase"

	"github.com/paulmach/orb"
	"go.uber.org/fx"
)

const (
	earthquakeCacheKey = "alerts:usgs"
	// staleEarthquakeTTL bounds how old a cached feed may be when served after a failed fetch.
	staleEarthquakeTTL = 24 * time.Hour
)

type alertService struct {
	feed     service.EarthquakeFeed
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// AlertServiceParams holds dependencies for AlertService, injected by Fx.
type AlertServiceParams struct {
	fx.In

	Feed   service.EarthquakeFeed
	Cache  cache.Cache
	Config *config.Config
	Logger *slog.Logger
}

// NewAlertService creates a new alert aggregation service instance
func NewAlertService(params AlertServiceParams) usecase.AlertUsecase {
	return &alertService{
		feed:     params.Feed,
		cache:    params.Cache,
		cacheTTL: params.Config.Alerts.CacheTTL,
		logger:   params.Logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ListAlerts merges the seed set with the live earthquake feed. A feed failure
// degrades to the seed set (plus any stale cached feed) instead of failing.
func (s *alertService) ListAlerts(ctx context.Context, query usecase.AlertQuery) (*usecase.AlertList, error) {
	quakes := s.earthquakes(ctx)

	alerts := seedAlerts(s.now())
	alerts = append(alerts, quakes.Value...)

	if query.Near {
		alerts = geo.FilterAlertsNear(alerts, orb.Point{query.Lng, query.Lat}, query.RadiusKm)
	}

	return &usecase.AlertList{
		Alerts:   alerts,
		Degraded: quakes.IsFallback(),
	}, nil
}

func (s *alertService) earthquakes(ctx context.Context) fetch.Result[[]entity.HazardAlert] {
	logger := deliverycontext.GetLoggerOrDefault(ctx, s.logger)

	if s.cacheTTL > 0 {
		cached, _, ok, err := cache.GetJSON[[]entity.HazardAlert](ctx, s.cache, earthquakeCacheKey, s.cacheTTL)
		if err != nil {
			logger.Warn("Failed to read earthquake cache", slog.Any("error", err))
		}
		if ok {
			return fetch.OK(cached)
		}
	}

	quakes, err := s.feed.RecentEarthquakes(ctx)
	if err == nil {
		if err := cache.PutJSON(ctx, s.cache, earthquakeCacheKey, quakes); err != nil {
			logger.Warn("Failed to cache earthquake feed", slog.Any("error", err))
		}

		return fetch.OK(quakes)
	}

	logger.Error("Failed to fetch earthquake feed, serving seed alerts", slog.Any("error", err))

	stale, age, ok, cacheErr := cache.GetJSON[[]entity.HazardAlert](ctx, s.cache, earthquakeCacheKey, staleEarthquakeTTL)
	if cacheErr == nil && ok {
		logger.Info("Serving stale earthquake feed", slog.Duration("age", age))

		return fetch.Degraded(stale, err)
	}

	return fetch.Failed[[]entity.HazardAlert](err).OrElse(nil)
}
