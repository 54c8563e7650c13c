package main

import (
	"context"
	"log/slog"
	"os"

	"safeguard/config"
	"safeguard/internal/delivery"
	"safeguard/internal/delivery/http"
	"safeguard/internal/delivery/http/middleware"
	"safeguard/internal/delivery/http/router/handler"
	"safeguard/internal/delivery/relay"
	"safeguard/internal/infra/auth"
	"safeguard/internal/infra/cache"
	"safeguard/internal/infra/geocode"
	"safeguard/internal/infra/httpclient"
	logs "safeguard/internal/infra/log"
	"safeguard/internal/infra/openweather"
	"safeguard/internal/infra/persistence"
	"safeguard/internal/infra/pubsub"
	"safeguard/internal/infra/realtime"
	"safeguard/internal/infra/usgs"
	"safeguard/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		cache.New,
		httpclient.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			persistence.New,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewJWTService,
			auth.NewTokenVerifier,
			usgs.NewClient,
			openweather.NewClient,
			geocode.NewNominatim,
			pubsub.NewEventPublisher,
			realtime.NewHub,
			realtime.NewLocationNotifier,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewLiveLocationService,
			impl.NewAlertService,
			impl.NewWeatherService,
			impl.NewTrackedLocationService,
			impl.NewContactService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAlertHandler,
			handler.NewWeatherHandler,
			handler.NewLiveLocationHandler,
			handler.NewTrackedLocationHandler,
			handler.NewContactHandler,
			handler.NewPushHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
			fx.Annotate(
				relay.NewKafkaRelay,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
