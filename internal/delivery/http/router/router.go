// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"safeguard/internal/delivery/http/middleware"
	"safeguard/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AlertHandler           *handler.AlertHandler
	WeatherHandler         *handler.WeatherHandler
	LiveLocationHandler    *handler.LiveLocationHandler
	TrackedLocationHandler *handler.TrackedLocationHandler
	ContactHandler         *handler.ContactHandler
	PushHandler            *handler.PushHandler
	AuthMiddleware         *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	alertHandler           *handler.AlertHandler
	weatherHandler         *handler.WeatherHandler
	liveLocationHandler    *handler.LiveLocationHandler
	trackedLocationHandler *handler.TrackedLocationHandler
	contactHandler         *handler.ContactHandler
	pushHandler            *handler.PushHandler
	authMiddleware         *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		alertHandler:           params.AlertHandler,
		weatherHandler:         params.WeatherHandler,
		liveLocationHandler:    params.LiveLocationHandler,
		trackedLocationHandler: params.TrackedLocationHandler,
		contactHandler:         params.ContactHandler,
		pushHandler:            params.PushHandler,
		authMiddleware:         params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)

	// Public read-only feeds
	e.GET("/alerts", r.alertHandler.ListAlerts)
	e.GET("/weather", r.weatherHandler.GetWeather)

	// Pub/Sub push endpoint; authenticated by the push token or secret, not a session
	if r.pushHandler.Enabled() {
		e.POST("/pubsub/push", r.pushHandler.HandlePush)
	}

	liveGroup := e.Group("/live-locations")
	liveGroup.Use(r.authMiddleware.Authenticate)
	{
		liveGroup.GET("", r.liveLocationHandler.GetLiveLocations)
		liveGroup.POST("", r.liveLocationHandler.ShareLocation)
		liveGroup.PUT("", r.liveLocationHandler.UpdateSharingSettings)
		liveGroup.DELETE("", r.liveLocationHandler.StopSharing)
		liveGroup.GET("/stream", r.liveLocationHandler.Stream)
	}

	locationGroup := e.Group("/locations")
	locationGroup.Use(r.authMiddleware.Authenticate)
	{
		locationGroup.GET("", r.trackedLocationHandler.ListLocations)
		locationGroup.POST("", r.trackedLocationHandler.AddLocation)
		locationGroup.PUT("", r.trackedLocationHandler.UpdateLocation)
		locationGroup.PATCH("", r.trackedLocationHandler.UpdateStatus)
		locationGroup.DELETE("", r.trackedLocationHandler.DeleteLocation)
	}

	contactGroup := e.Group("/contacts")
	contactGroup.Use(r.authMiddleware.Authenticate)
	{
		contactGroup.GET("", r.contactHandler.ListContacts)
		contactGroup.POST("", r.contactHandler.AddContact)
		contactGroup.PUT("", r.contactHandler.UpdateContact)
		contactGroup.DELETE("", r.contactHandler.DeleteContact)
	}
}
