package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	deliverycontext "safeguard/internal/delivery/context"
	"safeguard/internal/delivery/http/response"
	"safeguard/internal/infra/realtime"
	"safeguard/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// LiveLocationHandlerParams holds dependencies for LiveLocationHandler, injected by Fx.
type LiveLocationHandlerParams struct {
	fx.In

	LiveLocationUC usecase.LiveLocationUsecase
	Hub            *realtime.Hub
	Logger         *slog.Logger
}

// LiveLocationHandler serves live location sharing.
type LiveLocationHandler struct {
	liveLocationUC usecase.LiveLocationUsecase
	hub            *realtime.Hub
	logger         *slog.Logger
}

// NewLiveLocationHandler is the constructor for LiveLocationHandler
func NewLiveLocationHandler(params LiveLocationHandlerParams) *LiveLocationHandler {
	return &LiveLocationHandler{
		liveLocationUC: params.LiveLocationUC,
		hub:            params.Hub,
		logger:         params.Logger,
	}
}

// ShareLocationRequest is a position push.
type ShareLocationRequest struct {
	Name      string   `json:"name" validate:"max=100"`
	Lat       *float64 `json:"lat" validate:"required,latitude"`
	Lng       *float64 `json:"lng" validate:"required,longitude"`
	Accuracy  *float64 `json:"accuracy" validate:"omitnil,gte=0"`
	Heading   *float64 `json:"heading" validate:"omitnil,gte=0,lt=360"`
	Speed     *float64 `json:"speed" validate:"omitnil,gte=0"`
	IsSharing *bool    `json:"is_sharing"`
	ShareWith []string `json:"share_with" validate:"omitempty,dive,uuid"`
}

// SharingSettingsRequest changes visibility without a new position.
type SharingSettingsRequest struct {
	IsSharing *bool    `json:"is_sharing" validate:"required"`
	ShareWith []string `json:"share_with" validate:"omitempty,dive,uuid"`
}

// GetLiveLocations handles GET /live-locations?include_own=true
func (h *LiveLocationHandler) GetLiveLocations(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return handleAppError(c, err)
	}

	includeOwn, _ := strconv.ParseBool(c.QueryParam("include_own"))

	locations, err := h.liveLocationUC.GetVisibleLocations(c.Request().Context(), userID, includeOwn)
	if err != nil {
		return handleAppError(c, err)
	}

	return response.List(c, locations, len(locations))
}

// ShareLocation handles POST /live-locations. 201 on first share, 200 afterwards.
func (h *LiveLocationHandler) ShareLocation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return handleAppError(c, err)
	}

	var req ShareLocationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return handleAppError(c, err)
	}

	location, created, err := h.liveLocationUC.ShareLocation(c.Request().Context(), userID, &usecase.ShareLocationInput{
		Name:      req.Name,
		Latitude:  *req.Lat,
		Longitude: *req.Lng,
		Accuracy:  req.Accuracy,
		Heading:   req.Heading,
		Speed:     req.Speed,
		IsSharing: req.IsSharing,
		ShareWith: parseRecipients(req.ShareWith),
	})
	if err != nil {
		return handleAppError(c, err)
	}

	if created {
		return response.Success(c, http.StatusCreated, location, "Live location created successfully")
	}

	return response.Success(c, http.StatusOK, location, "Live location updated successfully")
}

// UpdateSharingSettings handles PUT /live-locations
func (h *LiveLocationHandler) UpdateSharingSettings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return handleAppError(c, err)
	}

	var req SharingSettingsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return handleAppError(c, err)
	}

	location, err := h.liveLocationUC.UpdateSharingSettings(c.Request().Context(), userID, &usecase.SharingSettingsInput{
		IsSharing: *req.IsSharing,
		ShareWith: parseRecipients(req.ShareWith),
	})
	if err != nil {
		return handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, location, "Sharing settings updated successfully")
}

// StopSharing handles DELETE /live-locations. The record is kept with sharing off.
func (h *LiveLocationHandler) StopSharing(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return handleAppError(c, err)
	}

	location, err := h.liveLocationUC.StopSharing(c.Request().Context(), userID)
	if err != nil {
		return handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, location, "Location sharing stopped successfully")
}

// Stream handles GET /live-locations/stream by upgrading to a WebSocket that
// receives an event whenever a visible live location changes.
func (h *LiveLocationHandler) Stream(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return handleAppError(c, err)
	}

	if err := h.hub.Serve(c.Response(), c.Request(), userID); err != nil {
		deliverycontext.GetLoggerOrDefault(c.Request().Context(), h.logger).Warn("Live location stream rejected",
			slog.String("user_id", userID.String()),
			slog.Any("error", err),
		)
	}

	return nil
}
