package handler

import (
	"net/http"
	"strconv"

	"safeguard/internal/delivery/http/response"
	"safeguard/internal/domain/entity"
	domainerrors "safeguard/internal/domain/errors"
	"safeguard/internal/domain/repository"
	"safeguard/internal/usecase"

	"github.com/labstack/echo/v4"
)

// TrackedLocationHandler serves the people and properties a user watches.
type TrackedLocationHandler struct {
	trackedLocationUC usecase.TrackedLocationUsecase
}

// NewTrackedLocationHandler is the constructor for TrackedLocationHandler
func NewTrackedLocationHandler(trackedLocationUC usecase.TrackedLocationUsecase) *TrackedLocationHandler {
	return &TrackedLocationHandler{trackedLocationUC: trackedLocationUC}
}

// AddTrackedLocationRequest creates a tracked location.
type AddTrackedLocationRequest struct {
	Name     string   `json:"name" validate:"required,notblank,max=100"`
	Lat      *float64 `json:"lat" validate:"required,latitude"`
	Lng      *float64 `json:"lng" validate:"required,longitude"`
	Type     string   `json:"type" validate:"required,oneof=person property"`
	Status   string   `json:"status" validate:"omitempty,oneof=safe at_risk unknown"`
	Location string   `json:"location" validate:"required,notblank,max=255"`
}

// UpdateTrackedLocationRequest is a partial update addressed by id.
type UpdateTrackedLocationRequest struct {
	ID       int64    `json:"id" validate:"required,gt=0"`
	Name     *string  `json:"name" validate:"omitnil,notblank,max=100"`
	Lat      *float64 `json:"lat" validate:"omitnil,latitude"`
	Lng      *float64 `json:"lng" validate:"omitnil,longitude"`
	Type     *string  `json:"type" validate:"omitnil,oneof=person property"`
	Status   *string  `json:"status" validate:"omitnil,oneof=safe at_risk unknown"`
	Location *string  `json:"location" validate:"omitnil,notblank,max=255"`
}

// UpdateTrackedStatusRequest is the quick status toggle.
type UpdateTrackedStatusRequest struct {
	ID     int64  `json:"id" validate:"required,gt=0"`
	Status string `json:"status" validate:"required,oneof=safe at_risk unknown"`
}

// ListLocations handles GET /locations?type=&status=
func (h *TrackedLocationHandler) ListLocations(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return handleAppError(c, err)
	}

	filter := repository.TrackedLocationFilter{
		Type:   entity.TrackedLocationType(c.QueryParam("type")),
		Status: entity.TrackedLocationStatus(c.QueryParam("status")),
	}

	locations, err := h.trackedLocationUC.ListLocations(c.Request().Context(), userID, filter)
	if err != nil {
		return handleAppError(c, err)
	}

	return response.List(c, locations, len(locations))
}

// AddLocation handles POST /locations
func (h *TrackedLocationHandler) AddLocation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return handleAppError(c, err)
	}

	var req AddTrackedLocationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return handleAppError(c, err)
	}

	location, err := h.trackedLocationUC.AddLocation(c.Request().Context(), userID, &usecase.AddTrackedLocationInput{
		Name:      req.Name,
		Latitude:  *req.Lat,
		Longitude: *req.Lng,
		Type:      entity.TrackedLocationType(req.Type),
		Status:    entity.TrackedLocationStatus(req.Status),
		Location:  req.Location,
	})
	if err != nil {
		return handleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, location, "Location added successfully")
}

// UpdateLocation handles PUT /locations
func (h *TrackedLocationHandler) UpdateLocation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return handleAppError(c, err)
	}

	var req UpdateTrackedLocationRequest
	if err := bindAndValidate(c, &req, func(verr *domainerrors.ValidationError) {
		if (req.Lat == nil) != (req.Lng == nil) {
			verr.Add("lat and lng must be provided together")
		}
	}); err != nil {
		return handleAppError(c, err)
	}

	patch := repository.TrackedLocationPatch{
		Name:      req.Name,
		Latitude:  req.Lat,
		Longitude: req.Lng,
		Location:  req.Location,
	}
	if req.Type != nil {
		t := entity.TrackedLocationType(*req.Type)
		patch.Type = &t
	}
	if req.Status != nil {
		s := entity.TrackedLocationStatus(*req.Status)
		patch.Status = &s
	}

	location, err := h.trackedLocationUC.UpdateLocation(c.Request().Context(), userID, req.ID, patch)
	if err != nil {
		return handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, location, "Location updated successfully")
}

// UpdateStatus handles PATCH /locations
func (h *TrackedLocationHandler) UpdateStatus(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return handleAppError(c, err)
	}

	var req UpdateTrackedStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return handleAppError(c, err)
	}

	location, err := h.trackedLocationUC.UpdateStatus(c.Request().Context(), userID, req.ID, entity.TrackedLocationStatus(req.Status))
	if err != nil {
		return handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, location, "Status updated successfully")
}

// DeleteLocation handles DELETE /locations?id=
func (h *TrackedLocationHandler) DeleteLocation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return handleAppError(c, err)
	}

	id, err := strconv.ParseInt(c.QueryParam("id"), 10, 64)
	if err != nil || id <= 0 {
		return response.BadRequest(c, "INVALID_ID", "Valid location ID is required")
	}

	if err := h.trackedLocationUC.DeleteLocation(c.Request().Context(), userID, id); err != nil {
		return handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, nil, "Location deleted successfully")
}
