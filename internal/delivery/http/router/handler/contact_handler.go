package handler

import (
	"net/http"

	"safeguard/internal/delivery/http/response"
	"safeguard/internal/domain/entity"
	domainerrors "safeguard/internal/domain/errors"
	"safeguard/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ContactHandler serves the caller's contact book.
type ContactHandler struct {
	contactUC usecase.ContactUsecase
}

// NewContactHandler is the constructor for ContactHandler
func NewContactHandler(contactUC usecase.ContactUsecase) *ContactHandler {
	return &ContactHandler{contactUC: contactUC}
}

// ContactRequest creates or replaces a contact. Without lat/lng the address is geocoded.
type ContactRequest struct {
	Name         string   `json:"name" validate:"required,notblank,max=100"`
	Relationship string   `json:"relationship" validate:"required,notblank,max=50"`
	Phone        *string  `json:"phone" validate:"omitnil,max=30"`
	Email        *string  `json:"email" validate:"omitnil,email"`
	Address      string   `json:"address" validate:"required,notblank,max=255"`
	Lat          *float64 `json:"lat" validate:"omitnil,latitude"`
	Lng          *float64 `json:"lng" validate:"omitnil,longitude"`
	Status       string   `json:"status" validate:"omitempty,oneof=safe caution danger"`
	Description  *string  `json:"description" validate:"omitnil,max=500"`
}

func (r *ContactRequest) input() *usecase.ContactInput {
	return &usecase.ContactInput{
		Name:         r.Name,
		Relationship: r.Relationship,
		Phone:        r.Phone,
		Email:        r.Email,
		Address:      r.Address,
		Latitude:     r.Lat,
		Longitude:    r.Lng,
		Status:       entity.ContactStatus(r.Status),
		Description:  r.Description,
	}
}

func (r *ContactRequest) checkCoordinates(verr *domainerrors.ValidationError) {
	if (r.Lat == nil) != (r.Lng == nil) {
		verr.Add("lat and lng must be provided together")
	}
}

// ListContacts handles GET /contacts
func (h *ContactHandler) ListContacts(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return handleAppError(c, err)
	}

	contacts, err := h.contactUC.ListContacts(c.Request().Context(), userID)
	if err != nil {
		return handleAppError(c, err)
	}

	return response.List(c, contacts, len(contacts))
}

// AddContact handles POST /contacts
func (h *ContactHandler) AddContact(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return handleAppError(c, err)
	}

	var req ContactRequest
	if err := bindAndValidate(c, &req, req.checkCoordinates); err != nil {
		return handleAppError(c, err)
	}

	contact, err := h.contactUC.AddContact(c.Request().Context(), userID, req.input())
	if err != nil {
		return handleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, contact, "Contact added successfully")
}

// UpdateContact handles PUT /contacts?id=
func (h *ContactHandler) UpdateContact(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return handleAppError(c, err)
	}

	id, err := uuid.Parse(c.QueryParam("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Valid contact ID is required")
	}

	var req ContactRequest
	if err := bindAndValidate(c, &req, req.checkCoordinates); err != nil {
		return handleAppError(c, err)
	}

	contact, err := h.contactUC.UpdateContact(c.Request().Context(), userID, id, req.input())
	if err != nil {
		return handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, contact, "Contact updated successfully")
}

// DeleteContact handles DELETE /contacts?id=
func (h *ContactHandler) DeleteContact(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return handleAppError(c, err)
	}

	id, err := uuid.Parse(c.QueryParam("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Valid contact ID is required")
	}

	if err := h.contactUC.DeleteContact(c.Request().Context(), userID, id); err != nil {
		return handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, nil, "Contact deleted successfully")
}
