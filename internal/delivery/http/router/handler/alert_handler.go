package handler

import (
	"log/slog"
	"math"
	"net/http"

	"safeguard/internal/delivery/http/response"
	domainerrors "safeguard/internal/domain/errors"
	"safeguard/internal/domain/geo"
	"safeguard/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// AlertHandlerParams holds dependencies for AlertHandler, injected by Fx.
type AlertHandlerParams struct {
	fx.In

	AlertUC usecase.AlertUsecase
	Logger  *slog.Logger
}

// AlertHandler serves the hazard alert feed.
type AlertHandler struct {
	alertUC usecase.AlertUsecase
	logger  *slog.Logger
}

// NewAlertHandler is the constructor for AlertHandler
func NewAlertHandler(params AlertHandlerParams) *AlertHandler {
	return &AlertHandler{
		alertUC: params.AlertUC,
		logger:  params.Logger,
	}
}

// ListAlerts handles GET /alerts. When lat, lng and radius are all present only
// alerts whose area overlaps that circle are returned.
func (h *AlertHandler) ListAlerts(c echo.Context) error {
	query, err := parseAlertQuery(c)
	if err != nil {
		return handleAppError(c, err)
	}

	list, err := h.alertUC.ListAlerts(c.Request().Context(), query)
	if err != nil {
		return handleAppError(c, err)
	}

	if list.Degraded {
		return response.Fallback(c, list.Alerts, "Live alert feed unavailable, serving partial data.")
	}

	return response.Success(c, http.StatusOK, list.Alerts, "")
}

func parseAlertQuery(c echo.Context) (usecase.AlertQuery, error) {
	var query usecase.AlertQuery
	if c.QueryParam("lat") == "" || c.QueryParam("lng") == "" || c.QueryParam("radius") == "" {
		return query, nil
	}

	verr := domainerrors.NewValidationError()
	errs := echo.QueryParamsBinder(c).
		Float64("lat", &query.Lat).
		Float64("lng", &query.Lng).
		Float64("radius", &query.RadiusKm).
		BindErrors()
	for _, err := range errs {
		var bindErr *echo.BindingError
		if errors.As(err, &bindErr) {
			verr.Add(bindErr.Field + " must be a number")
		} else {
			verr.Add(err.Error())
		}
	}
	if len(errs) == 0 {
		if !geo.ValidLatLng(query.Lat, 0) {
			verr.Add("lat must be between -90 and 90")
		}
		if !geo.ValidLatLng(0, query.Lng) {
			verr.Add("lng must be between -180 and 180")
		}
		if query.RadiusKm < 0 || math.IsNaN(query.RadiusKm) {
			verr.Add("radius must be greater than or equal to 0")
		}
	}
	if err := verr.OrNil(); err != nil {
		return query, err
	}
	query.Near = true

	return query, nil
}
