// Package handler implements the HTTP endpoints.
package handler

import (
	"net/http"

	deliverycontext "safeguard/internal/delivery/context"
	"safeguard/internal/delivery/http/response"
	domainerrors "safeguard/internal/domain/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// getUserID returns the caller set by the auth middleware.
func getUserID(c echo.Context) (uuid.UUID, error) {
	userID, ok := deliverycontext.GetUserID(c)
	if !ok {
		return uuid.Nil, domainerrors.ErrUnauthorized
	}

	return userID, nil
}

// bindAndValidate decodes the body into req and runs its validate tags.
// extra checks run even when tag validation fails so all violations are reported together.
func bindAndValidate(c echo.Context, req any, extra ...func(*domainerrors.ValidationError)) error {
	if err := c.Bind(req); err != nil {
		return domainerrors.ErrInvalidRequestBody.WithDetails(err.Error())
	}

	verr := domainerrors.NewValidationError()
	if err := c.Validate(req); err != nil {
		if !errors.As(err, &verr) {
			return errors.WithStack(err)
		}
	}
	for _, check := range extra {
		check(verr)
	}

	return verr.OrNil()
}

// handleAppError renders domain errors; anything else goes to the central error handler.
func handleAppError(c echo.Context, err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) && appErr.HTTPCode() < http.StatusInternalServerError {
		return response.AppError(c, appErr)
	}

	return errors.WithStack(err)
}

// parseRecipients converts validated uuid strings.
func parseRecipients(raw []string) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		if id, err := uuid.Parse(s); err == nil {
			ids = append(ids, id)
		}
	}

	return ids
}

// HealthCheck reports liveness.
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
