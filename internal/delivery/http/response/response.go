// Package response writes the JSON envelopes shared by every endpoint.
package response

import (
	"net/http"

	domainerrors "safeguard/internal/domain/errors"

	"github.com/labstack/echo/v4"
)

// Response is the success envelope. Fallback marks degraded data, with Error explaining why.
type Response struct {
	Success  bool   `json:"success"`
	Data     any    `json:"data"`
	Count    *int   `json:"count,omitempty"`
	Message  string `json:"message,omitempty"`
	Fallback bool   `json:"fallback,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Success successful response
func Success(c echo.Context, statusCode int, data any, message string) error {
	return c.JSON(statusCode, Response{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// List returns a collection together with its size.
func List(c echo.Context, data any, count int) error {
	return c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
		Count:   &count,
	})
}

// Fallback returns degraded data with HTTP 200 so the dashboard still renders.
func Fallback(c echo.Context, data any, note string) error {
	return c.JSON(http.StatusOK, Response{
		Success:  true,
		Data:     data,
		Fallback: true,
		Error:    note,
	})
}

// Error error response
func Error(c echo.Context, statusCode int, errorCode, message string) error {
	if message == "" {
		message = http.StatusText(statusCode)
	}

	return c.JSON(statusCode, domainerrors.ErrorResponse{
		Success: false,
		Error:   message,
		Code:    errorCode,
	})
}

// AppError renders a domain error. Validation errors list every violation.
func AppError(c echo.Context, appErr domainerrors.AppError) error {
	if verr, ok := appErr.(*domainerrors.ValidationError); ok {
		return c.JSON(http.StatusBadRequest, domainerrors.ErrorResponse{
			Success: false,
			Errors:  verr.Errors,
			Code:    verr.ErrorCode(),
		})
	}

	return Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message())
}

// BadRequest 400 error
func BadRequest(c echo.Context, errorCode, message string) error {
	return Error(c, http.StatusBadRequest, errorCode, message)
}
