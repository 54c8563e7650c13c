package handler

import (
	"net/http"
	"strconv"

	"safeguard/internal/delivery/http/response"
	"safeguard/internal/domain/geo"
	"safeguard/internal/usecase"

	"github.com/labstack/echo/v4"
)

// WeatherHandler serves current conditions and a short forecast.
type WeatherHandler struct {
	weatherUC usecase.WeatherUsecase
}

// NewWeatherHandler is the constructor for WeatherHandler
func NewWeatherHandler(weatherUC usecase.WeatherUsecase) *WeatherHandler {
	return &WeatherHandler{weatherUC: weatherUC}
}

// GetWeather handles GET /weather?lat=&lng=. Upstream failures still return 200 with fallback data.
func (h *WeatherHandler) GetWeather(c echo.Context) error {
	lat, latErr := strconv.ParseFloat(c.QueryParam("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.QueryParam("lng"), 64)
	if latErr != nil || lngErr != nil || !geo.ValidLatLng(lat, lng) {
		return response.BadRequest(c, "INVALID_COORDINATES", "Latitude and longitude required")
	}

	result := h.weatherUC.GetWeather(c.Request().Context(), lat, lng)
	report, err := result.Unwrap()
	if err != nil {
		return handleAppError(c, err)
	}

	if result.IsFallback() {
		return response.Fallback(c, report, "Failed to fetch live weather data, serving fallback.")
	}

	return response.Success(c, http.StatusOK, report, "")
}
