package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/kuyajp123/Rescuenect-sub003/internal/service"
)

// WeatherHandler serves the cached barangay weather snapshot.
type WeatherHandler struct {
	weatherService *service.WeatherService
	logger         *zap.Logger
}

func NewWeatherHandler(weatherService *service.WeatherService, logger *zap.Logger) *WeatherHandler {
	return &WeatherHandler{weatherService: weatherService, logger: logger}
}

// GetCurrent handles GET /weather/current.
func (h *WeatherHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	snap, err := h.weatherService.GetCurrent(r.Context())
	if err != nil {
		h.logger.Error("weather fetch failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "weather service unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": snap})
}
