package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wattscope/wattscope/internal/ports"
)

type WeatherHandler struct {
	weather ports.WeatherService
	city    string
	log     *zap.Logger
}

func NewWeatherHandler(weather ports.WeatherService, defaultCity string, log *zap.Logger) *WeatherHandler {
	return &WeatherHandler{
		weather: weather,
		city:    defaultCity,
		log:     log,
	}
}

func (h *WeatherHandler) Get(c *fiber.Ctx) error {
	city := c.Query("city", h.city)

	report, err := h.weather.Current(c.Context(), city)
	if err != nil {
		return err
	}
	return c.JSON(report)
}
