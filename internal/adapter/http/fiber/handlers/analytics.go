package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wattscope/wattscope/internal/domain"
	"github.com/wattscope/wattscope/internal/service/pipeline"
	"github.com/wattscope/wattscope/internal/service/tariff"
)

type AnalyticsHandler struct {
	pipeline *pipeline.Service
	tariff   *tariff.Service
	log      *zap.Logger
}

func NewAnalyticsHandler(pipeline *pipeline.Service, tariff *tariff.Service, log *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		pipeline: pipeline,
		tariff:   tariff,
		log:      log,
	}
}

func (h *AnalyticsHandler) Peak(c *fiber.Ctx) error {
	snap := h.pipeline.Snapshot()
	return c.JSON(snap.Peak)
}

func (h *AnalyticsHandler) Bill(c *fiber.Ctx) error {
	raw := c.Query("units")
	if raw == "" {
		return domain.NewInvalidInput("units", "", "query parameter is required")
	}

	units, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return domain.NewInvalidInput("units", raw, "must be a number")
	}

	bill, err := h.tariff.ComputeBill(units)
	if err != nil {
		return err
	}
	return c.JSON(bill)
}

func (h *AnalyticsHandler) Forecast(c *fiber.Ctx) error {
	days := c.QueryInt("days", 30)

	result, err := h.pipeline.Forecast(c.Context(), days)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (h *AnalyticsHandler) Suggestions(c *fiber.Ctx) error {
	suggestions, weather, err := h.pipeline.Suggestions(c.Context())
	if err != nil {
		return err
	}
	if suggestions == nil {
		suggestions = []domain.Suggestion{}
	}

	response := fiber.Map{"suggestions": suggestions}
	if weather != nil {
		response["weather"] = weather
	} else {
		response["weather_note"] = "weather unavailable, weather-based tips omitted"
	}
	return c.JSON(response)
}

func (h *AnalyticsHandler) Anomalies(c *fiber.Ctx) error {
	snap := h.pipeline.Snapshot()
	return c.JSON(snap.Anomalies)
}
