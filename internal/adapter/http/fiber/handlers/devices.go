package handlers

import (
	"sort"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wattscope/wattscope/internal/domain"
	"github.com/wattscope/wattscope/internal/service/alert"
	"github.com/wattscope/wattscope/internal/service/pipeline"
)

type DevicesHandler struct {
	pipeline *pipeline.Service
	alerts   *alert.Service
	log      *zap.Logger
}

func NewDevicesHandler(pipeline *pipeline.Service, alerts *alert.Service, log *zap.Logger) *DevicesHandler {
	return &DevicesHandler{
		pipeline: pipeline,
		alerts:   alerts,
		log:      log,
	}
}

func (h *DevicesHandler) List(c *fiber.Ctx) error {
	snap := h.pipeline.Snapshot()
	return c.JSON(fiber.Map{
		"generation":       snap.Generation,
		"total_energy_kwh": snap.TotalEnergy,
		"devices":          snap.Aggregates,
	})
}

// availableDevice is the light device listing for pickers.
type availableDevice struct {
	Name         string            `json:"name"`
	Kind         domain.DeviceKind `json:"kind"`
	Icon         string            `json:"icon"`
	Color        string            `json:"color"`
	IsActive     bool              `json:"is_active"`
	CurrentPower float64           `json:"current_power"`
}

func (h *DevicesHandler) Available(c *fiber.Ctx) error {
	snap := h.pipeline.Snapshot()

	devices := make([]availableDevice, 0, len(snap.Aggregates))
	for _, agg := range snap.Aggregates {
		devices = append(devices, availableDevice{
			Name:         agg.Name,
			Kind:         agg.Kind,
			Icon:         agg.Icon,
			Color:        agg.Color,
			IsActive:     agg.IsActive,
			CurrentPower: agg.CurrentPowerW,
		})
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].Name < devices[j].Name })

	return c.JSON(devices)
}

func (h *DevicesHandler) Get(c *fiber.Ctx) error {
	name := c.Params("name")
	snap := h.pipeline.Snapshot()

	agg, ok := snap.Aggregates[name]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Device not found"})
	}

	agg.Suggestions = h.pipeline.DeviceSuggestions(agg)

	detail := fiber.Map{
		"device":  agg,
		"anomaly": snap.Anomalies[name],
	}

	days := c.QueryInt("forecast_days", 7)
	forecast, err := h.pipeline.DeviceForecast(c.Context(), name, days)
	if err != nil {
		if domain.IsInvalidInput(err) {
			return err
		}
		h.log.Warn("device forecast failed", zap.String("device", name), zap.Error(err))
	} else {
		detail["forecast"] = forecast
	}

	return c.JSON(detail)
}

func (h *DevicesHandler) Thresholds(c *fiber.Ctx) error {
	thresholds, err := h.alerts.DeviceThresholds(c.Context())
	if err != nil {
		return err
	}
	if thresholds == nil {
		thresholds = []alert.DeviceThreshold{}
	}
	return c.JSON(thresholds)
}
