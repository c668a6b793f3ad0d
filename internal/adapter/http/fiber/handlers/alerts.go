package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wattscope/wattscope/internal/domain"
	"github.com/wattscope/wattscope/internal/service/alert"
)

type AlertsHandler struct {
	alerts *alert.Service
	log    *zap.Logger
}

func NewAlertsHandler(alerts *alert.Service, log *zap.Logger) *AlertsHandler {
	return &AlertsHandler{
		alerts: alerts,
		log:    log,
	}
}

func (h *AlertsHandler) ListSettings(c *fiber.Ctx) error {
	settings, err := h.alerts.ListSettings(c.Context())
	if err != nil {
		return err
	}
	if settings == nil {
		settings = []domain.AlertSetting{}
	}
	return c.JSON(settings)
}

func (h *AlertsHandler) CreateSetting(c *fiber.Ctx) error {
	var setting domain.AlertSetting
	if err := c.BodyParser(&setting); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	if err := h.alerts.CreateSetting(c.Context(), &setting); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(setting)
}

func (h *AlertsHandler) DeleteSetting(c *fiber.Ctx) error {
	if err := h.alerts.DeleteSetting(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AlertsHandler) ListRecipients(c *fiber.Ctx) error {
	recipients, err := h.alerts.ListRecipients(c.Context())
	if err != nil {
		return err
	}
	if recipients == nil {
		recipients = []domain.EmailRecipient{}
	}
	return c.JSON(recipients)
}

func (h *AlertsHandler) CreateRecipient(c *fiber.Ctx) error {
	var recipient domain.EmailRecipient
	if err := c.BodyParser(&recipient); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	if err := h.alerts.CreateRecipient(c.Context(), &recipient); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(recipient)
}

func (h *AlertsHandler) UpdateRecipient(c *fiber.Ctx) error {
	var recipient domain.EmailRecipient
	if err := c.BodyParser(&recipient); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	recipient.ID = c.Params("id")

	if err := h.alerts.UpdateRecipient(c.Context(), &recipient); err != nil {
		return err
	}
	return c.JSON(recipient)
}

func (h *AlertsHandler) DeleteRecipient(c *fiber.Ctx) error {
	if err := h.alerts.DeleteRecipient(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AlertsHandler) History(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	perPage := c.QueryInt("per_page", 20)

	events, total, err := h.alerts.History(c.Context(), page, perPage)
	if err != nil {
		return err
	}
	if events == nil {
		events = []domain.AlertEvent{}
	}

	return c.JSON(fiber.Map{
		"events":   events,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

func (h *AlertsHandler) SendTest(c *fiber.Ctx) error {
	sent, err := h.alerts.SendTestAlert(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"sent": sent})
}
