package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wattscope/wattscope/internal/domain"
	"github.com/wattscope/wattscope/internal/service/pipeline"
)

type ReadingsHandler struct {
	pipeline *pipeline.Service
	log      *zap.Logger
}

func NewReadingsHandler(pipeline *pipeline.Service, log *zap.Logger) *ReadingsHandler {
	return &ReadingsHandler{
		pipeline: pipeline,
		log:      log,
	}
}

// ingestRequest is the wrapped payload variant. A bare JSON array of
// readings is accepted as well.
type ingestRequest struct {
	Readings []domain.Reading `json:"readings"`
	Result   []domain.Reading `json:"result"`
	Replace  bool             `json:"replace"`
}

func (h *ReadingsHandler) Ingest(c *fiber.Ctx) error {
	body := c.Body()

	var batch []domain.Reading
	replace := c.QueryBool("replace")

	if err := json.Unmarshal(body, &batch); err != nil {
		var req ingestRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
		}
		batch = req.Readings
		if len(batch) == 0 {
			batch = req.Result
		}
		replace = replace || req.Replace
	}

	if len(batch) == 0 {
		return domain.NewInvalidInput("readings", "", "batch must not be empty")
	}

	snap, err := h.pipeline.Ingest(c.Context(), batch, replace)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"accepted":   len(batch),
		"generation": snap.Generation,
		"devices":    len(snap.Aggregates),
	})
}
