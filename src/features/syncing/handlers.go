package syncing

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Handler handles HTTP requests for directory syncing
type Handler struct {
	service *Service
}

// NewHandler creates a new sync handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetStatus returns the current sync configuration and state
func (h *Handler) GetStatus(c *fiber.Ctx) error {
	slog.Debug("GetStatus handler called")
	return c.JSON(h.service.Status())
}

// TriggerSync manually starts a sync run
func (h *Handler) TriggerSync(c *fiber.Ctx) error {
	slog.Debug("TriggerSync handler called")
	jobID, err := h.service.StartSyncJob(TriggerManual)
	if err != nil {
		if errors.Is(err, ErrSyncInProgress) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		slog.Error("Failed to start sync job", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	slog.Info("TriggerSync: sync job started", "jobID", jobID)
	return c.JSON(fiber.Map{"job_id": jobID})
}

// RenderStatus renders the status page
func (h *Handler) RenderStatus(c *fiber.Ctx) error {
	return c.Render("status", fiber.Map{
		"Status": h.service.Status(),
	})
}
