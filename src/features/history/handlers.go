package history

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Handler handles HTTP requests for the run history
type Handler struct {
	service *Service
}

// NewHandler creates a new history handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListRuns returns recent runs as JSON
func (h *Handler) ListRuns(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	slog.Debug("ListRuns handler called", "limit", limit)

	runs, err := h.service.Recent(c.Context(), limit)
	if err != nil {
		slog.Error("Failed to list runs", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(runs)
}

// RenderHistory renders the run history page
func (h *Handler) RenderHistory(c *fiber.Ctx) error {
	runs, err := h.service.Recent(c.Context(), 50)
	if err != nil {
		slog.Error("Failed to render history", "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
	}
	return c.Render("history", fiber.Map{
		"Runs": runs,
	})
}
