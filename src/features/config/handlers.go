package config

import (
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Handler handles HTTP requests for the configuration feature
type Handler struct {
	manager *Manager
}

// NewHandler creates a new config handler
func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

// GetConfig returns the current configuration with secrets redacted
func (h *Handler) GetConfig(c *fiber.Ctx) error {
	slog.Debug("GetConfig handler called")
	c.Set("Content-Type", "application/json")
	return c.SendString(h.manager.GetJSON())
}

// GetConfigYAML returns the current configuration as YAML
func (h *Handler) GetConfigYAML(c *fiber.Ctx) error {
	slog.Debug("GetConfigYAML handler called")
	c.Set("Content-Type", "text/yaml")
	return c.SendString(h.manager.GetYAML())
}

// UpdateSettings replaces the runtime configuration from a JSON body.
// Server settings are preserved from the current config, no sense to be
// changed on runtime; a schedule change takes effect after a restart.
func (h *Handler) UpdateSettings(c *fiber.Ctx) error {
	slog.Info("Configuration update requested")

	currentConfig := h.manager.Get()
	newConfig := new(Config)
	if err := c.BodyParser(newConfig); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	newConfig.Server = currentConfig.Server

	if err := validator.New().Struct(newConfig); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	applyDefaults(newConfig)

	h.manager.Update(newConfig)
	slog.Info("Configuration updated in memory")

	// Try to save to file (optional - may fail in containerized environments)
	if err := h.manager.Save("config.yaml"); err != nil {
		slog.Warn("failed to save config to file (this is normal in containerized environments)", "error", err)
	}

	return c.JSON(fiber.Map{"status": "configuration updated"})
}
