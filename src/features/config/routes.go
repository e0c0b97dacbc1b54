package config

import "github.com/gofiber/fiber/v2"

// RegisterRoutes registers config-related routes
func RegisterRoutes(app *fiber.App, manager *Manager) {
	handler := NewHandler(manager)
	cfg := app.Group("/config")
	cfg.Get("/", handler.GetConfig)
	cfg.Get("/yaml", handler.GetConfigYAML)
	cfg.Put("/", handler.UpdateSettings)
}
