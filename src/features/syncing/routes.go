package syncing

import "github.com/gofiber/fiber/v2"

// RegisterRoutes registers sync-related routes
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	app.Get("/sync/status", handler.GetStatus)
	app.Post("/sync/trigger", handler.TriggerSync)

	ui := app.Group("/ui")
	ui.Get("/status", handler.RenderStatus)
}
