package history

import "github.com/gofiber/fiber/v2"

// RegisterRoutes registers history-related routes
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)
	app.Get("/history", handler.ListRuns)

	ui := app.Group("/ui")
	ui.Get("/history", handler.RenderHistory)
}
