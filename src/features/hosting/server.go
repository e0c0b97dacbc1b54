package hosting

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/polaMikhail/directory-sync/src/features/config"
	"github.com/polaMikhail/directory-sync/src/features/history"
	"github.com/polaMikhail/directory-sync/src/features/jobs"
	"github.com/polaMikhail/directory-sync/src/features/metrics"
	"github.com/polaMikhail/directory-sync/src/features/scheduling"
	"github.com/polaMikhail/directory-sync/src/features/syncing"
)

// Server is the HTTP server for the application.
type Server struct {
	app  *fiber.App
	port uint32
}

// NewServer creates a new HTTP server.
func NewServer(cfg *config.Manager, syncService *syncing.Service, jobService *jobs.Service, historyService *history.Service, scheduler *scheduling.Scheduler, gatherer prometheus.Gatherer) *Server {
	engine := html.New("./views", ".html")
	engine.Debug(cfg.Get().Logger.Level == "debug")
	engine.AddFunc("timeFormat", func(t interface{ Format(string) string }) string {
		return t.Format("2006-01-02 15:04:05")
	})

	app := fiber.New(fiber.Config{
		Views: engine,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Error("Internal Server Error", "error", err)
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		},
		AppName:               "DirSync",
		DisableStartupMessage: true,
		EnablePrintRoutes:     cfg.Get().Server.PrintRoutes,
	})

	app.Use(RequestLogMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	app.Get("/scheduler", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"state":   string(scheduler.State()),
			"lastRun": scheduler.LastRun(),
			"nextRun": scheduler.NextRun(),
		})
	})

	syncing.RegisterRoutes(app, syncService)
	jobs.RegisterRoutes(app, jobService)
	history.RegisterRoutes(app, historyService)
	config.RegisterRoutes(app, cfg)
	metrics.RegisterRoutes(app, gatherer)

	return &Server{app: app, port: cfg.Get().Server.Port}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.app.Listen(":" + fmt.Sprint(s.port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
