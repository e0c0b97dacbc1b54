package config

import (
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(old) })
}

func newTestApp(manager *Manager) *fiber.App {
	app := fiber.New()
	RegisterRoutes(app, manager)
	return app
}

func baseConfig() *Config {
	return &Config{
		SourcePath:      "./src",
		DestinationPath: "./dst",
		Schedule:        "* * * * *",
		Database:        Database{Path: "./dirsync.db"},
		Server:          Server{Enabled: true, Port: 3636},
	}
}

func TestUpdateSettings_ReplacesConfigAndSavesFile(t *testing.T) {
	chdir(t, t.TempDir())
	manager := NewManager(baseConfig())
	app := newTestApp(manager)

	body := `{
		"sourcePath": "./new-src",
		"destinationPath": "./new-dst",
		"schedule": "0 * * * *",
		"database": {"path": "./dirsync.db"},
		"server": {"port": 9999}
	}`
	req := httptest.NewRequest("PUT", "/config", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	cfg := manager.Get()
	if cfg.SourcePath != "./new-src" || cfg.DestinationPath != "./new-dst" {
		t.Errorf("expected updated paths, got %q and %q", cfg.SourcePath, cfg.DestinationPath)
	}
	if cfg.Schedule != "0 * * * *" {
		t.Errorf("expected updated schedule, got %q", cfg.Schedule)
	}
	if cfg.Server.Port != 3636 {
		t.Errorf("expected server settings preserved, got port %d", cfg.Server.Port)
	}
	if cfg.History.Keep != 500 {
		t.Errorf("expected defaults applied on update, got history keep %d", cfg.History.Keep)
	}
	if _, err := os.Stat("config.yaml"); err != nil {
		t.Errorf("expected updated config saved to file: %v", err)
	}
}

func TestUpdateSettings_RejectsIncompleteConfig(t *testing.T) {
	chdir(t, t.TempDir())
	manager := NewManager(baseConfig())
	app := newTestApp(manager)

	// Missing destinationPath and schedule.
	body := `{"sourcePath": "./new-src", "database": {"path": "./dirsync.db"}}`
	req := httptest.NewRequest("PUT", "/config", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	if manager.Get().SourcePath != "./src" {
		t.Error("expected config to be left untouched after a rejected update")
	}
}
