package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_CreatesDefaultWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	manager, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config file was not written: %v", err)
	}

	cfg := manager.Get()
	if cfg.Schedule != "*/5 * * * *" {
		t.Errorf("expected default schedule, got %q", cfg.Schedule)
	}
	if cfg.Logger.Level != "info" {
		t.Errorf("expected default log level info, got %q", cfg.Logger.Level)
	}
}

func TestLoad_ValidatesRequiredFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	// Missing destinationPath and schedule.
	contents := "sourcePath: ./source\ndatabase:\n  path: ./dirsync.db\n"
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for incomplete config")
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := `sourcePath: ./src
destinationPath: ./dst
schedule: "0 * * * *"
database:
  path: ./dirsync.db
`
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}

	manager, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	cfg := manager.Get()
	if cfg.Server.Port != 3636 {
		t.Errorf("expected default port 3636, got %d", cfg.Server.Port)
	}
	if cfg.History.Keep != 500 {
		t.Errorf("expected default history retention 500, got %d", cfg.History.Keep)
	}
	if cfg.Watch.DebounceSecs != 5 {
		t.Errorf("expected default debounce 5s, got %d", cfg.Watch.DebounceSecs)
	}
}

func TestManager_CheckPathsFailsOnMissingSource(t *testing.T) {
	dir := t.TempDir()
	manager := NewManager(&Config{
		SourcePath:      filepath.Join(dir, "does-not-exist"),
		DestinationPath: filepath.Join(dir, "dst"),
	})

	if err := manager.CheckPaths(); err == nil {
		t.Fatal("expected error for missing source directory")
	}
}

func TestManager_CheckPathsCreatesDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	if err := os.MkdirAll(src, 0755); err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(dir, "dst", "nested")

	manager := NewManager(&Config{SourcePath: src, DestinationPath: dst})
	if err := manager.CheckPaths(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	info, err := os.Stat(dst)
	if err != nil || !info.IsDir() {
		t.Fatalf("destination directory was not created: %v", err)
	}
}
