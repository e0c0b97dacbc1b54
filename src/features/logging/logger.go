package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/polaMikhail/directory-sync/src/features/config"
)

// SetupLogger builds the process-wide slog logger from the logger config.
// When a log file is configured, lines go to both stderr and the file so
// an unattended run leaves a trail and an interactive run stays readable.
func SetupLogger(cfg *config.Manager) *slog.Logger {
	formatter := formatterFor(cfg.Get().Logger.Format)

	level := log.InfoLevel
	switch cfg.Get().Logger.Level {
	case "debug":
		level = log.DebugLevel
	case "info":
		level = log.InfoLevel
	case "warn":
		level = log.WarnLevel
	case "error":
		level = log.ErrorLevel
	}

	var sink io.Writer = os.Stderr
	if path := cfg.Get().Logger.File; path != "" {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Error("Failed to open log file, logging to stderr only", "path", path, "error", err)
		} else {
			sink = io.MultiWriter(os.Stderr, file)
		}
	}

	handler := log.NewWithOptions(sink, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "DirSync",
		Formatter:       formatter,
		Level:           level,
	})

	logger := slog.New(handler)
	logger.Info("Logger initialized", "level", cfg.Get().Logger.Level, "format", cfg.Get().Logger.Format)
	return logger
}

// formatterFor maps a configured format name to a formatter. Anything
// unrecognized falls back to text, the documented default.
func formatterFor(format string) log.Formatter {
	switch format {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}
