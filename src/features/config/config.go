package config

// Config holds the application configuration.
type Config struct {
	SourcePath      string   `yaml:"sourcePath" json:"sourcePath" validate:"required"`
	DestinationPath string   `yaml:"destinationPath" json:"destinationPath" validate:"required"`
	Schedule        string   `yaml:"schedule" json:"schedule" validate:"required"`
	Logger          Logger   `yaml:"logger" json:"logger"`
	Server          Server   `yaml:"server" json:"server"`
	Database        Database `yaml:"database" json:"database"`
	Jobs            Jobs     `yaml:"jobs" json:"jobs"`
	History         History  `yaml:"history" json:"history"`
	Watch           Watch    `yaml:"watch" json:"watch"`
	Telegram        Telegram `yaml:"telegram" json:"telegram"`
}

// Logger holds the configuration for the app logging
type Logger struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	// File is an optional path; when set, log lines go to the file as
	// well as stderr.
	File string `yaml:"file,omitempty" json:"file,omitempty"`
}

// Server holds the configuration for the Fiber server
type Server struct {
	Enabled     bool   `yaml:"enabled" json:"enabled"`
	PrintRoutes bool   `yaml:"show_routes" json:"show_routes"`
	Port        uint32 `yaml:"port" json:"port"`
}

// Database holds the configuration for the run history database
type Database struct {
	Path string `yaml:"path" json:"path" validate:"required"`
}

// Jobs holds the configuration for the background job service
type Jobs struct {
	Log      bool          `yaml:"log" json:"log"`
	LogPath  string        `yaml:"log_path" json:"log_path"`
	Webhooks WebhookConfig `yaml:"webhooks" json:"webhooks"`
}

// WebhookConfig configures a command executed when jobs finish
type WebhookConfig struct {
	Enabled  bool     `yaml:"enabled" json:"enabled"`
	JobTypes []string `yaml:"job_types" json:"job_types"`
	Command  string   `yaml:"command" json:"command"`
}

// History holds the configuration for run history retention
type History struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Keep is how many finished runs to retain; older records are pruned.
	Keep int `yaml:"keep" json:"keep"`
}

// Watch enables syncing on source changes between scheduled runs
type Watch struct {
	Enabled      bool `yaml:"enabled" json:"enabled"`
	DebounceSecs int  `yaml:"debounce_seconds" json:"debounce_seconds"`
}

// Telegram holds the bot configuration
type Telegram struct {
	Enabled      bool     `yaml:"enabled" json:"enabled"`
	Token        string   `yaml:"token" json:"-"`
	AllowedUsers []string `yaml:"allowedUsers" json:"allowedUsers"`
	BotHandle    string   `yaml:"bot_handle" json:"bot_handle"`
}
