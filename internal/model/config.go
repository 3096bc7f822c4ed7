package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// APIConfig holds settings for the remote task service.
type APIConfig struct {
	// BaseURL is the root of the REST API, including any path prefix
	// (e.g., http://localhost:8080/api).
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds a single HTTP exchange.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	PageSize        int   `mapstructure:"page_size" yaml:"page_size"`
	PageSizeOptions []int `mapstructure:"page_size_options" yaml:"page_size_options"`
}

// StorageConfig locates the persistent key-value stores.
type StorageConfig struct {
	// DBPath is the SQLite file holding non-secret preferences.
	DBPath string `mapstructure:"db_path" yaml:"db_path"`

	// KeyringDir is used by the encrypted-file keyring backend.
	KeyringDir string `mapstructure:"keyring_dir" yaml:"keyring_dir"`

	// KeyringBackend forces a single keyring backend (e.g., "file").
	// Empty lets the keyring pick the best available backend.
	KeyringBackend string `mapstructure:"keyring_backend" yaml:"keyring_backend"`
}

// MailboxConfig describes the IMAP mailbox exports can be delivered to.
type MailboxConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Host     string `mapstructure:"host" yaml:"host"`
	Port     string `mapstructure:"port" yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	Mailbox  string `mapstructure:"mailbox" yaml:"mailbox"`
	TLS      bool   `mapstructure:"tls" yaml:"tls"`
	From     string `mapstructure:"from" yaml:"from"`
}

// ExportConfig controls where exported documents go.
type ExportConfig struct {
	Dir     string        `mapstructure:"dir" yaml:"dir"`
	Mailbox MailboxConfig `mapstructure:"mailbox" yaml:"mailbox"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// DevServerConfig configures the bundled development API server.
type DevServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API       APIConfig       `mapstructure:"api" yaml:"api"`
	Display   DisplayConfig   `mapstructure:"display" yaml:"display"`
	Storage   StorageConfig   `mapstructure:"storage" yaml:"storage"`
	Export    ExportConfig    `mapstructure:"export" yaml:"export"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	DevServer DevServerConfig `mapstructure:"devserver" yaml:"devserver"`
}

// configDir returns ~/.config/taskflow, or "." if the home directory is
// unknown.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "taskflow")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/taskflow/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	dir := configDir()
	return &AppConfig{
		API: APIConfig{
			BaseURL:    "http://localhost:8080/api",
			TimeoutSec: 30,
		},
		Display: DisplayConfig{
			PageSize:        10,
			PageSizeOptions: []int{5, 10, 25},
		},
		Storage: StorageConfig{
			DBPath:     filepath.Join(dir, "prefs.db"),
			KeyringDir: filepath.Join(dir, "credentials"),
		},
		Export: ExportConfig{
			Dir: ".",
			Mailbox: MailboxConfig{
				Port:    "993",
				Mailbox: "Drafts",
				TLS:     true,
			},
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(dir, "taskflow.log"),
		},
		DevServer: DevServerConfig{
			Addr: ":8080",
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// A missing file yields the defaults. TASKFLOW_* environment variables
// override file values (e.g., TASKFLOW_API_BASE_URL).
func LoadConfig(path string) (*AppConfig, error) {
	defaults := defaultAppConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("taskflow")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults so missing keys resolve to sensible values and so
	// AutomaticEnv knows which keys exist.
	v.SetDefault("api.base_url", defaults.API.BaseURL)
	v.SetDefault("api.timeout_sec", defaults.API.TimeoutSec)
	v.SetDefault("display.page_size", defaults.Display.PageSize)
	v.SetDefault("display.page_size_options", defaults.Display.PageSizeOptions)
	v.SetDefault("storage.db_path", defaults.Storage.DBPath)
	v.SetDefault("storage.keyring_dir", defaults.Storage.KeyringDir)
	v.SetDefault("storage.keyring_backend", "")
	v.SetDefault("export.dir", defaults.Export.Dir)
	v.SetDefault("export.mailbox.enabled", false)
	v.SetDefault("export.mailbox.host", "")
	v.SetDefault("export.mailbox.port", defaults.Export.Mailbox.Port)
	v.SetDefault("export.mailbox.username", "")
	v.SetDefault("export.mailbox.mailbox", defaults.Export.Mailbox.Mailbox)
	v.SetDefault("export.mailbox.tls", defaults.Export.Mailbox.TLS)
	v.SetDefault("export.mailbox.from", "")
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.file", defaults.Log.File)
	v.SetDefault("devserver.addr", defaults.DevServer.Addr)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.API.TimeoutSec <= 0 {
		cfg.API.TimeoutSec = defaults.API.TimeoutSec
	}
	if cfg.Display.PageSize <= 0 {
		cfg.Display.PageSize = defaults.Display.PageSize
	}
	if len(cfg.Display.PageSizeOptions) == 0 {
		cfg.Display.PageSizeOptions = defaults.Display.PageSizeOptions
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("display", cfg.Display)
	v.Set("storage", cfg.Storage)
	v.Set("export", cfg.Export)
	v.Set("log", cfg.Log)
	v.Set("devserver", cfg.DevServer)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
