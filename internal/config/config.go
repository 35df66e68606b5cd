package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds user preferences
type Config struct {
	// Data source: demo, local or remote
	Mode      string `yaml:"mode" mapstructure:"mode"`
	ServerURL string `yaml:"server_url" mapstructure:"server_url"`
	DBPath    string `yaml:"db_path" mapstructure:"db_path"`
	// Seconds between background reloads of the dashboard, 0 disables
	RefreshInterval int `yaml:"refresh_interval" mapstructure:"refresh_interval"`
	// Default directory for exported PDFs
	ExportDir string `yaml:"export_dir" mapstructure:"export_dir"`

	// Logging configuration
	LogLevel   string `yaml:"log_level" mapstructure:"log_level"`     // DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" mapstructure:"log_file"`       // Path to log file
	LogConsole bool   `yaml:"log_console" mapstructure:"log_console"` // Enable console logging
}

// Dir returns the application directory, ~/.chantier unless CHANTIER_HOME is set.
func Dir() (string, error) {
	if dir := os.Getenv("CHANTIER_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".chantier"), nil
}

// Path returns the config file path
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	dir, _ := Dir()
	cfg := &Config{
		Mode:            "demo",
		ServerURL:       "http://localhost:8080",
		RefreshInterval: 30,
		LogLevel:        "INFO",
	}
	if dir != "" {
		cfg.DBPath = filepath.Join(dir, "chantier.db")
		cfg.LogFile = filepath.Join(dir, "logs", "chantier.log")
		cfg.ExportDir = "."
	}
	return cfg
}

func newViper(defaults *Config) *viper.Viper {
	v := viper.New()
	v.SetDefault("mode", defaults.Mode)
	v.SetDefault("server_url", defaults.ServerURL)
	v.SetDefault("db_path", defaults.DBPath)
	v.SetDefault("refresh_interval", defaults.RefreshInterval)
	v.SetDefault("export_dir", defaults.ExportDir)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_file", defaults.LogFile)
	v.SetDefault("log_console", defaults.LogConsole)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("CHANTIER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load loads config from ~/.chantier/config.yaml. CHANTIER_* environment
// variables override file values.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile loads config from path. A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	v := newViper(DefaultConfig())
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Save saves config to ~/.chantier/config.yaml
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config as YAML, creating the directory if needed
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// SessionPath is where the remote session (server, token, user) is kept
func SessionPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.json"), nil
}

// ContextPath is where the default project is kept
func ContextPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "context"), nil
}
