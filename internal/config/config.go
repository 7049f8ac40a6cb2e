package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"kilocam/internal/errors"

	"gopkg.in/yaml.v3"
)

// EnvURL overrides device.url when set.
const EnvURL = "KILOCAM_URL"

// DefaultURL is the address of the device's own access point.
const DefaultURL = "http://192.168.4.1"

// Config represents the console configuration: where the device is, where
// downloads and previews go, and how the interactive surfaces look.
type Config struct {
	Device struct {
		URL     string `yaml:"url"`     // Device base URL
		Timeout int    `yaml:"timeout"` // Per-request timeout in seconds (0 = none)
	} `yaml:"device"`
	Downloads struct {
		Dir      string `yaml:"dir"`       // Local destination directory
		PacingMS int    `yaml:"pacing_ms"` // Delay between download triggers
		Match    string `yaml:"match"`     // Optional glob on file names
	} `yaml:"downloads"`
	Confirm struct {
		AssumeYes bool `yaml:"assume_yes"` // Answer yes to every confirmation
	} `yaml:"confirm"`
	Preview struct {
		Dir   string `yaml:"dir"`   // Where captures are saved ("" = temp dir)
		Width int    `yaml:"width"` // Terminal thumbnail width in columns
	} `yaml:"preview"`
	LogFile   string `yaml:"log_file"`   // Log destination while a TUI is running
	LogFormat string `yaml:"log_format"` // text or json
	Theme   Theme  `yaml:"theme"`
}

// Theme holds the named palette used by the TUI and CLI output.
type Theme struct {
	Name    string `yaml:"name"`              // default, dark, light, monochrome
	Primary string `yaml:"primary,omitempty"` // Titles and the selected row
	Success string `yaml:"success,omitempty"` // Device acknowledgments
	Warning string `yaml:"warning,omitempty"` // Confirmation prompts
	Error   string `yaml:"error,omitempty"`   // Failures
	Muted   string `yaml:"muted,omitempty"`   // Sizes, help text
	Border  string `yaml:"border,omitempty"`  // Card borders
}

// DefaultPath returns ~/.config/kilocam/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "kilocam", "config.yaml"), nil
}

// LoadConfig loads configuration from the default location.
func LoadConfig() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFile(path)
}

// LoadConfigFile loads configuration from a specific file path.
// If the file doesn't exist, returns default configuration. The
// KILOCAM_URL environment variable wins over the file.
func LoadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if err == nil {
		if err := cfg.merge(data); err != nil {
			return nil, err
		}
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// merge overlays the values set in data onto c.
func (c *Config) merge(data []byte) error {
	var tempCfg Config
	if err := yaml.Unmarshal(data, &tempCfg); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}

	if tempCfg.Device.URL != "" {
		c.Device.URL = tempCfg.Device.URL
	}
	c.Device.Timeout = tempCfg.Device.Timeout

	if tempCfg.Downloads.Dir != "" {
		c.Downloads.Dir = tempCfg.Downloads.Dir
	}
	if tempCfg.Downloads.PacingMS != 0 {
		c.Downloads.PacingMS = tempCfg.Downloads.PacingMS
	}
	c.Downloads.Match = tempCfg.Downloads.Match

	c.Confirm.AssumeYes = tempCfg.Confirm.AssumeYes

	c.Preview.Dir = tempCfg.Preview.Dir
	if tempCfg.Preview.Width != 0 {
		c.Preview.Width = tempCfg.Preview.Width
	}

	c.LogFile = tempCfg.LogFile
	if tempCfg.LogFormat != "" {
		c.LogFormat = tempCfg.LogFormat
	}

	if tempCfg.Theme.Name != "" {
		c.ApplyTheme(tempCfg.Theme.Name)
	}
	overlay(&c.Theme.Primary, tempCfg.Theme.Primary)
	overlay(&c.Theme.Success, tempCfg.Theme.Success)
	overlay(&c.Theme.Warning, tempCfg.Theme.Warning)
	overlay(&c.Theme.Error, tempCfg.Theme.Error)
	overlay(&c.Theme.Muted, tempCfg.Theme.Muted)
	overlay(&c.Theme.Border, tempCfg.Theme.Border)
	return nil
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// ApplyEnv applies environment overrides.
func (c *Config) ApplyEnv() {
	if u := os.Getenv(EnvURL); u != "" {
		c.Device.URL = u
	}
}

// defaultConfig returns the default configuration.
func defaultConfig() *Config {
	cfg := &Config{}
	cfg.Device.URL = DefaultURL
	cfg.Device.Timeout = 0 // the device may take a while to wake
	cfg.Downloads.Dir = "."
	cfg.Downloads.PacingMS = 500
	cfg.Confirm.AssumeYes = false
	cfg.Preview.Width = 48
	cfg.LogFormat = "text"
	cfg.ApplyTheme("default")
	return cfg
}

// New creates a new configuration instance with default values.
func New() *Config {
	return defaultConfig()
}

// SaveConfig saves the configuration to the specified file.
// It creates parent directories if they don't exist.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// UpdateFile applies fn to the configuration stored at path and writes it
// back. Environment overrides are not applied, so they are never persisted.
// A missing file starts from the defaults.
func UpdateFile(path string, fn func(*Config)) error {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("error reading config file: %w", err)
	}
	if err == nil {
		if err := cfg.merge(data); err != nil {
			return err
		}
	}

	fn(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	return SaveConfig(cfg, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrInvalidConfig
	}

	u, err := url.Parse(c.Device.URL)
	if err != nil {
		return errors.NewConfigError("invalid device url", "device.url", errors.InvalidConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.NewConfigError("device url must be http or https", "device.url", errors.InvalidConfig, nil)
	}
	if u.Host == "" {
		return errors.NewConfigError("device url has no host", "device.url", errors.InvalidConfig, nil)
	}

	if c.Device.Timeout < 0 {
		return errors.NewConfigError("timeout must be >= 0 seconds", "device.timeout", errors.InvalidConfig, nil)
	}
	if c.Downloads.PacingMS < 0 {
		return errors.NewConfigError("pacing must be >= 0 ms", "downloads.pacing_ms", errors.InvalidConfig, nil)
	}
	if c.Preview.Width < 0 {
		return errors.NewConfigError("preview width must be >= 0", "preview.width", errors.InvalidConfig, nil)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return errors.NewConfigError("log format must be text or json", "log_format", errors.InvalidConfig, nil)
	}
	if !isTheme(c.Theme.Name) {
		return errors.NewConfigError("unknown theme", c.Theme.Name, errors.InvalidConfig, nil)
	}
	return nil
}

// Timeout is the per-request timeout; zero means none.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Device.Timeout) * time.Second
}

// Pacing is the delay between bulk download triggers.
func (c *Config) Pacing() time.Duration {
	return time.Duration(c.Downloads.PacingMS) * time.Millisecond
}

var themes = map[string]Theme{
	"default": {
		Primary: "213", // Purple
		Success: "114", // Green
		Warning: "220", // Yellow
		Error:   "196", // Red
		Muted:   "245", // Grey
		Border:  "213", // Purple
	},
	"dark": {
		Primary: "105",
		Success: "78",
		Warning: "214",
		Error:   "160",
		Muted:   "240",
		Border:  "105",
	},
	"light": {
		Primary: "135",
		Success: "28",
		Warning: "130",
		Error:   "124",
		Muted:   "243",
		Border:  "135",
	},
	"monochrome": {
		Primary: "255",
		Success: "252",
		Warning: "250",
		Error:   "255",
		Muted:   "244",
		Border:  "245",
	},
}

// GetTheme returns a predefined theme by name.
// If the theme doesn't exist, returns the default theme.
func GetTheme(name string) Theme {
	t, ok := themes[name]
	if !ok {
		name = "default"
		t = themes[name]
	}
	t.Name = name
	return t
}

// ApplyTheme replaces the palette with the named theme.
func (c *Config) ApplyTheme(name string) {
	c.Theme = GetTheme(name)
	if !isTheme(name) {
		c.Theme.Name = name
	}
}

// ListThemes returns a list of available theme names.
func ListThemes() []string {
	return []string{"default", "dark", "light", "monochrome"}
}

func isTheme(name string) bool {
	_, ok := themes[name]
	return ok
}
