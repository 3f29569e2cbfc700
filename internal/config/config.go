package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	winerrors "classtop/internal/infrastructure/errors"
	"classtop/internal/infrastructure/logging"
	"classtop/internal/platform"
	"classtop/internal/types"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides the config file location
const EnvConfigPath = "CLASSTOP_CONFIG"

// Backend names accepted by the backend setting
const (
	BackendAuto  = "auto"
	BackendWails = "wails"
	BackendX11   = "x11"
	BackendWin32 = "win32"
)

// Config is the application configuration
type Config struct {
	Backend           string            `yaml:"backend"`
	UnitMode          string            `yaml:"unit_mode"`
	Monitor           string            `yaml:"monitor"`
	LogLevel          string            `yaml:"log_level"`
	FocusFailureFatal bool              `yaml:"focus_failure_fatal"`
	FocusAttempts     int               `yaml:"focus_attempts"`
	Topbar            TopbarConfig      `yaml:"topbar"`
	Windows           map[string]string `yaml:"windows"`
	X11               X11Config         `yaml:"x11"`
	IPC               IPCConfig         `yaml:"ipc"`
	Tray              TrayConfig        `yaml:"tray"`
}

// TopbarConfig describes the Wails-hosted topbar window
type TopbarConfig struct {
	Name          string `yaml:"name"`
	DefaultHeight uint32 `yaml:"default_height"`
	StartHidden   bool   `yaml:"start_hidden"`
}

// X11Config holds settings the X server cannot report
type X11Config struct {
	ScaleFactor float64 `yaml:"scale_factor"`
}

// IPCConfig controls the local command socket
type IPCConfig struct {
	Enabled    bool   `yaml:"enabled"`
	SocketPath string `yaml:"socket_path"`
}

// TrayConfig controls the system tray icon
type TrayConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() *Config {
	return &Config{
		Backend:           BackendAuto,
		Monitor:           "first",
		LogLevel:          "info",
		FocusFailureFatal: true,
		FocusAttempts:     3,
		Topbar: TopbarConfig{
			Name:          "topbar",
			DefaultHeight: 48,
		},
		Windows: map[string]string{},
		X11: X11Config{
			ScaleFactor: 1,
		},
		IPC: IPCConfig{
			Enabled: true,
		},
		Tray: TrayConfig{
			Enabled: true,
		},
	}
}

// DefaultConfigPath returns ~/.config/classtop/config.yaml
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "classtop", "config.yaml"), nil
}

// Load reads the config from $CLASSTOP_CONFIG or the default path
func Load() (*Config, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return LoadFromPath(path)
	}
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads a config file; a missing file yields the defaults
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Windows == nil {
		cfg.Windows = map[string]string{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown enum values and unusable numbers
func (c *Config) Validate() error {
	switch strings.ToLower(c.Backend) {
	case BackendAuto, BackendWails, BackendX11, BackendWin32:
	default:
		return fmt.Errorf("invalid backend %q (expected auto, wails, x11 or win32)", c.Backend)
	}
	if _, err := types.ParseUnitMode(c.UnitMode); err != nil {
		return err
	}
	if _, err := platform.ParseMonitorSelector(c.Monitor); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.FocusAttempts < 1 {
		return fmt.Errorf("focus_attempts must be at least 1")
	}
	if strings.TrimSpace(c.Topbar.Name) == "" {
		return fmt.Errorf("topbar.name must not be empty")
	}
	if c.Topbar.DefaultHeight == 0 {
		return fmt.Errorf("topbar.default_height must be positive")
	}
	if c.X11.ScaleFactor < 0 {
		return fmt.Errorf("x11.scale_factor must not be negative")
	}
	return nil
}

// BackendName returns the normalized backend setting
func (c *Config) BackendName() string {
	return strings.ToLower(c.Backend)
}

// Unit returns the parsed unit mode; Validate has already accepted it
func (c *Config) Unit() types.UnitMode {
	mode, _ := types.ParseUnitMode(c.UnitMode)
	return mode
}

// MonitorSelector returns the parsed selector, defaulting to the first monitor
func (c *Config) MonitorSelector() platform.MonitorSelector {
	sel, err := platform.ParseMonitorSelector(c.Monitor)
	if err != nil {
		return platform.SelectFirst
	}
	return sel
}

// Level returns the parsed log level
func (c *Config) Level() logging.Level {
	level, _ := logging.ParseLevel(c.LogLevel)
	return level
}

// FocusRetry returns the retry policy for focus requests after show
func (c *Config) FocusRetry() *winerrors.RetryConfig {
	retry := winerrors.DefaultRetryConfig()
	retry.MaxAttempts = c.FocusAttempts
	return retry
}

// NativeOptions builds the OS backend options from the window aliases
func (c *Config) NativeOptions() platform.NativeOptions {
	aliases := make(map[string]string, len(c.Windows))
	for k, v := range c.Windows {
		aliases[k] = v
	}
	return platform.NativeOptions{
		Aliases:     aliases,
		ScaleFactor: c.X11.ScaleFactor,
	}
}
