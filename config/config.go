package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/slighter12/tres-devtools-go/logger"
)

const (
	DefaultConfigFile = "config/devtools.json"
	DefaultPanelRoute = "/__tres_nuxt_devtools"
)

// Config represents the devtools server configuration
type Config struct {
	Name      string    `json:"name" yaml:"name" toml:"name"`
	Version   string    `json:"version" yaml:"version" toml:"version"`
	Server    Server    `json:"server" yaml:"server" toml:"server"`
	Logging   Logging   `json:"logging" yaml:"logging" toml:"logging"`
	Telemetry Telemetry `json:"telemetry" yaml:"telemetry" toml:"telemetry"`
	Assets    Assets    `json:"assets" yaml:"assets" toml:"assets"`
	Panel     Panel     `json:"panel" yaml:"panel" toml:"panel"`
}

// Server represents server configuration
type Server struct {
	Host  string `json:"host" yaml:"host" toml:"host"`
	Port  int    `json:"port" yaml:"port" toml:"port"`
	Debug bool   `json:"debug" yaml:"debug" toml:"debug"`
}

// Logging represents logging configuration
type Logging struct {
	Level  string `json:"level" yaml:"level" toml:"level"`
	Format string `json:"format" yaml:"format" toml:"format"`
	Path   string `json:"path" yaml:"path" toml:"path"`
}

// Telemetry sizes the FPS and memory windows.
type Telemetry struct {
	Capacity      int `json:"capacity" yaml:"capacity" toml:"capacity"`
	LogIntervalMS int `json:"log_interval_ms" yaml:"log_interval_ms" toml:"log_interval_ms"`
}

// Assets controls texture preview capture.
type Assets struct {
	PreviewMaxEdge  int  `json:"preview_max_edge" yaml:"preview_max_edge" toml:"preview_max_edge"`
	CapturePreviews bool `json:"capture_previews" yaml:"capture_previews" toml:"capture_previews"`
}

// Panel is where observer panels mount and how often the event stream polls.
type Panel struct {
	Route          string `json:"route" yaml:"route" toml:"route"`
	PollIntervalMS int    `json:"poll_interval_ms" yaml:"poll_interval_ms" toml:"poll_interval_ms"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	home, err := homedir.Dir()
	if err != nil || home == "" {
		home = os.TempDir()
	}
	return &Config{
		Name:    "tres-devtools-go",
		Version: "0.1.0",
		Server: Server{
			Host:  "localhost",
			Port:  3300,
			Debug: false,
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
			Path:   filepath.Join(home, ".tres-devtools", "logs", "devtools.log"),
		},
		Telemetry: Telemetry{
			Capacity:      160,
			LogIntervalMS: 1000,
		},
		Assets: Assets{
			PreviewMaxEdge:  128,
			CapturePreviews: true,
		},
		Panel: Panel{
			Route:          DefaultPanelRoute,
			PollIntervalMS: 250,
		},
	}
}

// Format is a config file encoding, chosen by file extension.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatForPath maps a file extension to its encoding. Unknown extensions are JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

func decode(format Format, data []byte, cfg *Config) error {
	switch format {
	case FormatYAML:
		return yaml.Unmarshal(data, cfg)
	case FormatTOML:
		return toml.Unmarshal(data, cfg)
	default:
		return json.Unmarshal(data, cfg)
	}
}

func encode(format Format, cfg *Config) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatTOML:
		return toml.Marshal(cfg)
	default:
		return json.MarshalIndent(cfg, "", "  ")
	}
}

// LoadConfig loads the configuration from a file
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand config path: %w", err)
	}
	if _, err := os.Stat(expanded); err != nil {
		return nil, fmt.Errorf("config file not found: %v", err)
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, err
	}

	if err := decode(FormatForPath(expanded), data, cfg); err != nil {
		return nil, fmt.Errorf("decode %s config: %w", FormatForPath(expanded), err)
	}

	// Environment variables have the highest priority.
	applyEnvOverrides(cfg)
	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a file, encoded by its extension.
func SaveConfig(cfg *Config, path string) error {
	if cfg == nil {
		return errors.New("config cannot be nil")
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	expanded, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("expand config path: %w", err)
	}

	data, err := encode(FormatForPath(expanded), cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(expanded), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %v", err)
	}

	if err := os.WriteFile(expanded, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %v", err)
	}

	return nil
}

func applyEnvOverrides(cfg *Config) {
	envInt("TRES_DEVTOOLS_PORT", &cfg.Server.Port)
	envBool("TRES_DEVTOOLS_DEBUG", &cfg.Server.Debug)
	envInt("TRES_DEVTOOLS_TELEMETRY_CAPACITY", &cfg.Telemetry.Capacity)
	envInt("TRES_DEVTOOLS_LOG_INTERVAL_MS", &cfg.Telemetry.LogIntervalMS)
	envInt("TRES_DEVTOOLS_PREVIEW_MAX_EDGE", &cfg.Assets.PreviewMaxEdge)
	envBool("TRES_DEVTOOLS_CAPTURE_PREVIEWS", &cfg.Assets.CapturePreviews)
	envInt("TRES_DEVTOOLS_POLL_INTERVAL_MS", &cfg.Panel.PollIntervalMS)

	if host := os.Getenv("TRES_DEVTOOLS_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if logLevel := os.Getenv("TRES_DEVTOOLS_LOG_LEVEL"); logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat := os.Getenv("TRES_DEVTOOLS_LOG_FORMAT"); logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	if logPath := os.Getenv("TRES_DEVTOOLS_LOG_PATH"); logPath != "" {
		cfg.Logging.Path = logPath
	}
	if route := os.Getenv("TRES_DEVTOOLS_PANEL_ROUTE"); route != "" {
		cfg.Panel.Route = route
	}
}

func envInt(key string, dst *int) {
	raw := os.Getenv(key)
	if raw == "" {
		return
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		logger.Warn("Ignoring invalid environment override", "key", key, "value", raw, "error", err)
		return
	}
	*dst = parsed
}

func envBool(key string, dst *bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		logger.Warn("Ignoring invalid environment override", "key", key, "value", raw, "error", err)
		return
	}
	*dst = parsed
}

// Normalize canonicalizes config values so downstream validation and runtime
// logic operate on stable representations.
func (c *Config) Normalize() {
	c.Server.Host = strings.TrimSpace(c.Server.Host)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Path = strings.TrimSpace(c.Logging.Path)
	if expanded, err := homedir.Expand(c.Logging.Path); err == nil {
		c.Logging.Path = expanded
	}

	route := strings.TrimSpace(c.Panel.Route)
	if route == "" {
		route = DefaultPanelRoute
	}
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	if len(route) > 1 {
		route = strings.TrimRight(route, "/")
	}
	c.Panel.Route = route

	if c.Telemetry.Capacity == 0 {
		c.Telemetry.Capacity = 160
	}
	if c.Telemetry.LogIntervalMS == 0 {
		c.Telemetry.LogIntervalMS = 1000
	}
	if c.Panel.PollIntervalMS == 0 {
		c.Panel.PollIntervalMS = 250
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("invalid port number")
	}

	if c.Server.Host == "" {
		return errors.New("host cannot be empty")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return errors.New("invalid log level")
	}

	validLogFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return errors.New("invalid log format")
	}

	if c.Logging.Path == "" {
		return errors.New("log path cannot be empty")
	}

	if c.Telemetry.Capacity < 1 || c.Telemetry.Capacity > 10000 {
		return fmt.Errorf("invalid telemetry capacity %d: expected range 1..10000", c.Telemetry.Capacity)
	}

	if c.Telemetry.LogIntervalMS < 1 {
		return fmt.Errorf("invalid telemetry log interval %dms: must be positive", c.Telemetry.LogIntervalMS)
	}

	if c.Assets.PreviewMaxEdge < 0 {
		return fmt.Errorf("invalid preview max edge %d: must not be negative", c.Assets.PreviewMaxEdge)
	}

	if c.Panel.Route == "/" {
		return errors.New("panel route cannot be the root path")
	}

	if c.Panel.PollIntervalMS < 10 || c.Panel.PollIntervalMS > 60000 {
		return fmt.Errorf("invalid panel poll interval %dms: expected range 10..60000", c.Panel.PollIntervalMS)
	}

	return nil
}

// ResolveConfigPath returns the path that should be used for configuration.
func ResolveConfigPath() (string, error) {
	if path := strings.TrimSpace(os.Getenv("TRES_DEVTOOLS_CONFIG_PATH")); path != "" {
		return homedir.Expand(path)
	}

	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return DefaultConfigFile, nil
	}

	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".tres-devtools", "config", "devtools.json"), nil
}

// EnsureDefaultConfig creates a default config file if one does not exist.
func EnsureDefaultConfig(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("config path cannot be empty")
	}

	expanded, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("expand config path: %w", err)
	}

	if _, err := os.Stat(expanded); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config file: %w", err)
	}

	defaultConfig := NewConfig()
	defaultConfig.Normalize()
	if err := SaveConfig(defaultConfig, expanded); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}

	return nil
}
