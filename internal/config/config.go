package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the posort configuration
type Config struct {
	// WrapWidth is the line width string fields are wrapped at; 0 disables wrapping
	WrapWidth int           `json:"wrapWidth" yaml:"wrapWidth" toml:"wrapWidth" mapstructure:"wrapWidth"`
	Logging   LoggingConfig `json:"logging" yaml:"logging" toml:"logging" mapstructure:"logging"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string `json:"level" yaml:"level" toml:"level" mapstructure:"level"`
}

// DefaultWrapWidth matches the width gettext tools wrap at.
const DefaultWrapWidth = 78

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		WrapWidth: DefaultWrapWidth,
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// supportedTypes maps file extensions to viper config types
var supportedTypes = map[string]string{
	".json": "json",
	".yaml": "yaml",
	".yml":  "yaml",
	".toml": "toml",
}

// LoadConfig loads configuration from path. An empty path returns the defaults.
// The file type is taken from the extension: .json, .yaml/.yml or .toml.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	configType, ok := supportedTypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, &ConfigError{Field: "file", Message: fmt.Sprintf("unsupported config file type %q", filepath.Ext(path))}
	}

	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("wrapWidth", defaults.WrapWidth)
	v.SetDefault("logging.level", defaults.Logging.Level)

	v.SetConfigFile(path)
	v.SetConfigType(configType)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Marshal renders the configuration in the given format: json, yaml or toml.
func (c *Config) Marshal(format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "json":
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "yaml", "yml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "toml":
		return toml.Marshal(c)
	default:
		return nil, &ConfigError{Field: "format", Message: fmt.Sprintf("unsupported format %q", format)}
	}
}

var validLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "warning": true,
	"error": true, "silent": true, "off": true, "none": true,
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.WrapWidth < 0 {
		return &ConfigError{Field: "wrapWidth", Message: "must not be negative"}
	}
	if c.Logging.Level != "" && !validLevels[strings.ToLower(c.Logging.Level)] {
		return &ConfigError{Field: "logging.level", Message: fmt.Sprintf("unknown level %q", c.Logging.Level)}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
