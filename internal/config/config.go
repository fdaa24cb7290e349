// Package config provides YAML-based configuration for the Plant Identifier server.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/plant-identifier/backend/internal/identify"
)

// AppConfig represents the root YAML configuration structure
type AppConfig struct {
	// Server configuration
	Server ServerConfig `yaml:"server"`

	// Upstream model configuration
	Upstream UpstreamConfig `yaml:"upstream"`

	// Identification behavior
	Identify IdentifyConfig `yaml:"identify"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port               int    `yaml:"port"`
	BindAddress        string `yaml:"bind_address"`
	EnableCORS         bool   `yaml:"enable_cors"`
	AllowOrigins       string `yaml:"allow_origins"`
	ReadTimeout        int    `yaml:"read_timeout_seconds"`
	WriteTimeout       int    `yaml:"write_timeout_seconds"`
	IdleTimeout        int    `yaml:"idle_timeout_seconds"`
	BodyLimit          string `yaml:"body_limit"`
	ExposeErrorDetails bool   `yaml:"expose_error_details"`
}

// UpstreamConfig contains the generative model settings.
// APIKey is read once at startup and injected into the model client.
type UpstreamConfig struct {
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	BaseURL        string `yaml:"base_url,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds"` // 0 means no timeout
}

// IdentifyConfig controls how model replies are parsed.
type IdentifyConfig struct {
	Extraction string `yaml:"extraction"` // "bracket" or "strict"
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "console"
}

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-1.5-flash"

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8080,
			BindAddress:  "0.0.0.0",
			EnableCORS:   false,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 120,
			IdleTimeout:  120,
			BodyLimit:    "10M",
		},
		Upstream: UpstreamConfig{
			Model: DefaultModel,
		},
		Identify: IdentifyConfig{
			Extraction: string(identify.ExtractionBracket),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig loads configuration from a YAML file, creating it with defaults
// if it does not exist, then applies environment overrides.
func LoadConfig(configPath string) (*AppConfig, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	config.applyEnvironmentOverrides()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save saves the configuration to a YAML file. The API key is never written.
func (c *AppConfig) Save(configPath string) error {
	out := *c
	out.Upstream.APIKey = ""

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# Plant Identifier configuration\n# This file is auto-generated on first run.\n# Set the model API key with GOOGLE_API_KEY instead of storing it here.\n\n")
	if err := os.WriteFile(configPath, append(header, data...), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	// GOOGLE_API_KEY wins when both are set.
	for _, name := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if key := os.Getenv(name); key != "" {
			c.Upstream.APIKey = key
		}
	}

	if model := os.Getenv("PLANTID_MODEL"); model != "" {
		c.Upstream.Model = model
	}
	if mode := os.Getenv("PLANTID_EXTRACTION"); mode != "" {
		c.Identify.Extraction = mode
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// Validate checks values that would otherwise fail at first use.
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if strings.TrimSpace(c.Upstream.Model) == "" {
		return errors.New("upstream model must be set")
	}
	if c.Upstream.TimeoutSeconds < 0 {
		return fmt.Errorf("invalid upstream timeout: %d", c.Upstream.TimeoutSeconds)
	}
	if _, err := identify.ParseExtractionMode(c.Identify.Extraction); err != nil {
		return err
	}
	return nil
}

// ExtractionMode returns the parsed extraction mode. Validate has already checked it.
func (c *AppConfig) ExtractionMode() identify.ExtractionMode {
	mode, _ := identify.ParseExtractionMode(c.Identify.Extraction)
	return mode
}

// UpstreamTimeout returns the model call timeout; zero means none.
func (c *AppConfig) UpstreamTimeout() time.Duration {
	return time.Duration(c.Upstream.TimeoutSeconds) * time.Second
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// GetAllowOrigins splits the comma-separated CORS origins.
func (c *AppConfig) GetAllowOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.Server.AllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return origins
}
