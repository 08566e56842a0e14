// Package config loads deepskies configuration from defaults, an optional
// YAML file and DEEPSKIES_* environment variables, in that order.
package config

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/litescript/deepskies/internal/astro"
)

// EnvPrefix prefixes every environment variable the config reads.
const EnvPrefix = "DEEPSKIES_"

// Config represents the application configuration.
type Config struct {
	Catalog     string     `yaml:"catalog" env:"CATALOG"`
	Index       string     `yaml:"index" env:"INDEX"`
	LogLevel    string     `yaml:"log_level" env:"LOG_LEVEL"`
	LogFile     string     `yaml:"log_file" env:"LOG_FILE"`
	MetricsAddr string     `yaml:"metrics_addr" env:"METRICS_ADDR"`
	Watch       bool       `yaml:"watch" env:"WATCH"`
	View        astro.View `yaml:"view" envPrefix:"VIEW_"`
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		Catalog:  "STARS.DAT",
		LogLevel: "info",
		Watch:    true,
		View:     astro.DefaultView(),
	}
}

// Load builds the configuration. filename may be empty, in which case only
// defaults and the environment apply. ${VAR} references in the file are
// expanded before parsing.
func Load(filename string) (*Config, error) {
	cfg := NewDefaultConfig()

	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
		}
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", filename, err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Catalog, validation.Required),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "warning", "error")),
		validation.Field(&c.MetricsAddr, validation.By(hostPort)),
	); err != nil {
		return err
	}
	// The display size is only known once a surface exists.
	if err := c.View.WithDisplay(1, 1).Validate(); err != nil {
		return fmt.Errorf("view: %w", err)
	}
	return nil
}

func hostPort(value interface{}) error {
	addr, _ := value.(string)
	if addr == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("must be host:port")
	}
	return nil
}

// IndexPath returns the magnitude index location: the configured path, or
// the catalog path with a .idx.db suffix.
func (c *Config) IndexPath() string {
	if c.Index != "" {
		return c.Index
	}
	return strings.TrimSuffix(c.Catalog, ".DAT") + ".idx.db"
}
