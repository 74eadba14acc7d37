// Package config provides configuration management for the mcpgate
// gateway.
package config

import (
	"bytes"
	"fmt"
	"net"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads, validates, and applies defaults to the configuration at
// the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes raw yaml, validates it, and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values the gateway cannot run
// with.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Server.Command == "" {
		return fmt.Errorf("server.command is required")
	}
	if cfg.Listen.Port < 1 || cfg.Listen.Port > 65535 {
		return fmt.Errorf("listen.port must be in 1-65535, got %d", cfg.Listen.Port)
	}
	if cfg.Shutdown.GracePeriod <= 0 {
		return fmt.Errorf("shutdown.grace_period must be positive")
	}
	if cfg.Limits.MaxSessions < 0 {
		return fmt.Errorf("limits.max_sessions must not be negative")
	}
	switch cfg.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", cfg.Log.Format)
	}
	return nil
}

// Addr returns the host:port the gateway should bind to.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Listen.Host, fmt.Sprintf("%d", c.Listen.Port))
}

// applyDefaults fills unset fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Listen.Host == "" {
		cfg.Listen.Host = DefaultHost
	}
	if cfg.Listen.Port == 0 {
		cfg.Listen.Port = DefaultPort
	}
	if cfg.Server.TokenVar == "" {
		cfg.Server.TokenVar = DefaultTokenVar
	}
	if cfg.Shutdown.GracePeriod == 0 {
		cfg.Shutdown.GracePeriod = DefaultGracePeriod
	}
}
