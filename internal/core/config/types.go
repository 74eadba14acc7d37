package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so durations can be written as strings
// ("5s", "1m30s") in the configuration file.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the duration as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config represents the main mcpgate configuration.
type Config struct {
	Listen   ListenConfig   `yaml:"listen"`
	Server   ServerConfig   `yaml:"server"`
	Limits   LimitsConfig   `yaml:"limits"`
	Shutdown ShutdownConfig `yaml:"shutdown"`
	Log      LogConfig      `yaml:"log,omitempty"`
}

// ListenConfig describes the address the gateway binds to.
type ListenConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ServerConfig describes the stdio tool server launched for every
// accepted connection.
type ServerConfig struct {
	// Command is the executable to launch. Required.
	Command string `yaml:"command"`
	// Args are passed to the command verbatim.
	Args []string `yaml:"args,omitempty"`
	// Env is the base environment overlaid on the gateway's own
	// environment for every child. Service locations the child must
	// reach belong here.
	Env map[string]string `yaml:"env,omitempty"`
	// TokenVar is the environment variable that carries the
	// per-connection access token. Only set when the connection
	// supplied a token.
	TokenVar string `yaml:"token_var,omitempty"`
}

// LimitsConfig bounds gateway resource usage.
type LimitsConfig struct {
	// MaxSessions caps concurrent sessions. 0 means unlimited.
	MaxSessions int `yaml:"max_sessions,omitempty"`
}

// ShutdownConfig controls child process teardown.
type ShutdownConfig struct {
	// GracePeriod is how long a child gets to exit after SIGTERM
	// before it is killed.
	GracePeriod Duration `yaml:"grace_period,omitempty"`
}

// LogConfig controls gateway logging.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Default values applied by Load.
const (
	DefaultHost        = "127.0.0.1"
	DefaultPort        = 8840
	DefaultTokenVar    = "USER_ACCESS_TOKEN"
	DefaultGracePeriod = Duration(5 * time.Second)
)

// DefaultConfig returns a configuration with all defaults applied and
// no server command set.
func DefaultConfig() *Config {
	return &Config{
		Listen: ListenConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Server: ServerConfig{
			TokenVar: DefaultTokenVar,
		},
		Shutdown: ShutdownConfig{
			GracePeriod: DefaultGracePeriod,
		},
	}
}
