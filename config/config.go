// Package config loads CLI and service configuration from YAML files with
// sensible defaults for local development.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML files can use "30s" style values.
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// UnmarshalYAML implements yaml.Unmarshaler, accepting Go duration strings.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Config is the top-level configuration document.
type Config struct {
	// Model is the default model identifier for new conversations.
	Model string `yaml:"model"`

	// MaxRounds caps model calls per run; 0 uses the built-in default.
	MaxRounds int `yaml:"max_rounds"`

	// ToolTimeout bounds each tool invocation.
	ToolTimeout Duration `yaml:"tool_timeout"`

	// RunTimeout bounds an entire run; 0 disables the deadline.
	RunTimeout Duration `yaml:"run_timeout"`

	// SystemPrompt overrides the built-in coaching prompt when set.
	SystemPrompt string `yaml:"system_prompt"`

	// Streaming requests partial text deltas from the model.
	Streaming bool `yaml:"streaming"`

	// MaxParallelTools caps concurrent tool calls in one batch; 0 means
	// batch size.
	MaxParallelTools int `yaml:"max_parallel_tools"`

	// Database is the SQLite DSN; ":memory:" gives an ephemeral store.
	Database string `yaml:"database"`

	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns the development configuration.
func Default() Config {
	return Config{
		Model:       "scripted",
		MaxRounds:   8,
		ToolTimeout: Duration(15 * time.Second),
		Streaming:   true,
		Database:    ":memory:",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML config file, layering it over the defaults. A missing
// path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.MaxRounds < 0 {
		return fmt.Errorf("max_rounds must not be negative")
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}
	return nil
}
