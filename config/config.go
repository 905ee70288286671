// Package config loads engine settings from a YAML file and the environment.
// Every field has a working default so a zero-config setup still runs.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// MemoryConfig selects and sizes a memory strategy.
type MemoryConfig struct {
	// Strategy is one of "windowed", "summary", "vector", "hybrid".
	Strategy string `mapstructure:"strategy"`
	// MaxMessages bounds the windowed strategy.
	MaxMessages int `mapstructure:"max_messages"`
	// SummaryThreshold is how many recent messages summarization keeps verbatim.
	SummaryThreshold int `mapstructure:"summary_threshold"`
	// RecallLimit bounds how many messages retrieval strategies contribute.
	RecallLimit int `mapstructure:"recall_limit"`
	// MinScore is the similarity floor for vector retrieval.
	MinScore float64 `mapstructure:"min_score"`
}

// Config is the top-level engine configuration.
type Config struct {
	// Provider selects the model backend: "openai", "anthropic" or "ollama".
	Provider string `mapstructure:"provider"`
	// Model is the provider-specific model identifier.
	Model string `mapstructure:"model"`
	// MaxIterations caps the agent loop.
	MaxIterations int `mapstructure:"max_iterations"`
	// ModelTimeout bounds each model call.
	ModelTimeout time.Duration `mapstructure:"model_timeout"`
	// ToolTimeout bounds each tool callback.
	ToolTimeout time.Duration `mapstructure:"tool_timeout"`
	// StrictMemory makes memory read failures fatal.
	StrictMemory bool `mapstructure:"strict_memory"`
	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `mapstructure:"log_level"`

	Memory MemoryConfig `mapstructure:"memory"`
}

const envPrefix = "AGENTLOOP"

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", "openai")
	v.SetDefault("model", "")
	v.SetDefault("max_iterations", 10)
	v.SetDefault("model_timeout", 0)
	v.SetDefault("tool_timeout", 15*time.Second)
	v.SetDefault("strict_memory", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("memory.strategy", "windowed")
	v.SetDefault("memory.max_messages", 50)
	v.SetDefault("memory.summary_threshold", 10)
	v.SetDefault("memory.recall_limit", 5)
	v.SetDefault("memory.min_score", 0.0)
}

// Load reads the configuration file at path, layers AGENTLOOP_* environment
// variables on top and fills remaining fields with defaults. An empty path
// returns pure defaults plus environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration without touching files or the
// environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	switch c.Provider {
	case "openai", "anthropic", "ollama":
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	switch c.Memory.Strategy {
	case "windowed", "summary", "vector", "hybrid":
	default:
		return fmt.Errorf("unknown memory strategy %q", c.Memory.Strategy)
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be positive, got %d", c.MaxIterations)
	}
	if c.Memory.MaxMessages < 1 {
		return fmt.Errorf("memory.max_messages must be positive, got %d", c.Memory.MaxMessages)
	}
	return nil
}
