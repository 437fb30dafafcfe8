package config

import (
	"fmt"
	"os"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all rhiz configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	LLM      LLMConfig      `yaml:"llm"`
	Insight  InsightConfig  `yaml:"insight"`
}

type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LLMConfig struct {
	Provider     string `yaml:"provider"` // "anthropic", "gemini", "ollama"
	Model        string `yaml:"model"`
	AnthropicKey string `yaml:"anthropic_key"`
	GeminiKey    string `yaml:"gemini_key"`
	OllamaURL    string `yaml:"ollama_url"`
	OllamaModel  string `yaml:"ollama_model"`
}

// InsightConfig bounds the synthesis pipeline: one attempt against the
// reasoning service within TimeoutSeconds, and a per-user rate window.
type InsightConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
	RatePerMinute  int `yaml:"rate_per_minute"`
	RateBurst      int `yaml:"rate_burst"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 38080,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		LLM: LLMConfig{
			Provider: "anthropic",
		},
		Insight: InsightConfig{
			TimeoutSeconds: 20,
			RatePerMinute:  6,
			RateBurst:      2,
		},
	}
}

// Load reads configuration in layers: defaults, an optional YAML file, a
// .env file if present, then environment variable overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// Best-effort .env; absence is normal.
	_ = godotenv.Load()

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.LLM.AnthropicKey = v
		if cfg.LLM.Provider == "" {
			cfg.LLM.Provider = "anthropic"
		}
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.LLM.GeminiKey = v
	}
	if v := os.Getenv("RHIZ_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("RHIZ_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("RHIZ_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(&c.Server,
		validation.Field(&c.Server.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	); err != nil {
		return err
	}
	if err := validation.ValidateStruct(&c.LLM,
		validation.Field(&c.LLM.Provider, validation.Required, validation.In("anthropic", "gemini", "ollama")),
	); err != nil {
		return err
	}
	return validation.ValidateStruct(&c.Insight,
		validation.Field(&c.Insight.TimeoutSeconds, validation.Required, validation.Min(1)),
		validation.Field(&c.Insight.RatePerMinute, validation.Required, validation.Min(1)),
		validation.Field(&c.Insight.RateBurst, validation.Required, validation.Min(1)),
	)
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
