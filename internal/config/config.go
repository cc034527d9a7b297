// Package config loads bugdetect settings from defaults, an optional YAML
// file, a .env file and the process environment, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "bugdetect.yaml"

var ErrMissingAPIKey = errors.New("GEMINI_API_KEY not found in environment variables")

type Config struct {
	Server ServerConfig `yaml:"server"`
	Model  ModelConfig  `yaml:"model"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Port            int     `yaml:"port"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
	RateLimit       float64 `yaml:"rate_limit"`
	Burst           int     `yaml:"burst"`
	BatchWorkers    int     `yaml:"batch_workers"`
}

type ModelConfig struct {
	Name        string  `yaml:"name"`
	APIKey      string  `yaml:"-"`
	Temperature float32 `yaml:"temperature"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            5000,
			CacheTTLSeconds: 300,
			RateLimit:       2,
			Burst:           5,
			BatchWorkers:    4,
		},
		Model: ModelConfig{
			Name:        "gemini-2.5-flash",
			Temperature: 0.2,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load applies path (skipped when it does not exist), then .env, then the
// environment over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.Model.APIKey = os.Getenv("GEMINI_API_KEY")
	if v := os.Getenv("BUGDETECT_MODEL"); v != "" {
		cfg.Model.Name = v
	}
	if v := os.Getenv("BUGDETECT_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("BUGDETECT_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BUGDETECT_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	return nil
}

// Validate checks ranges. The API key is only required when the hosted
// model will be called.
func (c Config) Validate(requireKey bool) error {
	if requireKey && c.Model.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.RateLimit < 0 || c.Server.Burst < 0 {
		return fmt.Errorf("server.rate_limit and server.burst must not be negative")
	}
	if c.Server.BatchWorkers < 1 {
		return fmt.Errorf("server.batch_workers must be at least 1")
	}
	if c.Model.Name == "" {
		return fmt.Errorf("model.name is required")
	}
	return nil
}

const DefaultYAML = `server:
  port: 5000
  cache_ttl_seconds: 300
  rate_limit: 2
  burst: 5
  batch_workers: 4
model:
  name: gemini-2.5-flash
  temperature: 0.2
log:
  level: info
  development: false
`
