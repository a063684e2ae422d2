package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	LLM     LLMConfig     `yaml:"llm"`
	Reading ReadingConfig `yaml:"reading"`
	Session SessionConfig `yaml:"session"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// LLMConfig locates the text generation endpoint.
type LLMConfig struct {
	APIKey     string        `yaml:"apiKey"`
	BaseURL    string        `yaml:"baseUrl"`
	Path       string        `yaml:"path"`
	APIVersion string        `yaml:"apiVersion"`
	Model      string        `yaml:"model"`
	MaxTokens  int           `yaml:"maxTokens"`
	Timeout    time.Duration `yaml:"timeout"`
}

// ReadingConfig shapes the reading workflow.
type ReadingConfig struct {
	ProcessingDwell time.Duration `yaml:"processingDwell"`
	TransitClock    string        `yaml:"transitClock"`
	Timezone        string        `yaml:"timezone"`
}

// SessionConfig controls how long idle sessions are kept in memory.
type SessionConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_PATH"); v != "" {
		cfg.LLM.Path = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_MAX_TOKENS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.LLM.MaxTokens = parsed
		}
	}
	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.LLM.Timeout = parsed
		}
	}
	if v := os.Getenv("READING_PROCESSING_DWELL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Reading.ProcessingDwell = parsed
		}
	}
	if v := os.Getenv("READING_TRANSIT_CLOCK"); v != "" {
		cfg.Reading.TransitClock = v
	}
	if v := os.Getenv("READING_TIMEZONE"); v != "" {
		cfg.Reading.Timezone = v
	}
	if v := os.Getenv("SESSION_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Session.TTL = parsed
		}
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if clean := strings.TrimSpace(p); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 90 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 30,
				Burst:             10,
			},
		},
		LLM: LLMConfig{
			Path:      "/messages",
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 1000,
			Timeout:   60 * time.Second,
		},
		Reading: ReadingConfig{
			ProcessingDwell: 1500 * time.Millisecond,
			TransitClock:    "12:00",
			Timezone:        "UTC",
		},
		Session: SessionConfig{
			TTL: 30 * time.Minute,
		},
	}
}

// Location resolves the configured reading time zone.
func (c *Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Reading.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model cannot be empty")
	}
	if c.LLM.MaxTokens <= 0 {
		return errors.New("llm.maxTokens must be positive")
	}
	if c.LLM.Timeout <= 0 {
		return errors.New("llm.timeout must be positive")
	}
	if c.HTTP.WriteTimeout > 0 && c.HTTP.WriteTimeout <= c.LLM.Timeout {
		return errors.New("http.writeTimeout must exceed llm.timeout")
	}
	if c.Reading.ProcessingDwell < 0 {
		return errors.New("reading.processingDwell cannot be negative")
	}
	if _, err := time.Parse("15:04", c.Reading.TransitClock); err != nil {
		return fmt.Errorf("reading.transitClock must be HH:MM: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("reading.timezone: %w", err)
	}
	if c.Session.TTL < 0 {
		return errors.New("session.ttl cannot be negative")
	}
	return nil
}
