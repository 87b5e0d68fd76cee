package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the client
type Config struct {
	API     APIConfig     `yaml:"api"`
	Images  ImagesConfig  `yaml:"images"`
	Booking BookingConfig `yaml:"booking"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// APIConfig holds backend connection settings
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// ImagesConfig holds picture fallbacks
type ImagesConfig struct {
	FallbackLocal  string `yaml:"fallback_local"`
	FallbackRemote string `yaml:"fallback_remote"`
	AvatarFallback string `yaml:"avatar_fallback"`
	Debug          bool   `yaml:"debug"` // log every resolution decision once
}

// BookingConfig holds reservation rules applied before calling the API
type BookingConfig struct {
	CancelWindow time.Duration `yaml:"cancel_window"`
	Timezone     string        `yaml:"timezone"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// MetricsConfig holds the optional metrics dump
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:3000",
			Timeout: 10 * time.Second,
		},
		Images: ImagesConfig{
			FallbackLocal:  "fondo2.jpg",
			FallbackRemote: "imagenes/fondo2.jpg",
			AvatarFallback: "imagenes/persona1.jpg",
		},
		Booking: BookingConfig{
			CancelWindow: 15 * time.Minute,
			Timezone:     "Local",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads configuration from a YAML file on top of the defaults.
// A missing file is not an error; environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.API.BaseURL = getEnv("MOVELITE_API_BASE_URL", c.API.BaseURL)
	c.API.Timeout = getDurationEnv("MOVELITE_API_TIMEOUT", c.API.Timeout)
	c.Log.Level = getEnv("MOVELITE_LOG_LEVEL", c.Log.Level)
	c.Images.Debug = getBoolEnv("MOVELITE_IMAGES_DEBUG", c.Images.Debug)
	c.Booking.Timezone = getEnv("MOVELITE_TIMEZONE", c.Booking.Timezone)
	c.Metrics.Textfile = getEnv("MOVELITE_METRICS_TEXTFILE", c.Metrics.Textfile)
}

// Validate checks the values the client cannot work without
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is invalid: %q", c.API.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url must be http or https: %q", c.API.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("api.base_url has no host: %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if c.Booking.CancelWindow <= 0 {
		return fmt.Errorf("booking.cancel_window must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves booking.timezone; empty and "Local" mean the machine's zone
func (c *Config) Location() (*time.Location, error) {
	switch c.Booking.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Booking.Timezone)
	if err != nil {
		return nil, fmt.Errorf("booking.timezone is invalid: %w", err)
	}
	return loc, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
