package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	BackendURL   string `validate:"required,url"`
	Port         int    `validate:"min=1,max=65535"`
	CameraDevice string `validate:"required"`
	// JPEGQuality is 1-100 and fixed for every frame.
	JPEGQuality int
	// CaptureInterval is the delay between /detect submissions.
	CaptureInterval time.Duration `validate:"gt=0"`
	// StatsInterval is the dashboard refresh period.
	StatsInterval time.Duration `validate:"gt=0"`
	LogDirectory  string
	LogLevel      string
}

// Load reads an optional .env file and builds the configuration from the
// environment, falling back to defaults for anything unset or malformed.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		BackendURL:      getEnv("BACKEND_URL", "http://localhost:5000"),
		Port:            getEnvAsInt("PORT", 8090),
		CameraDevice:    getEnv("CAMERA_DEVICE", "0"),
		JPEGQuality:     getEnvAsInt("JPEG_QUALITY", 92),
		CaptureInterval: getEnvAsMillis("CAPTURE_INTERVAL_MS", 1500),
		StatsInterval:   getEnvAsMillis("STATS_INTERVAL_MS", 2000),
		LogDirectory:    getEnv("LOG_DIR", filepath.Join(".", "logs")),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
	cfg.tidy()
	return cfg
}

// Normalize tidies values changed after Load and validates the result.
func (c *Config) Normalize() error {
	c.tidy()
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c *Config) tidy() {
	c.BackendURL = strings.TrimRight(c.BackendURL, "/")
	c.JPEGQuality = clamp(c.JPEGQuality, 1, 100)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsMillis(key string, defaultValue int) time.Duration {
	ms := getEnvAsInt(key, defaultValue)
	if ms <= 0 {
		ms = defaultValue
	}
	return time.Duration(ms) * time.Millisecond
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
