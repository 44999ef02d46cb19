// Package config provides application configuration from a YAML file, .env files and environment variables
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppConfig holds all application configuration
type AppConfig struct {
	NasaAPIURL     string         `yaml:"nasa_api_url" env:"NASA_API_URL"`
	NasaAPIKey     string         `yaml:"nasa_api_key" env:"NASA_API_KEY"`
	HTTPTimeout    time.Duration  `yaml:"http_timeout" env:"HTTP_TIMEOUT"`
	RatePerHour    int            `yaml:"rate_per_hour" env:"NASA_RATE_PER_HOUR"`
	DatabaseURL    string         `yaml:"database_url" env:"DATABASE_URL"`
	ListenAddr     string         `yaml:"listen_addr" env:"LISTEN_ADDR"`
	LogLevel       string         `yaml:"log_level" env:"LOG_LEVEL"`
	LogDevelopment bool           `yaml:"log_development" env:"LOG_DEVELOPMENT"`
	SyncEnabled    bool           `yaml:"sync_enabled" env:"SYNC_ENABLED"`
	FetchInterval  FetchIntervals `yaml:"fetch_interval"`
}

// FetchIntervals defines background sync intervals per source
type FetchIntervals struct {
	Apod      time.Duration `yaml:"apod" env:"APOD_EVERY"`
	Neo       time.Duration `yaml:"neo" env:"NEO_EVERY"`
	Weather   time.Duration `yaml:"weather" env:"WEATHER_EVERY"`
	Rover     time.Duration `yaml:"rover" env:"ROVER_EVERY"`
	Epic      time.Duration `yaml:"epic" env:"EPIC_EVERY"`
	EpicDates time.Duration `yaml:"epic_dates" env:"EPIC_DATES_EVERY"`
}

// BySource maps each sync source name to its interval
func (f FetchIntervals) BySource() map[string]time.Duration {
	return map[string]time.Duration{
		"apod":       f.Apod,
		"neo":        f.Neo,
		"weather":    f.Weather,
		"rover":      f.Rover,
		"epic":       f.Epic,
		"epic_dates": f.EpicDates,
	}
}

// Defaults returns the configuration used when nothing is overridden
func Defaults() *AppConfig {
	return &AppConfig{
		NasaAPIURL:  "https://api.nasa.gov",
		NasaAPIKey:  "DEMO_KEY",
		HTTPTimeout: 30 * time.Second,
		ListenAddr:  ":3000",
		LogLevel:    "info",
		SyncEnabled: true,
		FetchInterval: FetchIntervals{
			Apod:      12 * time.Hour,
			Neo:       2 * time.Hour,
			Weather:   6 * time.Hour,
			Rover:     12 * time.Hour,
			Epic:      3 * time.Hour,
			EpicDates: 12 * time.Hour,
		},
	}
}

// LoadConfig builds the configuration: defaults, then the YAML file at path
// (skipped when path is empty or missing), then .env files, then environment.
func LoadConfig(path string) (*AppConfig, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := loadEnvFiles(); err != nil {
		return nil, err
	}
	applyEnv(reflect.ValueOf(cfg).Elem())

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would make the service unusable
func (c *AppConfig) Validate() error {
	if c.NasaAPIURL == "" {
		return fmt.Errorf("nasa_api_url is required")
	}
	if c.NasaAPIKey == "" {
		return fmt.Errorf("nasa_api_key is required")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be positive, got %s", c.HTTPTimeout)
	}
	if c.RatePerHour < 0 {
		return fmt.Errorf("rate_per_hour must not be negative, got %d", c.RatePerHour)
	}
	return nil
}

// GetConfigPath returns the config path from CONFIG_PATH or the default
func GetConfigPath(defaultPath string) string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return defaultPath
}

// loadEnvFiles loads ENV_FILE if set, otherwise .env.local then .env.
// godotenv never overrides variables already present in the environment.
func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

func applyEnv(v reflect.Value) {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}
		if field.Kind() == reflect.Struct {
			applyEnv(field)
			continue
		}
		key := t.Field(i).Tag.Get("env")
		if key == "" {
			continue
		}
		if val := os.Getenv(key); val != "" {
			setField(field, val)
		}
	}
}

func setField(field reflect.Value, val string) {
	switch field.Kind() {
	case reflect.String:
		field.SetString(val)
	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			if d, err := parseDuration(val); err == nil {
				field.SetInt(int64(d))
			}
			return
		}
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			field.SetInt(n)
		}
	case reflect.Bool:
		s := strings.ToLower(strings.TrimSpace(val))
		field.SetBool(s == "true" || s == "1" || s == "yes")
	}
}

// parseDuration accepts Go durations and bare integers as seconds
func parseDuration(val string) (time.Duration, error) {
	if n, err := strconv.Atoi(val); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(val)
}
