// Package config loads odpc-checker settings from the environment.
//
// Values come from, in increasing priority: built-in defaults, a .env file in
// the working directory, process environment variables, and finally command
// line flags applied by the cli package. Validate must be called after the
// last override.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pfrederiksen/odpc-checker/internal/logger"
	"github.com/pfrederiksen/odpc-checker/internal/matcher"
	"github.com/pfrederiksen/odpc-checker/internal/registry"
)

// Environment variables read by Load
const (
	EnvURL        = "ODPC_URL"
	EnvTimeout    = "ODPC_TIMEOUT"
	EnvCacheTTL   = "ODPC_CACHE_TTL"
	EnvCacheDir   = "ODPC_CACHE_DIR"
	EnvUserAgent  = "ODPC_USER_AGENT"
	EnvCasePolicy = "ODPC_CASE"
	EnvLogLevel   = "ODPC_LOG_LEVEL"
)

// Config holds the settings for one run
type Config struct {
	URL        string             `validate:"required,url"`
	Timeout    time.Duration      `validate:"gt=0"`
	CacheTTL   time.Duration      `validate:"gt=0"`
	CacheDir   string             // empty disables the on-disk snapshot
	UserAgent  string             `validate:"required"`
	CasePolicy matcher.CasePolicy `validate:"oneof=lowercase uppercase"`
	LogLevel   logger.Level       `validate:"oneof=DEBUG INFO WARN ERROR"`
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		URL:        registry.RegisteredHandlersURL,
		Timeout:    registry.Timeout,
		CacheTTL:   registry.DefaultCacheTTL,
		UserAgent:  registry.UserAgent,
		CasePolicy: matcher.DefaultCasePolicy,
		LogLevel:   logger.LevelWarn,
	}
}

// Load reads envFiles (default ".env", missing files are ignored) and the
// process environment on top of Default.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	cfg := Default()
	cfg.URL = getEnvOrDefault(EnvURL, cfg.URL)
	cfg.CacheDir = getEnvOrDefault(EnvCacheDir, cfg.CacheDir)
	cfg.UserAgent = getEnvOrDefault(EnvUserAgent, cfg.UserAgent)

	var err error
	if cfg.Timeout, err = getEnvDurationOrDefault(EnvTimeout, cfg.Timeout); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getEnvDurationOrDefault(EnvCacheTTL, cfg.CacheTTL); err != nil {
		return nil, err
	}

	if v := os.Getenv(EnvCasePolicy); v != "" {
		if cfg.CasePolicy, err = matcher.ParseCasePolicy(v); err != nil {
			return nil, fmt.Errorf("%s: %w", EnvCasePolicy, err)
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		if cfg.LogLevel, err = logger.ParseLevel(v); err != nil {
			return nil, fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
	}

	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field holds a usable value
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating configuration: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: invalid value %q (%s)", fe.Field(), fmt.Sprint(fe.Value()), describeTag(fe)))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "url":
		return "must be an absolute URL"
	case "gt":
		return "must be positive"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return fe.Tag()
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
